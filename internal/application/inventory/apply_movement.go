package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lilis-erp/stock-ledger/internal/domain"
	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	invdomain "github.com/lilis-erp/stock-ledger/internal/domain/inventory"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

// ApplyMovementUseCase aplica movimientos de inventario (RECEIPT, ISSUE, ADJUST, RETURN, TRANSFER)
// en una sola transacción con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type ApplyMovementUseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	observer      MovementObserver
	log           zerolog.Logger
	now           func() time.Time
}

// Option configura el caso de uso.
type Option func(*ApplyMovementUseCase)

// WithObserver registra un observador de resultados (métricas).
func WithObserver(o MovementObserver) Option {
	return func(uc *ApplyMovementUseCase) { uc.observer = o }
}

// WithLogger asigna el logger estructurado.
func WithLogger(l zerolog.Logger) Option {
	return func(uc *ApplyMovementUseCase) { uc.log = l }
}

// WithClock fija el reloj (tests de vencimiento).
func WithClock(now func() time.Time) Option {
	return func(uc *ApplyMovementUseCase) { uc.now = now }
}

// NewApplyMovementUseCase construye el caso de uso.
func NewApplyMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	opts ...Option,
) *ApplyMovementUseCase {
	uc := &ApplyMovementUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		observer:      noopObserver{},
		log:           zerolog.Nop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ApplyMovementInput entrada de Apply. ActorID es la identidad del usuario para auditoría;
// se guarda tal cual, el motor no la interpreta.
// Quantity es la cantidad a mover salvo en ADJUST, donde es el valor absoluto objetivo del bucket.
type ApplyMovementInput struct {
	Type                   entity.MovementType
	ProductID              string
	Quantity               decimal.Decimal
	SourceWarehouseID      string
	DestinationWarehouseID string
	Lot                    string
	Serial                 string
	Expiry                 *time.Time
	SupplierID             string
	Note                   string
	ActorID                string
}

// Apply valida el movimiento, abre la transacción, muta los buckets y persiste el registro de auditoría.
// O todo queda aplicado o nada: cualquier error hace Rollback.
func (uc *ApplyMovementUseCase) Apply(ctx context.Context, in ApplyMovementInput) (*entity.MovementRecord, error) {
	mov := entity.Movement{
		ID:                     uuid.New().String(),
		Type:                   entity.MovementType(strings.ToUpper(strings.TrimSpace(string(in.Type)))),
		ProductID:              strings.TrimSpace(in.ProductID),
		Quantity:               in.Quantity,
		SourceWarehouseID:      strings.TrimSpace(in.SourceWarehouseID),
		DestinationWarehouseID: strings.TrimSpace(in.DestinationWarehouseID),
		Lot:                    invdomain.NormalizeCode(in.Lot),
		Serial:                 invdomain.NormalizeCode(in.Serial),
		Expiry:                 invdomain.NormalizeExpiry(in.Expiry),
		SupplierID:             strings.TrimSpace(in.SupplierID),
		Note:                   in.Note,
		CreatedBy:              in.ActorID,
		CreatedAt:              uc.now().UTC(),
	}

	if err := uc.check(ctx, mov); err != nil {
		uc.observer.MovementRejected(mov.Type, domain.KindOf(err))
		return nil, err
	}

	record := &entity.MovementRecord{Movement: mov, Status: entity.MovementStatusApplied}
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
	) error {
		if err := uc.mutate(ctx, stockRepo, mov); err != nil {
			return err
		}
		return movRepo.Create(ctx, record)
	})
	if err != nil {
		err = asDomainError(err)
		kind := domain.KindOf(err)
		if kind == domain.KindConsistency {
			uc.log.Error().Err(err).
				Str("movement_id", mov.ID).
				Str("type", string(mov.Type)).
				Str("product_id", mov.ProductID).
				Msg("invariante del ledger violada, transacción revertida")
		}
		uc.observer.MovementRejected(mov.Type, kind)
		return nil, err
	}

	uc.observer.MovementApplied(mov.Type)
	uc.log.Debug().
		Str("movement_id", mov.ID).
		Str("type", string(mov.Type)).
		Str("product_id", mov.ProductID).
		Str("quantity", mov.Quantity.String()).
		Msg("movimiento aplicado")
	return record, nil
}

// check resuelve producto y bodegas y corre el validador; junta todos los problemas en un solo error.
func (uc *ApplyMovementUseCase) check(ctx context.Context, mov entity.Movement) error {
	ve := &domain.ValidationError{}

	var product entity.Product
	if mov.ProductID == "" {
		ve.Add(domain.KindUnknownProduct, "debe indicar el producto")
	} else {
		p, err := uc.productRepo.GetByID(ctx, mov.ProductID)
		if err != nil {
			return domain.Wrap(domain.KindStorage, "consultar producto", err)
		}
		if p == nil {
			ve.Add(domain.KindUnknownProduct, "producto "+mov.ProductID+" no existe")
		} else {
			product = *p
		}
	}

	if err := invdomain.ValidateMovement(mov, product, uc.now()); err != nil {
		var shape *domain.ValidationError
		if !errors.As(err, &shape) {
			return err
		}
		ve.Problems = append(ve.Problems, shape.Problems...)
	}

	seen := map[string]bool{}
	for _, whID := range []string{mov.SourceWarehouseID, mov.DestinationWarehouseID} {
		if whID == "" || seen[whID] {
			continue
		}
		seen[whID] = true
		ok, err := uc.warehouseRepo.Exists(ctx, whID)
		if err != nil {
			return domain.Wrap(domain.KindStorage, "consultar bodega", err)
		}
		if !ok {
			ve.Add(domain.KindUnknownWarehouse, "bodega "+whID+" no existe")
		}
	}

	return ve.OrNil()
}

// mutate aplica el efecto del movimiento sobre el ledger dentro de la transacción.
func (uc *ApplyMovementUseCase) mutate(ctx context.Context, stockRepo repository.StockRepository, mov entity.Movement) error {
	switch mov.Type {
	case entity.MovementTypeReceipt, entity.MovementTypeReturn:
		_, err := stockRepo.Increase(ctx, mov.BucketKey(mov.DestinationWarehouseID), mov.Quantity)
		return err

	case entity.MovementTypeIssue:
		return consumeFIFO(ctx, stockRepo, mov.ProductID, mov.SourceWarehouseID, mov.Quantity)

	case entity.MovementTypeAdjust:
		_, err := stockRepo.SetAbsolute(ctx, mov.BucketKey(mov.AdjustWarehouseID()), mov.Quantity)
		return err

	case entity.MovementTypeTransfer:
		dst := mov.BucketKey(mov.DestinationWarehouseID)
		// Orden fijo de bloqueo por id de bodega: dos traslados cruzados entre las mismas
		// bodegas no pueden quedar esperándose mutuamente.
		if mov.DestinationWarehouseID < mov.SourceWarehouseID {
			if _, err := stockRepo.LockBucket(ctx, dst); err != nil {
				return err
			}
		}
		if err := consumeFIFO(ctx, stockRepo, mov.ProductID, mov.SourceWarehouseID, mov.Quantity); err != nil {
			return err
		}
		_, err := stockRepo.Increase(ctx, dst, mov.Quantity)
		return err
	}
	return domain.New(domain.KindInvalidMovementType, string(mov.Type))
}

// consumeFIFO descuenta quantity de los buckets de producto+bodega en orden FIFO.
func consumeFIFO(ctx context.Context, stockRepo repository.StockRepository, productID, warehouseID string, quantity decimal.Decimal) error {
	total, err := stockRepo.TotalForProductInWarehouse(ctx, productID, warehouseID)
	if err != nil {
		return err
	}
	if total.LessThan(quantity) {
		return domain.New(domain.KindInsufficientStock,
			fmt.Sprintf("bodega %s: disponible %s, solicitado %s", warehouseID, total, quantity))
	}

	buckets, err := stockRepo.LockPositiveBuckets(ctx, productID, warehouseID)
	if err != nil {
		return err
	}
	// Con las filas ya bloqueadas se vuelve a sumar: otra transacción pudo consumir entre el
	// chequeo y el bloqueo.
	locked := decimal.Zero
	for _, b := range buckets {
		locked = locked.Add(b.Quantity)
	}
	if locked.LessThan(quantity) {
		return domain.New(domain.KindInsufficientStock,
			fmt.Sprintf("bodega %s: disponible %s, solicitado %s", warehouseID, locked, quantity))
	}

	remaining := quantity
	for _, b := range buckets {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(b.Quantity, remaining)
		if _, err := stockRepo.Decrease(ctx, b.Key, take); err != nil {
			return err
		}
		remaining = remaining.Sub(take)
	}
	if remaining.IsPositive() {
		return domain.New(domain.KindConsistency,
			fmt.Sprintf("no se pudo descontar todo el stock de la bodega %s, faltan %s", warehouseID, remaining))
	}
	return nil
}

// asDomainError garantiza que nada de bajo nivel cruce el borde del motor.
func asDomainError(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return domain.Wrap(domain.KindStorage, "aplicar movimiento", err)
}
