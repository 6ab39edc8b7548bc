package inventory

import (
	"context"

	"github.com/lilis-erp/stock-ledger/internal/application/dto"
	"github.com/lilis-erp/stock-ledger/internal/domain"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

// StockQueryUseCase consultas de solo lectura sobre buckets e historial de movimientos.
type StockQueryUseCase struct {
	stockRepo repository.StockRepository
	movRepo   repository.InventoryMovementRepository
}

// NewStockQueryUseCase construye el caso de uso de consultas.
func NewStockQueryUseCase(stockRepo repository.StockRepository, movRepo repository.InventoryMovementRepository) *StockQueryUseCase {
	return &StockQueryUseCase{stockRepo: stockRepo, movRepo: movRepo}
}

// ListStock lista buckets según filtro.
func (uc *StockQueryUseCase) ListStock(ctx context.Context, filter repository.BucketFilter) ([]dto.StockBucketDTO, error) {
	buckets, err := uc.stockRepo.ListBuckets(ctx, filter)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "listar stock", err)
	}
	out := make([]dto.StockBucketDTO, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, dto.NewStockBucketDTO(b))
	}
	return out, nil
}

// TotalStock stock total de un producto en una bodega (todas las variantes de lote/serie/vencimiento).
func (uc *StockQueryUseCase) TotalStock(ctx context.Context, productID, warehouseID string) (dto.StockTotalDTO, error) {
	total, err := uc.stockRepo.TotalForProductInWarehouse(ctx, productID, warehouseID)
	if err != nil {
		return dto.StockTotalDTO{}, domain.Wrap(domain.KindStorage, "total de stock", err)
	}
	return dto.StockTotalDTO{ProductID: productID, WarehouseID: warehouseID, Total: total.Round(3)}, nil
}

// ListMovements historial de movimientos, más reciente primero.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]dto.MovementRecordDTO, error) {
	records, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "listar movimientos", err)
	}
	out := make([]dto.MovementRecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, dto.NewMovementRecordDTO(r))
	}
	return out, nil
}

// GetMovement obtiene un movimiento aplicado por ID.
func (uc *StockQueryUseCase) GetMovement(ctx context.Context, id string) (dto.MovementRecordDTO, error) {
	rec, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return dto.MovementRecordDTO{}, domain.Wrap(domain.KindStorage, "obtener movimiento", err)
	}
	if rec == nil {
		return dto.MovementRecordDTO{}, domain.New(domain.KindNotFound, "movimiento "+id+" no existe")
	}
	return dto.NewMovementRecordDTO(rec), nil
}

