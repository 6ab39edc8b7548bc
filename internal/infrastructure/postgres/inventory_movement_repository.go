package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, type, product_id, source_warehouse_id, destination_warehouse_id, lot, serial,
	expiry_date, supplier_id, quantity, note, status, created_by, created_at`

// InventoryMovementRepo historial append-only de movimientos (usable con pool o tx).
type InventoryMovementRepo struct {
	q       Querier
	builder sq.StatementBuilderType
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q, builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

type movementRow struct {
	ID                     string          `db:"id"`
	Type                   string          `db:"type"`
	ProductID              string          `db:"product_id"`
	SourceWarehouseID      *string         `db:"source_warehouse_id"`
	DestinationWarehouseID *string         `db:"destination_warehouse_id"`
	Lot                    string          `db:"lot"`
	Serial                 string          `db:"serial"`
	ExpiryDate             *time.Time      `db:"expiry_date"`
	SupplierID             string          `db:"supplier_id"`
	Quantity               decimal.Decimal `db:"quantity"`
	Note                   string          `db:"note"`
	Status                 string          `db:"status"`
	CreatedBy              string          `db:"created_by"`
	CreatedAt              time.Time       `db:"created_at"`
}

func (r movementRow) toEntity() *entity.MovementRecord {
	return &entity.MovementRecord{
		Movement: entity.Movement{
			ID:                     r.ID,
			Type:                   entity.MovementType(r.Type),
			ProductID:              r.ProductID,
			Quantity:               r.Quantity,
			SourceWarehouseID:      deref(r.SourceWarehouseID),
			DestinationWarehouseID: deref(r.DestinationWarehouseID),
			Lot:                    r.Lot,
			Serial:                 r.Serial,
			Expiry:                 r.ExpiryDate,
			SupplierID:             r.SupplierID,
			Note:                   r.Note,
			CreatedBy:              r.CreatedBy,
			CreatedAt:              r.CreatedAt,
		},
		Status: r.Status,
	}
}

// Create persiste el registro de auditoría de un movimiento aplicado.
func (r *InventoryMovementRepo) Create(ctx context.Context, record *entity.MovementRecord) error {
	query := `
		INSERT INTO inventory_movements (id, type, product_id, source_warehouse_id, destination_warehouse_id,
			lot, serial, expiry_date, supplier_id, quantity, note, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::date, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		record.ID, string(record.Type), record.ProductID,
		nullable(record.SourceWarehouseID), nullable(record.DestinationWarehouseID),
		record.Lot, record.Serial, record.Expiry, record.SupplierID, record.Quantity,
		record.Note, record.Status, record.CreatedBy, record.CreatedAt,
	)
	if err != nil {
		return translate("registrar movimiento", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; nil, nil si no existe.
func (r *InventoryMovementRepo) GetByID(ctx context.Context, id string) (*entity.MovementRecord, error) {
	var row movementRow
	err := pgxscan.Get(ctx, r.q, &row, `SELECT `+movementColumns+` FROM inventory_movements WHERE id::text = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, translate("obtener movimiento", err)
	}
	return row.toEntity(), nil
}

// List historial filtrado, más reciente primero.
func (r *InventoryMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.MovementRecord, error) {
	qb := r.builder.Select(movementColumns).From("inventory_movements")
	if filter.Type != "" {
		qb = qb.Where(sq.Eq{"type": string(filter.Type)})
	}
	if filter.ProductID != "" {
		qb = qb.Where(sq.Eq{"product_id": filter.ProductID})
	}
	if filter.WarehouseID != "" {
		qb = qb.Where(sq.Or{
			sq.Eq{"source_warehouse_id": filter.WarehouseID},
			sq.Eq{"destination_warehouse_id": filter.WarehouseID},
		})
	}
	if filter.From != nil {
		qb = qb.Where(sq.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		qb = qb.Where(sq.LtOrEq{"created_at": *filter.To})
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		qb = qb.Where(sq.Or{
			sq.ILike{"lot": pattern},
			sq.ILike{"serial": pattern},
			sq.ILike{"note": pattern},
		})
	}
	qb = qb.OrderBy("created_at DESC", "id")
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movements: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, translate("listar movimientos", err)
	}
	list := make([]*entity.MovementRecord, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
