package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/lilis-erp/stock-ledger/internal/domain"
	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const bucketColumns = "id, product_id, warehouse_id, lot, serial, expiry_date, quantity, created_at, updated_at"

// StockRepo ledger de stock sobre la tabla stock_buckets (usable con pool o tx).
// Los métodos que bloquean solo tienen sentido dentro de una tx abierta por TxRunner.
type StockRepo struct {
	q       Querier
	builder sq.StatementBuilderType
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q, builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

type bucketRow struct {
	ID          int64           `db:"id"`
	ProductID   string          `db:"product_id"`
	WarehouseID string          `db:"warehouse_id"`
	Lot         string          `db:"lot"`
	Serial      string          `db:"serial"`
	ExpiryDate  *time.Time      `db:"expiry_date"`
	Quantity    decimal.Decimal `db:"quantity"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r bucketRow) toEntity() *entity.StockBucket {
	return &entity.StockBucket{
		ID: r.ID,
		Key: entity.BucketKey{
			ProductID:   r.ProductID,
			WarehouseID: r.WarehouseID,
			Lot:         r.Lot,
			Serial:      r.Serial,
			Expiry:      r.ExpiryDate,
		},
		Quantity:  r.Quantity,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// LockBucket crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *StockRepo) LockBucket(ctx context.Context, key entity.BucketKey) (*entity.StockBucket, error) {
	insert := `
		INSERT INTO stock_buckets (product_id, warehouse_id, lot, serial, expiry_date, quantity)
		VALUES ($1, $2, $3, $4, $5::date, 0)
		ON CONFLICT ON CONSTRAINT stock_buckets_key DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, key.ProductID, key.WarehouseID, key.Lot, key.Serial, key.Expiry); err != nil {
		return nil, translate("crear bucket", err)
	}

	query := `SELECT ` + bucketColumns + `
		FROM stock_buckets
		WHERE product_id = $1 AND warehouse_id = $2 AND lot = $3 AND serial = $4
		  AND expiry_date IS NOT DISTINCT FROM $5::date
		FOR UPDATE`
	var row bucketRow
	if err := pgxscan.Get(ctx, r.q, &row, query, key.ProductID, key.WarehouseID, key.Lot, key.Serial, key.Expiry); err != nil {
		return nil, translate("bloquear bucket", err)
	}
	return row.toEntity(), nil
}

// Increase suma amount al bucket, creándolo si no existe.
func (r *StockRepo) Increase(ctx context.Context, key entity.BucketKey, amount decimal.Decimal) (*entity.StockBucket, error) {
	if !amount.IsPositive() {
		return nil, domain.New(domain.KindInvalidQuantity, "el incremento debe ser mayor a cero")
	}
	b, err := r.LockBucket(ctx, key)
	if err != nil {
		return nil, err
	}
	return r.setQuantity(ctx, b.ID, b.Quantity.Add(amount))
}

// Decrease resta amount; no deja cantidades negativas.
func (r *StockRepo) Decrease(ctx context.Context, key entity.BucketKey, amount decimal.Decimal) (*entity.StockBucket, error) {
	if !amount.IsPositive() {
		return nil, domain.New(domain.KindInvalidQuantity, "el descuento debe ser mayor a cero")
	}
	b, err := r.LockBucket(ctx, key)
	if err != nil {
		return nil, err
	}
	if b.Quantity.LessThan(amount) {
		return nil, domain.New(domain.KindInsufficientStock,
			fmt.Sprintf("bucket %s: disponible %s, solicitado %s", key, b.Quantity, amount))
	}
	return r.setQuantity(ctx, b.ID, b.Quantity.Sub(amount))
}

// SetAbsolute sobrescribe la cantidad del bucket.
func (r *StockRepo) SetAbsolute(ctx context.Context, key entity.BucketKey, amount decimal.Decimal) (*entity.StockBucket, error) {
	if amount.IsNegative() {
		return nil, domain.New(domain.KindInvalidQuantity, "la cantidad absoluta no puede ser negativa")
	}
	b, err := r.LockBucket(ctx, key)
	if err != nil {
		return nil, err
	}
	return r.setQuantity(ctx, b.ID, amount)
}

func (r *StockRepo) setQuantity(ctx context.Context, id int64, quantity decimal.Decimal) (*entity.StockBucket, error) {
	query := `UPDATE stock_buckets SET quantity = $2, updated_at = now() WHERE id = $1 RETURNING ` + bucketColumns
	var row bucketRow
	if err := pgxscan.Get(ctx, r.q, &row, query, id, quantity); err != nil {
		return nil, translate("actualizar bucket", err)
	}
	return row.toEntity(), nil
}

// TotalForProductInWarehouse suma todos los buckets de producto+bodega sin bloquear.
func (r *StockRepo) TotalForProductInWarehouse(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_buckets WHERE product_id = $1 AND warehouse_id = $2`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(&total); err != nil {
		return decimal.Zero, translate("sumar stock", err)
	}
	return total, nil
}

// LockPositiveBuckets bloquea los buckets con saldo en orden FIFO; las filas se bloquean en ese mismo orden.
func (r *StockRepo) LockPositiveBuckets(ctx context.Context, productID, warehouseID string) ([]*entity.StockBucket, error) {
	query := `SELECT ` + bucketColumns + `
		FROM stock_buckets
		WHERE product_id = $1 AND warehouse_id = $2 AND quantity > 0
		ORDER BY expiry_date ASC NULLS LAST, id ASC
		FOR UPDATE`
	var rows []bucketRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, productID, warehouseID); err != nil {
		return nil, translate("bloquear buckets", err)
	}
	list := make([]*entity.StockBucket, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}

// ListBuckets consulta buckets para reportes, sin bloqueo.
func (r *StockRepo) ListBuckets(ctx context.Context, filter repository.BucketFilter) ([]*entity.StockBucket, error) {
	qb := r.builder.Select(bucketColumns).From("stock_buckets")
	if filter.ProductID != "" {
		qb = qb.Where(sq.Eq{"product_id": filter.ProductID})
	}
	if filter.WarehouseID != "" {
		qb = qb.Where(sq.Eq{"warehouse_id": filter.WarehouseID})
	}
	if filter.Lot != "" {
		// Igualdad sin distinguir mayúsculas; % y _ son literales.
		qb = qb.Where("lower(lot) = lower(?)", filter.Lot)
	}
	if filter.OnlyPositive {
		qb = qb.Where(sq.Gt{"quantity": 0})
	}
	qb = qb.OrderBy("product_id", "warehouse_id", "expiry_date ASC NULLS LAST", "id")
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list buckets: %w", err)
	}
	var rows []bucketRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, translate("listar buckets", err)
	}
	list := make([]*entity.StockBucket, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.toEntity())
	}
	return list, nil
}

// TotalsByProduct stock total por producto sumando todas las bodegas.
func (r *StockRepo) TotalsByProduct(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []struct {
		ProductID string          `db:"product_id"`
		Total     decimal.Decimal `db:"total"`
	}
	query := `SELECT product_id, SUM(quantity) AS total FROM stock_buckets GROUP BY product_id`
	if err := pgxscan.Select(ctx, r.q, &rows, query); err != nil {
		return nil, translate("totales por producto", err)
	}
	totals := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.ProductID] = row.Total
	}
	return totals, nil
}
