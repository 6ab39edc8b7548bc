package repository

import (
	"context"

	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRepository es el ledger de stock: único lugar donde se hace aritmética de cantidades.
// Las implementaciones se atan a una transacción (ver TxRunner); los bloqueos duran hasta Commit/Rollback.
type StockRepository interface {
	// LockBucket bloquea la fila del key (creándola en cero si no existe) y devuelve su cantidad actual.
	LockBucket(ctx context.Context, key entity.BucketKey) (*entity.StockBucket, error)
	// Increase suma amount (> 0) al bucket, creándolo si no existe.
	Increase(ctx context.Context, key entity.BucketKey, amount decimal.Decimal) (*entity.StockBucket, error)
	// Decrease resta amount (> 0); falla con ErrInsufficientStock si la cantidad quedaría negativa.
	Decrease(ctx context.Context, key entity.BucketKey, amount decimal.Decimal) (*entity.StockBucket, error)
	// SetAbsolute sobrescribe la cantidad (>= 0) del bucket.
	SetAbsolute(ctx context.Context, key entity.BucketKey, amount decimal.Decimal) (*entity.StockBucket, error)
	// TotalForProductInWarehouse suma todas las variantes de lote/serie/vencimiento de producto+bodega.
	TotalForProductInWarehouse(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error)
	// LockPositiveBuckets bloquea y devuelve los buckets con cantidad > 0 en orden FIFO
	// (vencimiento ascendente con nulos al final, luego orden de creación).
	LockPositiveBuckets(ctx context.Context, productID, warehouseID string) ([]*entity.StockBucket, error)

	// ListBuckets consulta buckets sin bloquear (reportes).
	ListBuckets(ctx context.Context, filter BucketFilter) ([]*entity.StockBucket, error)
	// TotalsByProduct devuelve el stock total (todas las bodegas) por producto.
	TotalsByProduct(ctx context.Context) (map[string]decimal.Decimal, error)
}

// BucketFilter filtros para listar buckets. Campos vacíos no filtran.
type BucketFilter struct {
	ProductID    string
	WarehouseID  string
	Lot          string
	OnlyPositive bool
	Limit        int
	Offset       int
}
