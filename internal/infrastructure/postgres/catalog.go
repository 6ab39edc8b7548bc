package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
)

// CatalogWriter siembra productos y bodegas (ver catalog.Sink).
type CatalogWriter struct {
	products   *ProductRepo
	warehouses *WarehouseRepo
}

// NewCatalogWriter construye el writer sobre el pool.
func NewCatalogWriter(pool *pgxpool.Pool) *CatalogWriter {
	return &CatalogWriter{products: NewProductRepository(pool), warehouses: NewWarehouseRepository(pool)}
}

// SaveProduct crea o actualiza el producto.
func (w *CatalogWriter) SaveProduct(ctx context.Context, p entity.Product) error {
	return w.products.Upsert(ctx, &p)
}

// SaveWarehouse crea o actualiza la bodega.
func (w *CatalogWriter) SaveWarehouse(ctx context.Context, wh entity.Warehouse) error {
	return w.warehouses.Upsert(ctx, &wh)
}
