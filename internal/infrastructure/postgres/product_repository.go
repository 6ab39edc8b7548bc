package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, name, lot_controlled, serial_controlled, perishable, min_stock, reorder_point,
	active, created_at, updated_at`

// ProductRepo lectura del catálogo de productos (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID; nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.LotControlled, &p.SerialControlled, &p.Perishable,
		&p.MinStock, &p.ReorderPoint, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate("obtener producto", err)
	}
	return &p, nil
}

// ListActive productos activos ordenados por SKU.
func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	var list []*entity.Product
	query := `SELECT ` + productColumns + ` FROM products WHERE active ORDER BY sku`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, translate("listar productos", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.SKU, &p.Name, &p.LotControlled, &p.SerialControlled, &p.Perishable,
			&p.MinStock, &p.ReorderPoint, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, translate("scan producto", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("listar productos", err)
	}
	return list, nil
}

// Upsert crea o actualiza un producto; lo usa la carga de catálogo al arrancar.
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, lot_controlled, serial_controlled, perishable, min_stock, reorder_point, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			sku = EXCLUDED.sku, name = EXCLUDED.name,
			lot_controlled = EXCLUDED.lot_controlled, serial_controlled = EXCLUDED.serial_controlled,
			perishable = EXCLUDED.perishable, min_stock = EXCLUDED.min_stock,
			reorder_point = EXCLUDED.reorder_point, active = EXCLUDED.active, updated_at = now()`
	_, err := r.q.Exec(ctx, query, p.ID, p.SKU, p.Name, p.LotControlled, p.SerialControlled,
		p.Perishable, p.MinStock, p.ReorderPoint, p.Active)
	if err != nil {
		return translate("guardar producto", err)
	}
	return nil
}
