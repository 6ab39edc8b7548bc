package repository

import (
	"context"

	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
)

// ProductRepository lectura del catálogo de productos (el CRUD vive fuera del motor).
type ProductRepository interface {
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListActive(ctx context.Context) ([]*entity.Product, error)
}
