package repository

import (
	"context"

	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
)

// WarehouseRepository lectura de bodegas.
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	Exists(ctx context.Context, id string) (bool, error)
}
