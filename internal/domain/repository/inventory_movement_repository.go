package repository

import (
	"context"
	"time"

	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para el historial de movimientos.
// Es append-only: no hay Update ni Delete.
type InventoryMovementRepository interface {
	Create(ctx context.Context, record *entity.MovementRecord) error
	GetByID(ctx context.Context, id string) (*entity.MovementRecord, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.MovementRecord, error)
}

// MovementFilter filtros del historial. WarehouseID coincide con origen o destino;
// Search busca en lote, serie y observación.
type MovementFilter struct {
	Type        entity.MovementType
	ProductID   string
	WarehouseID string
	Search      string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
