package inventory

import (
	"context"

	"github.com/lilis-erp/stock-ledger/internal/domain"
	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error no queda nada aplicado.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		movRepo repository.InventoryMovementRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// MovementObserver recibe el resultado de cada Apply (métricas).
type MovementObserver interface {
	MovementApplied(t entity.MovementType)
	MovementRejected(t entity.MovementType, kind domain.Kind)
}

type noopObserver struct{}

func (noopObserver) MovementApplied(entity.MovementType)                {}
func (noopObserver) MovementRejected(entity.MovementType, domain.Kind) {}
