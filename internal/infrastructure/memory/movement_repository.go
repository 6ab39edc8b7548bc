package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*MovementRepo)(nil)

// MovementRepo historial de movimientos en memoria (append-only).
type MovementRepo struct {
	store *Store
	tx    *tx
}

// Create agrega el registro; dentro de una tx se publica recién en el commit.
func (r *MovementRepo) Create(ctx context.Context, record *entity.MovementRecord) error {
	cp := *record
	if r.tx != nil {
		r.tx.movements = append(r.tx.movements, &cp)
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.movements = append(r.store.movements, &cp)
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.MovementRecord, error) {
	for _, m := range r.snapshot() {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

// List filtra el historial, más reciente primero.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.MovementRecord, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]*entity.MovementRecord, 0)
	for _, m := range r.snapshot() {
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.WarehouseID != "" && m.SourceWarehouseID != filter.WarehouseID && m.DestinationWarehouseID != filter.WarehouseID {
			continue
		}
		if filter.From != nil && m.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.CreatedAt.After(*filter.To) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Lot), search) &&
			!strings.Contains(strings.ToLower(m.Serial), search) &&
			!strings.Contains(strings.ToLower(m.Note), search) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *MovementRepo) snapshot() []*entity.MovementRecord {
	r.store.mu.Lock()
	list := make([]*entity.MovementRecord, 0, len(r.store.movements))
	for _, m := range r.store.movements {
		cp := *m
		list = append(list, &cp)
	}
	r.store.mu.Unlock()
	if r.tx != nil {
		for _, m := range r.tx.movements {
			cp := *m
			list = append(list, &cp)
		}
	}
	return list
}
