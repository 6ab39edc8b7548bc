package memory

import (
	"context"
	"sort"

	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
)

// ProductRepo catálogo de productos en memoria.
type ProductRepo struct {
	store *Store
}

// GetByID devuelve nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// ListActive productos activos ordenados por SKU.
func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	list := make([]*entity.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		if !p.Active {
			continue
		}
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return list, nil
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	store *Store
}

// GetByID devuelve nil, nil si no existe.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

// Exists indica si la bodega está registrada.
func (r *WarehouseRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.warehouses[id]
	return ok, nil
}
