package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lilis-erp/stock-ledger/internal/domain"
	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	invdomain "github.com/lilis-erp/stock-ledger/internal/domain/inventory"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo ledger en memoria. Con tx nil cada escritura corre en su propia transacción.
type StockRepo struct {
	store *Store
	tx    *tx
}

func (r *StockRepo) inTx(ctx context.Context, fn func(t *tx) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	t := r.store.begin()
	defer t.release()
	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

// LockBucket bloquea el key y lo crea en cero si no existe.
func (r *StockRepo) LockBucket(ctx context.Context, key entity.BucketKey) (*entity.StockBucket, error) {
	var out entity.StockBucket
	err := r.inTx(ctx, func(t *tx) error {
		if err := t.lock(ctx, key); err != nil {
			return err
		}
		out = *t.current(key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Increase suma amount al bucket.
func (r *StockRepo) Increase(ctx context.Context, key entity.BucketKey, amount decimal.Decimal) (*entity.StockBucket, error) {
	if !amount.IsPositive() {
		return nil, domain.New(domain.KindInvalidQuantity, "el incremento debe ser mayor que cero")
	}
	return r.write(ctx, key, func(b *entity.StockBucket) error {
		b.Quantity = b.Quantity.Add(amount)
		return nil
	})
}

// Decrease resta amount sin dejar la cantidad negativa.
func (r *StockRepo) Decrease(ctx context.Context, key entity.BucketKey, amount decimal.Decimal) (*entity.StockBucket, error) {
	if !amount.IsPositive() {
		return nil, domain.New(domain.KindInvalidQuantity, "el descuento debe ser mayor que cero")
	}
	return r.write(ctx, key, func(b *entity.StockBucket) error {
		if b.Quantity.LessThan(amount) {
			return domain.New(domain.KindInsufficientStock,
				fmt.Sprintf("bucket %s: disponible %s, solicitado %s", key, b.Quantity, amount))
		}
		b.Quantity = b.Quantity.Sub(amount)
		return nil
	})
}

// SetAbsolute fija la cantidad del bucket.
func (r *StockRepo) SetAbsolute(ctx context.Context, key entity.BucketKey, amount decimal.Decimal) (*entity.StockBucket, error) {
	if amount.IsNegative() {
		return nil, domain.New(domain.KindInvalidQuantity, "la cantidad absoluta no puede ser negativa")
	}
	return r.write(ctx, key, func(b *entity.StockBucket) error {
		b.Quantity = amount
		return nil
	})
}

func (r *StockRepo) write(ctx context.Context, key entity.BucketKey, apply func(b *entity.StockBucket) error) (*entity.StockBucket, error) {
	var out entity.StockBucket
	err := r.inTx(ctx, func(t *tx) error {
		if err := t.lock(ctx, key); err != nil {
			return err
		}
		b := t.current(key)
		next := *b
		if err := apply(&next); err != nil {
			return err
		}
		next.UpdatedAt = r.store.now().UTC()
		*b = next
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TotalForProductInWarehouse suma las variantes confirmadas, viendo las propias escrituras de la tx.
func (r *StockRepo) TotalForProductInWarehouse(ctx context.Context, productID, warehouseID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range r.visible(productID, warehouseID) {
		total = total.Add(b.Quantity)
	}
	return total, nil
}

// LockPositiveBuckets bloquea en orden FIFO los buckets con cantidad > 0 y devuelve sus valores
// ya bloqueados; los que quedaron en cero mientras se esperaba el candado se descartan.
func (r *StockRepo) LockPositiveBuckets(ctx context.Context, productID, warehouseID string) ([]*entity.StockBucket, error) {
	if r.tx == nil {
		return nil, domain.New(domain.KindStorage, "LockPositiveBuckets requiere una transacción")
	}
	candidates := r.visible(productID, warehouseID)
	invdomain.SortFIFO(candidates)

	out := make([]*entity.StockBucket, 0, len(candidates))
	for _, c := range candidates {
		if !c.Quantity.IsPositive() {
			continue
		}
		if err := r.tx.lock(ctx, c.Key); err != nil {
			return nil, err
		}
		b := *r.tx.current(c.Key)
		if b.Quantity.IsPositive() {
			out = append(out, &b)
		}
	}
	invdomain.SortFIFO(out)
	return out, nil
}

// visible copias de los buckets de producto+bodega tal como los ve la tx.
func (r *StockRepo) visible(productID, warehouseID string) []*entity.StockBucket {
	s := r.store
	s.mu.Lock()
	byKey := make(map[entity.BucketID]*entity.StockBucket)
	for k, b := range s.buckets {
		if b.Key.ProductID == productID && b.Key.WarehouseID == warehouseID {
			cp := *b
			byKey[k] = &cp
		}
	}
	s.mu.Unlock()
	if r.tx != nil {
		for k, b := range r.tx.staged {
			if b.Key.ProductID == productID && b.Key.WarehouseID == warehouseID {
				cp := *b
				byKey[k] = &cp
			}
		}
	}
	out := make([]*entity.StockBucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, b)
	}
	return out
}

// ListBuckets lista buckets confirmados ordenados por producto, bodega y FIFO.
func (r *StockRepo) ListBuckets(ctx context.Context, filter repository.BucketFilter) ([]*entity.StockBucket, error) {
	s := r.store
	s.mu.Lock()
	list := make([]*entity.StockBucket, 0, len(s.buckets))
	for _, b := range s.buckets {
		if filter.ProductID != "" && b.Key.ProductID != filter.ProductID {
			continue
		}
		if filter.WarehouseID != "" && b.Key.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.Lot != "" && !strings.EqualFold(b.Key.Lot, filter.Lot) {
			continue
		}
		if filter.OnlyPositive && !b.Quantity.IsPositive() {
			continue
		}
		cp := *b
		list = append(list, &cp)
	}
	s.mu.Unlock()

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Key.ProductID != b.Key.ProductID {
			return a.Key.ProductID < b.Key.ProductID
		}
		if a.Key.WarehouseID != b.Key.WarehouseID {
			return a.Key.WarehouseID < b.Key.WarehouseID
		}
		return invdomain.LessFIFO(a, b)
	})
	return paginate(list, filter.Limit, filter.Offset), nil
}

// TotalsByProduct stock confirmado total por producto.
func (r *StockRepo) TotalsByProduct(ctx context.Context) (map[string]decimal.Decimal, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := make(map[string]decimal.Decimal)
	for _, b := range s.buckets {
		totals[b.Key.ProductID] = totals[b.Key.ProductID].Add(b.Quantity)
	}
	return totals, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return []T{}
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
