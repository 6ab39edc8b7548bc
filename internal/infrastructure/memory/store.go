// Package memory implementa los puertos del ledger en memoria del proceso.
// Se usa en tests y en el perfil LEDGER_STORAGE=memory; respeta las mismas reglas de bloqueo
// y atomicidad que la implementación PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lilis-erp/stock-ledger/internal/application/inventory"
	"github.com/lilis-erp/stock-ledger/internal/domain"
	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// DefaultLockTimeout tiempo máximo de espera por el bloqueo de un bucket.
const DefaultLockTimeout = 5 * time.Second

// Store estado compartido: buckets y movimientos confirmados, catálogo y un candado por key.
// mu protege los mapas; nunca se mantiene tomado mientras se espera un candado de bucket.
type Store struct {
	mu          sync.Mutex
	buckets     map[entity.BucketID]*entity.StockBucket
	locks       map[entity.BucketID]chan struct{}
	movements   []*entity.MovementRecord
	products    map[string]*entity.Product
	warehouses  map[string]*entity.Warehouse
	seq         int64
	lockTimeout time.Duration
	now         func() time.Time
}

// NewStore crea un store vacío. lockTimeout <= 0 usa DefaultLockTimeout.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		buckets:     make(map[entity.BucketID]*entity.StockBucket),
		locks:       make(map[entity.BucketID]chan struct{}),
		products:    make(map[string]*entity.Product),
		warehouses:  make(map[string]*entity.Warehouse),
		lockTimeout: lockTimeout,
		now:         time.Now,
	}
}

// AddProduct registra o reemplaza un producto del catálogo.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.products[p.ID] = &cp
}

// AddWarehouse registra o reemplaza una bodega.
func (s *Store) AddWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := w
	s.warehouses[w.ID] = &cp
}

// SaveProduct permite sembrar el store desde catalog.Catalog.
func (s *Store) SaveProduct(_ context.Context, p entity.Product) error {
	s.AddProduct(p)
	return nil
}

// SaveWarehouse permite sembrar el store desde catalog.Catalog.
func (s *Store) SaveWarehouse(_ context.Context, w entity.Warehouse) error {
	s.AddWarehouse(w)
	return nil
}

// Run ejecuta fn en una transacción: las escrituras quedan en la tx hasta el commit y
// los candados se liberan al final, haya o no error.
func (s *Store) Run(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	t := s.begin()
	defer t.release()

	if err := fn(ctx, &MovementRepo{store: s, tx: t}, &StockRepo{store: s, tx: t}); err != nil {
		return err
	}
	t.commit()
	return nil
}

// Stock devuelve el repositorio de stock fuera de transacción (lecturas de reportes).
func (s *Store) Stock() *StockRepo { return &StockRepo{store: s} }

// Movements devuelve el repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{store: s} }

// Products devuelve el repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{store: s} }

// Warehouses devuelve el repositorio de bodegas.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{store: s} }

func (s *Store) begin() *tx {
	return &tx{
		store:  s,
		held:   make(map[entity.BucketID]chan struct{}),
		staged: make(map[entity.BucketID]*entity.StockBucket),
	}
}

func (s *Store) lockFor(key entity.BucketID) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

func (s *Store) nextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// tx estado de una transacción: candados tomados, buckets modificados y movimientos pendientes.
type tx struct {
	store     *Store
	held      map[entity.BucketID]chan struct{}
	order     []entity.BucketID
	staged    map[entity.BucketID]*entity.StockBucket
	movements []*entity.MovementRecord
}

// lock toma el candado del key; reentrante dentro de la misma tx.
func (t *tx) lock(ctx context.Context, bucket entity.BucketKey) error {
	key := bucket.ID()
	if _, ok := t.held[key]; ok {
		return nil
	}
	ch := t.store.lockFor(key)
	timer := time.NewTimer(t.store.lockTimeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		t.held[key] = ch
		t.order = append(t.order, key)
		return nil
	case <-timer.C:
		return domain.New(domain.KindLockTimeout, fmt.Sprintf("bucket %s bloqueado más de %s", bucket, t.store.lockTimeout))
	case <-ctx.Done():
		// Cancelación del llamador: no es reintentable.
		return domain.Wrap(domain.KindStorage, "espera de bloqueo cancelada", ctx.Err())
	}
}

// current devuelve el bucket visible para la tx (staged si lo modificó, si no el confirmado).
// Debe llamarse con el candado del key tomado.
func (t *tx) current(key entity.BucketKey) *entity.StockBucket {
	k := key.ID()
	if b, ok := t.staged[k]; ok {
		return b
	}
	t.store.mu.Lock()
	committed, ok := t.store.buckets[k]
	var cp entity.StockBucket
	if ok {
		cp = *committed
	}
	t.store.mu.Unlock()
	if !ok {
		now := t.store.now().UTC()
		cp = entity.StockBucket{
			ID:        t.store.nextID(),
			Key:       key,
			Quantity:  decimal.Zero,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	t.staged[k] = &cp
	return &cp
}

func (t *tx) commit() {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, b := range t.staged {
		cp := *b
		s.buckets[k] = &cp
	}
	s.movements = append(s.movements, t.movements...)
}

func (t *tx) release() {
	for i := len(t.order) - 1; i >= 0; i-- {
		<-t.held[t.order[i]]
	}
	t.held = nil
	t.order = nil
}
