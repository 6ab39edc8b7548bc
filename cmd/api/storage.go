package main

import (
	"context"
	"fmt"

	"github.com/lilis-erp/stock-ledger/internal/application/inventory"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
	"github.com/lilis-erp/stock-ledger/internal/infrastructure/catalog"
	"github.com/lilis-erp/stock-ledger/internal/infrastructure/memory"
	"github.com/lilis-erp/stock-ledger/internal/infrastructure/postgres"
	"github.com/lilis-erp/stock-ledger/pkg/config"
	"github.com/lilis-erp/stock-ledger/pkg/logger"
)

// storage puertos del ledger resueltos según LEDGER_STORAGE.
type storage struct {
	txRunner   inventory.TxRunner
	stock      repository.StockRepository
	movements  repository.InventoryMovementRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	catalog    catalog.Sink
	ping       func(ctx context.Context) error
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	switch cfg.Ledger.Storage {
	case config.StorageMemory:
		log.Warn().Msg("LEDGER_STORAGE=memory: el stock se pierde al reiniciar")
		store := memory.NewStore(cfg.Ledger.LockTimeout)
		return &storage{
			txRunner:   store,
			stock:      store.Stock(),
			movements:  store.Movements(),
			products:   store.Products(),
			warehouses: store.Warehouses(),
			catalog:    store,
			ping:       func(context.Context) error { return nil },
			close:      func() {},
		}, nil

	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("esquema del ledger verificado")
		}
		return &storage{
			txRunner:   postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
			stock:      postgres.NewStockRepository(pool),
			movements:  postgres.NewInventoryMovementRepository(pool),
			products:   postgres.NewProductRepository(pool),
			warehouses: postgres.NewWarehouseRepository(pool),
			catalog:    postgres.NewCatalogWriter(pool),
			ping:       pool.Ping,
			close:      pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("LEDGER_STORAGE desconocido: %s", cfg.Ledger.Storage)
}

// seedCatalog carga el archivo de catálogo y lo aplica al almacenamiento. Ante cualquier error
// cierra el almacenamiento antes de devolverlo, igual que openStorage cuando falla la migración.
func seedCatalog(ctx context.Context, st *storage, path string) (*catalog.Catalog, error) {
	cat, err := catalog.LoadFile(path)
	if err != nil {
		st.close()
		return nil, fmt.Errorf("cargar catálogo: %w", err)
	}
	if err := cat.Apply(ctx, st.catalog); err != nil {
		st.close()
		return nil, fmt.Errorf("aplicar catálogo: %w", err)
	}
	return cat, nil
}
