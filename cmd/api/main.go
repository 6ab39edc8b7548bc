package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/swaggo/swag"

	_ "github.com/lilis-erp/stock-ledger/docs"
	"github.com/lilis-erp/stock-ledger/internal/application/dto"
	"github.com/lilis-erp/stock-ledger/internal/application/inventory"
	httpRouter "github.com/lilis-erp/stock-ledger/internal/interfaces/http"
	"github.com/lilis-erp/stock-ledger/pkg/config"
	"github.com/lilis-erp/stock-ledger/pkg/logger"
	"github.com/lilis-erp/stock-ledger/pkg/metrics"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Ledger.Storage).
		Dur("lock_timeout", cfg.Ledger.LockTimeout).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.close()

	if cfg.Ledger.CatalogFile != "" {
		// seedCatalog cierra el almacenamiento si falla: Fatal no ejecuta los defer.
		cat, err := seedCatalog(ctx, store, cfg.Ledger.CatalogFile)
		if err != nil {
			log.Fatal().Err(err).Msg("sembrar catálogo")
		}
		log.Info().
			Int("products", len(cat.Products)).
			Int("warehouses", len(cat.Warehouses)).
			Msg("catálogo cargado")
	}

	m := metrics.New("stock_ledger")

	applyUC := inventory.NewApplyMovementUseCase(
		store.txRunner, store.products, store.warehouses,
		inventory.WithObserver(m),
		inventory.WithLogger(log.Component("ledger")),
	)
	queryUC := inventory.NewStockQueryUseCase(store.stock, store.movements)
	lowStockUC := inventory.NewLowStockUseCase(store.products, store.stock)

	inventoryHandler := httpRouter.NewInventoryHandler(applyUC, queryUC, lowStockUC,
		httpRouter.RetryPolicy{
			Attempts: cfg.Ledger.RetryAttempts,
			OnRetry:  m.LockRetried,
		},
		log.Component("http"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger.json no encontrado, /docs deshabilitado")
	}
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "documentación no disponible"})
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(doc)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := store.ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Inventory: inventoryHandler,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
