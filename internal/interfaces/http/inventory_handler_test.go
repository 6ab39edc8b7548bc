package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilis-erp/stock-ledger/internal/application/dto"
	"github.com/lilis-erp/stock-ledger/internal/application/inventory"
	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
	"github.com/lilis-erp/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/lilis-erp/stock-ledger/internal/interfaces/http"
)

// newInventoryApp arma la API completa sobre el store en memoria.
func newInventoryApp(t *testing.T, lockTimeout time.Duration, retry apphttp.RetryPolicy) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore(lockTimeout)
	store.AddWarehouse(entity.Warehouse{ID: "W1", Name: "Central"})
	store.AddWarehouse(entity.Warehouse{ID: "W2", Name: "Sucursal"})
	store.AddProduct(entity.Product{ID: "P1", SKU: "ARROZ-1K", Name: "Arroz 1kg", MinStock: decimal.NewFromInt(5), Active: true})

	apply := inventory.NewApplyMovementUseCase(store, store.Products(), store.Warehouses())
	query := inventory.NewStockQueryUseCase(store.Stock(), store.Movements())
	low := inventory.NewLowStockUseCase(store.Products(), store.Stock())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Inventory: apphttp.NewInventoryHandler(apply, query, low, retry, zerolog.Nop()),
		JWTSecret: testJWTSecret,
	})
	return app, store
}

func call(t *testing.T, app *fiber.App, method, path, role, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestApplyMovement_Created(t *testing.T) {
	app, _ := newInventoryApp(t, 0, apphttp.RetryPolicy{})

	resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", "bodeguero",
		`{"type":"receipt","product_id":"P1","quantity":"10","destination_warehouse_id":"W1","note":"compra"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var rec dto.MovementRecordDTO
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Equal(t, "RECEIPT", rec.Type)
	assert.Equal(t, entity.MovementStatusApplied, rec.Status)
	assert.Equal(t, testUserID, rec.CreatedBy)
	assert.True(t, rec.Quantity.Equal(decimal.NewFromInt(10)))
	assert.NotEmpty(t, rec.ID)

	resp, raw = call(t, app, http.MethodGet, "/api/inventory/movements/"+rec.ID, "vendedor", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.MovementRecordDTO
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "compra", got.Note)
}

func TestApplyMovement_RequiresWriterRole(t *testing.T) {
	app, store := newInventoryApp(t, 0, apphttp.RetryPolicy{})

	resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", "vendedor",
		`{"type":"RECEIPT","product_id":"P1","quantity":"1","destination_warehouse_id":"W1"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(raw), "FORBIDDEN")

	resp, _ = call(t, app, http.MethodPost, "/api/inventory/movements", "",
		`{"type":"RECEIPT","product_id":"P1","quantity":"1","destination_warehouse_id":"W1"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	list, err := store.Movements().List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestApplyMovement_ValidationProblemsAggregated(t *testing.T) {
	app, _ := newInventoryApp(t, 0, apphttp.RetryPolicy{})

	resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", "admin",
		`{"type":"ISSUE","product_id":"P1","quantity":"0"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeError(t, raw)
	kinds := make([]string, 0, len(body.Problems))
	for _, p := range body.Problems {
		kinds = append(kinds, p.Kind)
	}
	assert.ElementsMatch(t, []string{"MISSING_SOURCE", "INVALID_QUANTITY"}, kinds)
}

func TestApplyMovement_ErrorStatuses(t *testing.T) {
	app, _ := newInventoryApp(t, 0, apphttp.RetryPolicy{})

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"producto inexistente", `{"type":"RECEIPT","product_id":"P9","quantity":"1","destination_warehouse_id":"W1"}`, http.StatusNotFound, "UNKNOWN_PRODUCT"},
		{"bodega inexistente", `{"type":"RECEIPT","product_id":"P1","quantity":"1","destination_warehouse_id":"W9"}`, http.StatusNotFound, "UNKNOWN_WAREHOUSE"},
		{"stock insuficiente", `{"type":"ISSUE","product_id":"P1","quantity":"1","source_warehouse_id":"W1"}`, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"misma bodega", `{"type":"TRANSFER","product_id":"P1","quantity":"1","source_warehouse_id":"W1","destination_warehouse_id":"W1"}`, http.StatusBadRequest, "SAME_WAREHOUSE"},
		{"tipo desconocido", `{"type":"LOAN","product_id":"P1","quantity":"1","destination_warehouse_id":"W1"}`, http.StatusBadRequest, "INVALID_MOVEMENT_TYPE"},
		{"fecha inválida", `{"type":"RECEIPT","product_id":"P1","quantity":"1","destination_warehouse_id":"W1","expiry_date":"31/12/2030"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"json inválido", `{"type":`, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", "admin", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode, string(raw))
			assert.Equal(t, tc.code, decodeError(t, raw).Code)
		})
	}
}

func TestApplyMovement_LockTimeoutIs503(t *testing.T) {
	app, store := newInventoryApp(t, 30*time.Millisecond, apphttp.RetryPolicy{})

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.Run(context.Background(), func(ctx context.Context, _ repository.InventoryMovementRepository, stock repository.StockRepository) error {
			_, _ = stock.LockBucket(ctx, entity.BucketKey{ProductID: "P1", WarehouseID: "W1"})
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", "admin",
		`{"type":"RECEIPT","product_id":"P1","quantity":"1","destination_warehouse_id":"W1"}`)
	close(release)
	<-done

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "LOCK_TIMEOUT", decodeError(t, raw).Code)
}

func TestApplyMovement_RetriesLockTimeout(t *testing.T) {
	var retries atomic.Int32
	app, store := newInventoryApp(t, 30*time.Millisecond, apphttp.RetryPolicy{
		Attempts:        10,
		InitialInterval: 20 * time.Millisecond,
		OnRetry:         func() { retries.Add(1) },
	})

	held := make(chan struct{})
	go func() {
		_ = store.Run(context.Background(), func(ctx context.Context, _ repository.InventoryMovementRepository, stock repository.StockRepository) error {
			_, _ = stock.LockBucket(ctx, entity.BucketKey{ProductID: "P1", WarehouseID: "W1"})
			close(held)
			time.Sleep(60 * time.Millisecond)
			return nil
		})
	}()
	<-held

	resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", "admin",
		`{"type":"RECEIPT","product_id":"P1","quantity":"4","destination_warehouse_id":"W1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.GreaterOrEqual(t, retries.Load(), int32(1))

	total, err := store.Stock().TotalForProductInWarehouse(context.Background(), "P1", "W1")
	require.NoError(t, err)
	assert.Equal(t, "4", total.String())
}

func TestInventoryQueries(t *testing.T) {
	app, _ := newInventoryApp(t, 0, apphttp.RetryPolicy{})
	post := func(body string) {
		resp, raw := call(t, app, http.MethodPost, "/api/inventory/movements", "admin", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	}
	post(`{"type":"RECEIPT","product_id":"P1","quantity":"8","destination_warehouse_id":"W1","lot":"L1"}`)
	post(`{"type":"TRANSFER","product_id":"P1","quantity":"3","source_warehouse_id":"W1","destination_warehouse_id":"W2"}`)

	t.Run("historial filtrado por tipo", func(t *testing.T) {
		resp, raw := call(t, app, http.MethodGet, "/api/inventory/movements?type=transfer", "vendedor", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Movements []dto.MovementRecordDTO `json:"movements"`
			Page      dto.PageResponse        `json:"page"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		require.Len(t, body.Movements, 1)
		assert.Equal(t, "W2", body.Movements[0].DestinationWarehouseID)
		assert.Equal(t, 20, body.Page.Limit)
	})

	t.Run("tipo de filtro inválido", func(t *testing.T) {
		resp, _ := call(t, app, http.MethodGet, "/api/inventory/movements?type=LOAN", "vendedor", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("fecha de filtro inválida", func(t *testing.T) {
		resp, _ := call(t, app, http.MethodGet, "/api/inventory/movements?from=ayer", "vendedor", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("movimiento inexistente", func(t *testing.T) {
		resp, raw := call(t, app, http.MethodGet, "/api/inventory/movements/no-existe", "vendedor", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, raw).Code)
	})

	t.Run("buckets", func(t *testing.T) {
		resp, raw := call(t, app, http.MethodGet, "/api/inventory/stock?product_id=P1&positive=true", "vendedor", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Buckets []dto.StockBucketDTO `json:"buckets"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		require.Len(t, body.Buckets, 2)
		assert.Equal(t, "W1", body.Buckets[0].WarehouseID)
		assert.Equal(t, "L1", body.Buckets[0].Lot)
		assert.True(t, body.Buckets[0].Quantity.Equal(decimal.NewFromInt(5)))
	})

	t.Run("total", func(t *testing.T) {
		resp, raw := call(t, app, http.MethodGet, "/api/inventory/stock/total?product_id=P1&warehouse_id=W2", "vendedor", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out dto.StockTotalDTO
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.True(t, out.Total.Equal(decimal.NewFromInt(3)))

		resp, _ = call(t, app, http.MethodGet, "/api/inventory/stock/total?product_id=P1", "vendedor", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bajo stock", func(t *testing.T) {
		resp, raw := call(t, app, http.MethodGet, "/api/inventory/low-stock", "vendedor", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Total  int                    `json:"total"`
			Alerts []dto.LowStockAlertDTO `json:"alerts"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		// 8 en total contra mínimo 5: sin alerta.
		assert.Equal(t, 0, body.Total)
	})
}
