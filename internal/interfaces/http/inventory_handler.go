package http

import (
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lilis-erp/stock-ledger/internal/application/dto"
	"github.com/lilis-erp/stock-ledger/internal/application/inventory"
	"github.com/lilis-erp/stock-ledger/internal/domain"
	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

// RetryPolicy reintentos del borde HTTP cuando el ledger responde LOCK_TIMEOUT.
type RetryPolicy struct {
	Attempts        int           // reintentos adicionales; 0 = sin reintento
	InitialInterval time.Duration // espera antes del primer reintento
	OnRetry         func()        // opcional, para métricas
}

func (p RetryPolicy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	if b.InitialInterval <= 0 {
		b.InitialInterval = 50 * time.Millisecond
	}
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, uint64(p.Attempts))
}

// InventoryHandler maneja las peticiones HTTP de movimientos y stock (protegido).
type InventoryHandler struct {
	apply    *inventory.ApplyMovementUseCase
	query    *inventory.StockQueryUseCase
	lowStock *inventory.LowStockUseCase
	retry    RetryPolicy
	log      zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	apply *inventory.ApplyMovementUseCase,
	query *inventory.StockQueryUseCase,
	lowStock *inventory.LowStockUseCase,
	retry RetryPolicy,
	log zerolog.Logger,
) *InventoryHandler {
	return &InventoryHandler{apply: apply, query: query, lowStock: lowStock, retry: retry, log: log}
}

// ApplyMovement godoc
// @Summary      Aplicar movimiento de inventario
// @Description  RECEIPT/RETURN suman en destino, ISSUE descuenta FIFO en origen, ADJUST fija la cantidad
// @Description  absoluta de un bucket y TRANSFER mueve de origen a destino. Todo o nada.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ApplyMovementRequest  true  "movimiento"
// @Success      201   {object}  dto.MovementRecordDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) ApplyMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: string(domain.KindInvalidInput), Message: "cuerpo inválido"})
	}

	ctx := c.Context()
	policy := backoff.WithContext(h.retry.backOff(), ctx)
	rec, err := backoff.RetryNotifyWithData(func() (*entity.MovementRecord, error) {
		rec, err := h.apply.ApplyFromRequest(ctx, userID, in)
		if err != nil && !domain.IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return rec, err
	}, policy, func(err error, wait time.Duration) {
		h.log.Warn().Err(err).Dur("wait", wait).Str("product_id", in.ProductID).Msg("bucket bloqueado, reintentando movimiento")
		if h.retry.OnRetry != nil {
			h.retry.OnRetry()
		}
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementRecordDTO(rec))
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        type          query  string  false  "RECEIPT|ISSUE|ADJUST|RETURN|TRANSFER"
// @Param        product_id    query  string  false  "producto"
// @Param        warehouse_id  query  string  false  "bodega (origen o destino)"
// @Param        q             query  string  false  "busca en lote, serie y observación"
// @Param        from          query  string  false  "desde (YYYY-MM-DD)"
// @Param        to            query  string  false  "hasta inclusive (YYYY-MM-DD)"
// @Param        limit         query  int     false  "máximo 100"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: string(domain.KindInvalidInput), Message: "paginación inválida"})
	}
	page.DefaultPage()

	filter := repository.MovementFilter{
		Type:        entity.MovementType(strings.ToUpper(c.Query("type"))),
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Search:      c.Query("q"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return writeError(c, domain.New(domain.KindInvalidMovementType, string(filter.Type)))
	}
	from, err := parseDateParam(c.Query("from"), false)
	if err != nil {
		return writeError(c, err)
	}
	to, err := parseDateParam(c.Query("to"), true)
	if err != nil {
		return writeError(c, err)
	}
	filter.From, filter.To = from, to

	list, err := h.query.ListMovements(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"movements": list,
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementRecordDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	out, err := h.query.GetMovement(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListStock godoc
// @Summary      Listar buckets de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "producto"
// @Param        warehouse_id  query  string  false  "bodega"
// @Param        lot           query  string  false  "lote"
// @Param        positive      query  bool    false  "solo buckets con saldo"
// @Param        limit         query  int     false  "máximo 100"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: string(domain.KindInvalidInput), Message: "paginación inválida"})
	}
	page.DefaultPage()

	list, err := h.query.ListStock(c.Context(), repository.BucketFilter{
		ProductID:    c.Query("product_id"),
		WarehouseID:  c.Query("warehouse_id"),
		Lot:          c.Query("lot"),
		OnlyPositive: c.QueryBool("positive", false),
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"buckets": list,
		"page":    dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// StockTotal godoc
// @Summary      Stock total de producto en bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true  "producto"
// @Param        warehouse_id  query  string  true  "bodega"
// @Success      200  {object}  dto.StockTotalDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/total [get]
func (h *InventoryHandler) StockTotal(c *fiber.Ctx) error {
	productID, warehouseID := c.Query("product_id"), c.Query("warehouse_id")
	if productID == "" || warehouseID == "" {
		return writeError(c, domain.New(domain.KindInvalidInput, "product_id y warehouse_id son obligatorios"))
	}
	out, err := h.query.TotalStock(c.Context(), productID, warehouseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Alertas de bajo stock
// @Description  Productos activos cuyo stock total está en o bajo el punto de reorden (o el stock mínimo).
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	alerts, err := h.lowStock.Alerts(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":  len(alerts),
		"alerts": alerts,
	})
}

// parseDateParam acepta YYYY-MM-DD o RFC3339. endOfDay lleva una fecha sola al último instante del día.
func parseDateParam(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, domain.New(domain.KindInvalidInput, "fecha inválida: "+raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
