package http

import (
	"github.com/gofiber/fiber/v2"
)

// Roles con permiso para aplicar movimientos.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Inventory *InventoryHandler
	JWTSecret string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token; escribir movimientos
// además exige rol admin o bodeguero.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	inv := api.Group("/inventory")
	inv.Post("/movements", RequireRole(RoleAdmin, RoleBodeguero), deps.Inventory.ApplyMovement)
	inv.Get("/movements", deps.Inventory.ListMovements)
	inv.Get("/movements/:id", deps.Inventory.GetMovement)
	inv.Get("/stock", deps.Inventory.ListStock)
	inv.Get("/stock/total", deps.Inventory.StockTotal)
	inv.Get("/low-stock", deps.Inventory.LowStock)
}
