package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product datos del catálogo que el motor de stock necesita: flags de trazabilidad y umbrales.
type Product struct {
	ID               string
	SKU              string
	Name             string
	LotControlled    bool
	SerialControlled bool
	Perishable       bool
	MinStock         decimal.Decimal
	ReorderPoint     *decimal.Decimal
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AlertThreshold umbral de bajo stock: punto de reorden si está definido y no es cero, si no stock mínimo.
func (p Product) AlertThreshold() decimal.Decimal {
	if p.ReorderPoint != nil && !p.ReorderPoint.IsZero() {
		return *p.ReorderPoint
	}
	return p.MinStock
}
