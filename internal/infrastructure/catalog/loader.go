// Package catalog carga productos y bodegas desde un archivo JSON al arrancar.
// El CRUD del catálogo vive fuera del ledger; este archivo solo siembra lo que el motor necesita leer.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
)

// Sink destino de la carga (store en memoria o tablas PostgreSQL).
type Sink interface {
	SaveProduct(ctx context.Context, p entity.Product) error
	SaveWarehouse(ctx context.Context, w entity.Warehouse) error
}

type productFile struct {
	ID               string           `json:"id"`
	SKU              string           `json:"sku"`
	Name             string           `json:"name"`
	LotControlled    bool             `json:"lot_controlled"`
	SerialControlled bool             `json:"serial_controlled"`
	Perishable       bool             `json:"perishable"`
	MinStock         decimal.Decimal  `json:"min_stock"`
	ReorderPoint     *decimal.Decimal `json:"reorder_point"`
	Active           *bool            `json:"active"`
}

type warehouseFile struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Location string           `json:"location"`
	Capacity *decimal.Decimal `json:"capacity"`
}

type file struct {
	Products   []productFile   `json:"products"`
	Warehouses []warehouseFile `json:"warehouses"`
}

// Catalog contenido ya validado del archivo.
type Catalog struct {
	Products   []entity.Product
	Warehouses []entity.Warehouse
}

// LoadFile lee y valida el archivo JSON.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}
	return Parse(raw)
}

// Parse valida ids obligatorios y duplicados. active ausente equivale a true.
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catálogo JSON inválido: %w", err)
	}

	cat := &Catalog{}
	seen := map[string]bool{}
	for i, p := range f.Products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("producto #%d sin id", i)
		}
		if seen["p:"+id] {
			return nil, fmt.Errorf("producto %s duplicado", id)
		}
		seen["p:"+id] = true
		sku := p.SKU
		if sku == "" {
			sku = id
		}
		active := p.Active == nil || *p.Active
		cat.Products = append(cat.Products, entity.Product{
			ID:               id,
			SKU:              sku,
			Name:             p.Name,
			LotControlled:    p.LotControlled,
			SerialControlled: p.SerialControlled,
			Perishable:       p.Perishable,
			MinStock:         p.MinStock,
			ReorderPoint:     p.ReorderPoint,
			Active:           active,
		})
	}
	for i, w := range f.Warehouses {
		id := strings.TrimSpace(w.ID)
		if id == "" {
			return nil, fmt.Errorf("bodega #%d sin id", i)
		}
		if seen["w:"+id] {
			return nil, fmt.Errorf("bodega %s duplicada", id)
		}
		seen["w:"+id] = true
		cat.Warehouses = append(cat.Warehouses, entity.Warehouse{
			ID:       id,
			Name:     w.Name,
			Location: w.Location,
			Capacity: w.Capacity,
		})
	}
	return cat, nil
}

// Apply guarda bodegas y productos en el sink.
func (c *Catalog) Apply(ctx context.Context, sink Sink) error {
	for _, w := range c.Warehouses {
		if err := sink.SaveWarehouse(ctx, w); err != nil {
			return fmt.Errorf("bodega %s: %w", w.ID, err)
		}
	}
	for _, p := range c.Products {
		if err := sink.SaveProduct(ctx, p); err != nil {
			return fmt.Errorf("producto %s: %w", p.ID, err)
		}
	}
	return nil
}
