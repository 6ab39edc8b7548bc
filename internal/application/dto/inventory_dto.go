package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
)

// ApplyMovementRequest body para POST /api/inventory/movements.
// expiry_date en formato YYYY-MM-DD.
type ApplyMovementRequest struct {
	Type                   string          `json:"type"`
	ProductID              string          `json:"product_id"`
	Quantity               decimal.Decimal `json:"quantity"`
	SourceWarehouseID      string          `json:"source_warehouse_id,omitempty"`
	DestinationWarehouseID string          `json:"destination_warehouse_id,omitempty"`
	Lot                    string          `json:"lot,omitempty"`
	Serial                 string          `json:"serial,omitempty"`
	ExpiryDate             string          `json:"expiry_date,omitempty"`
	SupplierID             string          `json:"supplier_id,omitempty"`
	Note                   string          `json:"note,omitempty"`
}

// Expiry parsea expiry_date; vacío devuelve nil.
func (r ApplyMovementRequest) Expiry() (*time.Time, error) {
	s := strings.TrimSpace(r.ExpiryDate)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("expiry_date debe tener formato YYYY-MM-DD: %w", err)
	}
	return &t, nil
}

// MovementRecordDTO respuesta con el movimiento aplicado.
type MovementRecordDTO struct {
	ID                     string          `json:"id"`
	Type                   string          `json:"type"`
	Status                 string          `json:"status"`
	ProductID              string          `json:"product_id"`
	Quantity               decimal.Decimal `json:"quantity"`
	SourceWarehouseID      string          `json:"source_warehouse_id,omitempty"`
	DestinationWarehouseID string          `json:"destination_warehouse_id,omitempty"`
	Lot                    string          `json:"lot,omitempty"`
	Serial                 string          `json:"serial,omitempty"`
	ExpiryDate             string          `json:"expiry_date,omitempty"`
	SupplierID             string          `json:"supplier_id,omitempty"`
	Note                   string          `json:"note,omitempty"`
	CreatedBy              string          `json:"created_by,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
}

// NewMovementRecordDTO mapea la entidad a la respuesta.
func NewMovementRecordDTO(r *entity.MovementRecord) MovementRecordDTO {
	out := MovementRecordDTO{
		ID:                     r.ID,
		Type:                   string(r.Type),
		Status:                 r.Status,
		ProductID:              r.ProductID,
		Quantity:               r.Quantity,
		SourceWarehouseID:      r.SourceWarehouseID,
		DestinationWarehouseID: r.DestinationWarehouseID,
		Lot:                    r.Lot,
		Serial:                 r.Serial,
		SupplierID:             r.SupplierID,
		Note:                   r.Note,
		CreatedBy:              r.CreatedBy,
		CreatedAt:              r.CreatedAt,
	}
	if r.Expiry != nil {
		out.ExpiryDate = r.Expiry.Format(time.DateOnly)
	}
	return out
}

// StockBucketDTO cantidad de un bucket de stock.
type StockBucketDTO struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Lot         string          `json:"lot,omitempty"`
	Serial      string          `json:"serial,omitempty"`
	ExpiryDate  string          `json:"expiry_date,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewStockBucketDTO mapea un bucket a la respuesta.
func NewStockBucketDTO(b *entity.StockBucket) StockBucketDTO {
	return StockBucketDTO{
		ProductID:   b.Key.ProductID,
		WarehouseID: b.Key.WarehouseID,
		Lot:         b.Key.Lot,
		Serial:      b.Key.Serial,
		ExpiryDate:  b.Key.ExpiryString(),
		Quantity:    b.Quantity,
		UpdatedAt:   b.UpdatedAt,
	}
}

// StockTotalDTO total de un producto en una bodega.
type StockTotalDTO struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Total       decimal.Decimal `json:"total"`
}

// LowStockAlertDTO producto cuyo stock total está en o bajo su umbral de alerta.
type LowStockAlertDTO struct {
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	Threshold    decimal.Decimal `json:"threshold"` // punto de reorden o stock mínimo
	Deficit      decimal.Decimal `json:"deficit"`   // Threshold - CurrentStock, mínimo 0
	Priority     int             `json:"priority"`  // 1 = más urgente
}
