package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de inventario.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeReceipt  MovementType = "RECEIPT"  // ingreso
	MovementTypeIssue    MovementType = "ISSUE"    // salida
	MovementTypeAdjust   MovementType = "ADJUST"   // ajuste absoluto
	MovementTypeReturn   MovementType = "RETURN"   // devolución
	MovementTypeTransfer MovementType = "TRANSFER" // traslado entre bodegas
)

// Valid indica si el tipo es uno de los conocidos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeReceipt, MovementTypeIssue, MovementTypeAdjust, MovementTypeReturn, MovementTypeTransfer:
		return true
	}
	return false
}

// Estados de un movimiento.
const (
	MovementStatusPending = "pending"
	MovementStatusApplied = "applied"
)

// Movement es la intención de cambiar stock, todavía no aplicada.
// Quantity es la cantidad a mover, salvo en ADJUST donde es el valor absoluto objetivo.
type Movement struct {
	ID                     string
	Type                   MovementType
	ProductID              string
	Quantity               decimal.Decimal
	SourceWarehouseID      string
	DestinationWarehouseID string
	Lot                    string
	Serial                 string
	Expiry                 *time.Time
	SupplierID             string
	Note                   string
	CreatedBy              string
	CreatedAt              time.Time
}

// BucketKey arma el key de stock del movimiento para la bodega indicada.
func (m Movement) BucketKey(warehouseID string) BucketKey {
	return BucketKey{
		ProductID:   m.ProductID,
		WarehouseID: warehouseID,
		Lot:         m.Lot,
		Serial:      m.Serial,
		Expiry:      m.Expiry,
	}
}

// AdjustWarehouseID bodega objetivo de un ajuste: destino si existe, si no origen.
func (m Movement) AdjustWarehouseID() string {
	if m.DestinationWarehouseID != "" {
		return m.DestinationWarehouseID
	}
	return m.SourceWarehouseID
}

// MovementRecord registro de auditoría inmutable de un movimiento ya aplicado (tabla inventory_movements).
type MovementRecord struct {
	Movement
	Status string
}
