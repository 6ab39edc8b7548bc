package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lilis-erp/stock-ledger/internal/domain"
	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
)

// Escala de las cantidades del ledger (NUMERIC(14,3)).
const QuantityScale = 3

// maxQuantity primer valor que ya no cabe en 14 dígitos con 3 decimales.
var maxQuantity = decimal.New(1, 14-QuantityScale)

// ValidateMovement aplica las reglas de forma del movimiento según su tipo y los flags de trazabilidad
// del producto. Es pura: no toca almacenamiento. Acumula todos los problemas en un *domain.ValidationError
// y devuelve nil si no hay ninguno. today es la fecha contra la que se evalúa el vencimiento.
func ValidateMovement(m entity.Movement, p entity.Product, today time.Time) error {
	ve := &domain.ValidationError{}

	if !m.Type.Valid() {
		ve.Add(domain.KindInvalidMovementType, "tipo de movimiento desconocido: "+string(m.Type))
		return ve
	}

	hasSrc := m.SourceWarehouseID != ""
	hasDst := m.DestinationWarehouseID != ""

	switch m.Type {
	case entity.MovementTypeReceipt, entity.MovementTypeReturn:
		if !hasDst {
			ve.Add(domain.KindMissingDestination, "debe indicar bodega destino")
		}
	case entity.MovementTypeIssue:
		if !hasSrc {
			ve.Add(domain.KindMissingSource, "debe indicar bodega origen")
		}
	case entity.MovementTypeTransfer:
		if !hasSrc {
			ve.Add(domain.KindMissingSource, "debe indicar bodega origen")
		}
		if !hasDst {
			ve.Add(domain.KindMissingDestination, "debe indicar bodega destino para la transferencia")
		}
		if hasSrc && hasDst && m.SourceWarehouseID == m.DestinationWarehouseID {
			ve.Add(domain.KindSameWarehouse, "la transferencia debe ser entre bodegas distintas")
		}
	case entity.MovementTypeAdjust:
		if !hasSrc && !hasDst {
			ve.Add(domain.KindMissingWarehouse, "debe indicar una bodega para realizar el ajuste")
		}
	}

	if m.Type == entity.MovementTypeAdjust {
		if m.Quantity.IsNegative() {
			ve.Add(domain.KindInvalidQuantity, "el ajuste no puede fijar una cantidad negativa")
		}
	} else if !m.Quantity.IsPositive() {
		ve.Add(domain.KindInvalidQuantity, "la cantidad debe ser mayor que cero")
	}
	if !m.Quantity.Equal(m.Quantity.Round(QuantityScale)) {
		ve.Add(domain.KindInvalidQuantity, fmt.Sprintf("la cantidad admite hasta %d decimales", QuantityScale))
	}
	if m.Quantity.Abs().GreaterThanOrEqual(maxQuantity) {
		ve.Add(domain.KindInvalidQuantity, "la cantidad excede el máximo almacenable")
	}

	if p.LotControlled && m.Lot == "" {
		ve.Add(domain.KindMissingTraceability, "el producto se controla por lote")
	}
	if p.SerialControlled && m.Serial == "" {
		ve.Add(domain.KindMissingTraceability, "el producto se controla por serie")
	}
	if p.Perishable && m.Expiry == nil {
		ve.Add(domain.KindMissingTraceability, "el producto es perecible y requiere fecha de vencimiento")
	}

	if m.Expiry != nil && (m.Type == entity.MovementTypeReceipt || m.Type == entity.MovementTypeTransfer) {
		if m.Expiry.Before(DateOf(today)) {
			ve.Add(domain.KindExpiredStock, "vencimiento "+m.Expiry.Format(time.DateOnly)+" ya pasó")
		}
	}

	return ve.OrNil()
}
