package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BucketKey identifica un bucket de stock: producto, bodega y lote/serie/vencimiento opcionales.
// Lot y Serial vacíos significan "sin valor"; Expiry nil significa sin vencimiento.
type BucketKey struct {
	ProductID   string
	WarehouseID string
	Lot         string
	Serial      string
	Expiry      *time.Time
}

// ExpiryString devuelve el vencimiento como YYYY-MM-DD o "" si no tiene.
func (k BucketKey) ExpiryString() string {
	if k.Expiry == nil {
		return ""
	}
	return k.Expiry.Format(time.DateOnly)
}

// BucketID forma comparable del key, apta como clave de map. Lot y Serial vacíos siguen siendo
// "ausente", distinto de cualquier código no vacío; HasExpiry separa "sin vencimiento".
type BucketID struct {
	ProductID   string
	WarehouseID string
	Lot         string
	Serial      string
	Expiry      string
	HasExpiry   bool
}

// ID devuelve la identidad del key. Dos keys son el mismo bucket si y solo si sus ID coinciden.
func (k BucketKey) ID() BucketID {
	return BucketID{
		ProductID:   k.ProductID,
		WarehouseID: k.WarehouseID,
		Lot:         k.Lot,
		Serial:      k.Serial,
		Expiry:      k.ExpiryString(),
		HasExpiry:   k.Expiry != nil,
	}
}

// Equal compara keys tratando "ausente" como un valor distinto.
func (k BucketKey) Equal(o BucketKey) bool {
	return k.ID() == o.ID()
}

// String forma legible para logs y mensajes; los códigos van entre comillas y "-" marca ausente.
func (k BucketKey) String() string {
	exp := k.ExpiryString()
	if exp == "" {
		exp = "-"
	}
	return strings.Join([]string{k.ProductID, k.WarehouseID, quoteOrDash(k.Lot), quoteOrDash(k.Serial), exp}, "|")
}

func quoteOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return strconv.Quote(s)
}

// StockBucket representa la cantidad disponible de un key de stock (tabla stock_buckets).
// Quantity nunca es negativa; ID crece con el orden de creación y desempata el FIFO.
type StockBucket struct {
	ID        int64
	Key       BucketKey
	Quantity  decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
