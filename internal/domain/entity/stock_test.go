package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBucketKey_Identity(t *testing.T) {
	exp := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	base := BucketKey{ProductID: "P1", WarehouseID: "W1"}

	withLot := func(lot, serial string) BucketKey {
		k := base
		k.Lot, k.Serial = lot, serial
		return k
	}

	assert.True(t, base.Equal(BucketKey{ProductID: "P1", WarehouseID: "W1"}))
	assert.False(t, base.Equal(withLot("-", "")), "un lote \"-\" no es ausencia de lote")
	assert.False(t, withLot("A|B", "").Equal(withLot("A", "B|-")))
	assert.False(t, withLot("A", "").Equal(withLot("", "A")), "lote y serie no son intercambiables")

	dated := base
	dated.Expiry = &exp
	assert.False(t, base.Equal(dated))
	same := exp
	other := base
	other.Expiry = &same
	assert.True(t, dated.Equal(other), "se compara la fecha, no el puntero")

	ids := map[BucketID]bool{}
	for _, k := range []BucketKey{base, withLot("-", ""), withLot("A|B", ""), withLot("A", "B|-"), dated} {
		ids[k.ID()] = true
	}
	assert.Len(t, ids, 5)
}

func TestBucketKey_String(t *testing.T) {
	assert.Equal(t, `P1|W1|-|-|-`, BucketKey{ProductID: "P1", WarehouseID: "W1"}.String())
	assert.Equal(t, `P1|W1|"-"|"A|B"|-`, BucketKey{ProductID: "P1", WarehouseID: "W1", Lot: "-", Serial: "A|B"}.String())
}
