package inventory

import (
	"sort"

	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
)

// LessFIFO orden de consumo: vencimiento más próximo primero, sin vencimiento al final,
// y a igual vencimiento el bucket creado antes.
func LessFIFO(a, b *entity.StockBucket) bool {
	ea, eb := a.Key.Expiry, b.Key.Expiry
	switch {
	case ea != nil && eb != nil && !ea.Equal(*eb):
		return ea.Before(*eb)
	case ea != nil && eb == nil:
		return true
	case ea == nil && eb != nil:
		return false
	}
	return a.ID < b.ID
}

// SortFIFO ordena in-place los buckets en orden de consumo.
func SortFIFO(buckets []*entity.StockBucket) {
	sort.SliceStable(buckets, func(i, j int) bool { return LessFIFO(buckets[i], buckets[j]) })
}
