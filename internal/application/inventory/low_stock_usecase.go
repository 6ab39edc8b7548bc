package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/lilis-erp/stock-ledger/internal/application/dto"
	"github.com/lilis-erp/stock-ledger/internal/domain"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

// LowStockUseCase genera las alertas de bajo stock: productos activos cuyo total en todas las
// bodegas está en o bajo el punto de reorden (o el stock mínimo si no hay punto de reorden).
type LowStockUseCase struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
}

// NewLowStockUseCase construye el caso de uso de alertas.
func NewLowStockUseCase(productRepo repository.ProductRepository, stockRepo repository.StockRepository) *LowStockUseCase {
	return &LowStockUseCase{productRepo: productRepo, stockRepo: stockRepo}
}

// Alerts devuelve las alertas ordenadas por mayor déficit; Priority 1 es la más urgente.
func (uc *LowStockUseCase) Alerts(ctx context.Context) ([]dto.LowStockAlertDTO, error) {
	products, err := uc.productRepo.ListActive(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "listar productos", err)
	}
	if len(products) == 0 {
		return []dto.LowStockAlertDTO{}, nil
	}
	totals, err := uc.stockRepo.TotalsByProduct(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "totales de stock", err)
	}

	alerts := make([]dto.LowStockAlertDTO, 0)
	for _, p := range products {
		current := totals[p.ID]
		threshold := p.AlertThreshold()
		if current.GreaterThan(threshold) {
			continue
		}
		deficit := threshold.Sub(current)
		if deficit.IsNegative() {
			deficit = decimal.Zero
		}
		alerts = append(alerts, dto.LowStockAlertDTO{
			ProductID:    p.ID,
			SKU:          p.SKU,
			ProductName:  p.Name,
			CurrentStock: current,
			Threshold:    threshold,
			Deficit:      deficit,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if !a.Deficit.Equal(b.Deficit) {
			return a.Deficit.GreaterThan(b.Deficit)
		}
		return a.SKU < b.SKU
	})
	for i := range alerts {
		alerts[i].Priority = i + 1
	}
	return alerts, nil
}
