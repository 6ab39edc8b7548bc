package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilis-erp/stock-ledger/internal/application/inventory"
	"github.com/lilis-erp/stock-ledger/internal/domain"
	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
	"github.com/lilis-erp/stock-ledger/internal/domain/repository"
)

func TestStockQuery_MovementsAndStock(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	receipt := f.apply(t, inventory.ApplyMovementInput{Type: entity.MovementTypeReceipt, ProductID: "LOT", Quantity: dec("12"), DestinationWarehouseID: "W1", Lot: "L-01", Note: "compra inicial"})
	f.apply(t, inventory.ApplyMovementInput{Type: entity.MovementTypeReceipt, ProductID: "LOT", Quantity: dec("3"), DestinationWarehouseID: "W1", Lot: "L-02"})
	f.apply(t, inventory.ApplyMovementInput{Type: entity.MovementTypeTransfer, ProductID: "LOT", Quantity: dec("2"), SourceWarehouseID: "W1", DestinationWarehouseID: "W2", Lot: "L-01"})

	uc := inventory.NewStockQueryUseCase(f.store.Stock(), f.store.Movements())

	all, err := uc.ListMovements(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	transfers, err := uc.ListMovements(ctx, repository.MovementFilter{Type: entity.MovementTypeTransfer})
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, "W2", transfers[0].DestinationWarehouseID)

	inW2, err := uc.ListMovements(ctx, repository.MovementFilter{WarehouseID: "W2"})
	require.NoError(t, err)
	assert.Len(t, inW2, 1)

	byNote, err := uc.ListMovements(ctx, repository.MovementFilter{Search: "inicial"})
	require.NoError(t, err)
	require.Len(t, byNote, 1)
	assert.Equal(t, receipt.ID, byNote[0].ID)

	got, err := uc.GetMovement(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, "L-01", got.Lot)
	assert.Equal(t, entity.MovementStatusApplied, got.Status)
	assert.Equal(t, "12", got.Quantity.String())

	_, err = uc.GetMovement(ctx, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	total, err := uc.TotalStock(ctx, "LOT", "W1")
	require.NoError(t, err)
	assert.Equal(t, "13", total.Total.String())

	buckets, err := uc.ListStock(ctx, repository.BucketFilter{ProductID: "LOT"})
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, "W1", buckets[0].WarehouseID)
	assert.Equal(t, "L-01", buckets[0].Lot)
	assert.Equal(t, "10", buckets[0].Quantity.String())
	assert.Equal(t, "W2", buckets[2].WarehouseID)
}
