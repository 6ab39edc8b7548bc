package inventory

import (
	"context"

	"github.com/lilis-erp/stock-ledger/internal/application/dto"
	"github.com/lilis-erp/stock-ledger/internal/domain"
	"github.com/lilis-erp/stock-ledger/internal/domain/entity"
)

// ApplyFromRequest adapta el request HTTP al caso de uso Apply(ctx, ApplyMovementInput).
// actorID viene del token del llamador.
func (uc *ApplyMovementUseCase) ApplyFromRequest(ctx context.Context, actorID string, in dto.ApplyMovementRequest) (*entity.MovementRecord, error) {
	expiry, err := in.Expiry()
	if err != nil {
		ve := &domain.ValidationError{}
		ve.Add(domain.KindInvalidInput, err.Error())
		return nil, ve
	}
	return uc.Apply(ctx, ApplyMovementInput{
		Type:                   entity.MovementType(in.Type),
		ProductID:              in.ProductID,
		Quantity:               in.Quantity,
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Lot:                    in.Lot,
		Serial:                 in.Serial,
		Expiry:                 expiry,
		SupplierID:             in.SupplierID,
		Note:                   in.Note,
		ActorID:                actorID,
	})
}
