package inventory

import (
	"context"

	"github.com/fekuna/omnipos-pdv-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-pdv-service/internal/model"
)

type UseCase interface {
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
