package inventory

import (
	"context"

	"github.com/fekuna/omnipos-pdv-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-pdv-service/internal/model"
)

// Repository reads the stock movement audit. Movements are written by the
// checkout transaction, never through this interface.
type Repository interface {
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
