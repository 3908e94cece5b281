package usecase

import (
	"context"

	"github.com/fekuna/omnipos-pdv-service/internal/inventory"
	"github.com/fekuna/omnipos-pdv-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-pdv-service/internal/model"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	filters.Normalize()
	items, count, err := uc.repo.ListMovements(ctx, filters)
	if err != nil {
		uc.logger.Error("failed to list movements", zap.Int64("product_id", filters.ProductID), zap.Error(err))
		return nil, 0, err
	}
	return items, count, nil
}
