package sale

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pdv-service/internal/model"
	"github.com/fekuna/omnipos-pdv-service/internal/sale/dto"
)

type UseCase interface {
	Checkout(ctx context.Context, input *dto.CheckoutInput) (*dto.CheckoutResult, error)
	GetReceipts(ctx context.Context, saleID int64) ([]dto.ReceiptLine, error)
}

// RequestLocker guards a checkout request id against concurrent resubmission.
type RequestLocker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// EventPublisher announces committed sales to downstream consumers.
type EventPublisher interface {
	PublishSaleCompleted(ctx context.Context, s *model.Sale) error
}
