package product

import (
	"context"

	"github.com/fekuna/omnipos-pdv-service/internal/model"
)

// Repository is the read side of the catalog used by lookup.
// FindByID and FindByBarcode return (nil, nil) when nothing matches.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	SearchByName(ctx context.Context, fragment string, limit int) ([]model.Product, error)
}
