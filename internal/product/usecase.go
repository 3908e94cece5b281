package product

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-pdv-service/internal/model"
)

// MaxLookupResults caps every lookup regardless of catalog size.
const MaxLookupResults = 10

// ErrLookupUnavailable means the catalog could not be queried, as opposed
// to a query that matched nothing.
var ErrLookupUnavailable = errors.New("product lookup unavailable")

type UseCase interface {
	Lookup(ctx context.Context, query string) ([]model.Product, error)
}
