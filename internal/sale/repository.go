package sale

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pdv-service/internal/model"
)

type TxOptions struct {
	// LockTimeout bounds each row-lock wait inside the transaction.
	LockTimeout time.Duration
}

// Repository owns the checkout write path: product stock decrements and
// sale/sale item inserts, all inside one transaction.
type Repository interface {
	// RunInTx commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, opts TxOptions, fn func(ctx context.Context, tx Tx) error) error

	// FindSaleByID and FindSaleByRequestID load a committed sale with its
	// items, or (nil, nil) when absent.
	FindSaleByID(ctx context.Context, id int64) (*model.Sale, error)
	FindSaleByRequestID(ctx context.Context, requestID string) (*model.Sale, error)
}

// Tx is the set of operations available inside a checkout transaction.
type Tx interface {
	// GetProductForUpdate takes the row's write lock and holds it until the
	// transaction ends. Returns (nil, nil) for an unknown id.
	GetProductForUpdate(ctx context.Context, id int64) (*model.Product, error)
	DecrementStock(ctx context.Context, productID int64, qty int) error
	InsertSale(ctx context.Context, s *model.Sale) error
	InsertSaleItem(ctx context.Context, item *model.SaleItem) error
	LogMovement(ctx context.Context, m *model.InventoryMovement) error
}
