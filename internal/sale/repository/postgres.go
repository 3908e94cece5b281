package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	invrepo "github.com/fekuna/omnipos-pdv-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-pdv-service/internal/model"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-pdv-service/internal/sale"
	"github.com/jmoiron/sqlx"
)

const requestIDConstraint = "sales_request_id_key"

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// RunInTx runs fn in a READ COMMITTED transaction. Row locks taken with
// SELECT ... FOR UPDATE wait at most opts.LockTimeout.
func (r *PGRepository) RunInTx(ctx context.Context, opts sale.TxOptions, fn func(ctx context.Context, tx sale.Tx) error) error {
	tx, err := r.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin checkout tx: %w", err)
	}
	defer tx.Rollback()

	if opts.LockTimeout > 0 {
		// SET LOCAL does not accept bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", opts.LockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return translate(fmt.Errorf("commit checkout tx: %w", err))
	}
	return nil
}

type pgTx struct {
	tx *sqlx.Tx
}

func (t *pgTx) GetProductForUpdate(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	query := `SELECT id, name, price_cents, stock, barcode FROM products WHERE id = $1 FOR UPDATE`
	err := t.tx.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(err)
	}
	return &p, nil
}

func (t *pgTx) DecrementStock(ctx context.Context, productID int64, qty int) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1`,
		qty, productID)
	if err != nil {
		return translate(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows != 1 {
		return fmt.Errorf("stock of product %d would go negative", productID)
	}
	return nil
}

func (t *pgTx) InsertSale(ctx context.Context, s *model.Sale) error {
	query := `
        INSERT INTO sales (
            request_id, created_at, total_cents, payment_method,
            paid_cents, change_cents, operator_id, operator_name
        )
        VALUES (
            :request_id, :created_at, :total_cents, :payment_method,
            :paid_cents, :change_cents, :operator_id, :operator_name
        )
        RETURNING id
    `
	rows, err := sqlx.NamedQueryContext(ctx, t.tx, query, s)
	if err != nil {
		return translate(err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return translate(err)
		}
		return errors.New("insert sale returned no id")
	}
	return rows.Scan(&s.ID)
}

func (t *pgTx) InsertSaleItem(ctx context.Context, item *model.SaleItem) error {
	query := `
        INSERT INTO sale_items (sale_id, product_id, product_name, quantity, price_at_sale_cents)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	err := t.tx.QueryRowxContext(ctx, query,
		item.SaleID, item.ProductID, item.ProductName, item.Quantity, item.PriceAtSale,
	).Scan(&item.ID)
	return translate(err)
}

func (t *pgTx) LogMovement(ctx context.Context, m *model.InventoryMovement) error {
	return translate(invrepo.InsertMovement(ctx, t.tx, m))
}

func (r *PGRepository) FindSaleByID(ctx context.Context, id int64) (*model.Sale, error) {
	return r.findSale(ctx, `id = $1`, id)
}

func (r *PGRepository) FindSaleByRequestID(ctx context.Context, requestID string) (*model.Sale, error) {
	return r.findSale(ctx, `request_id = $1`, requestID)
}

func (r *PGRepository) findSale(ctx context.Context, where string, arg any) (*model.Sale, error) {
	var s model.Sale
	query := `SELECT id, request_id, created_at, total_cents, payment_method,
            paid_cents, change_cents, operator_id, operator_name
        FROM sales WHERE ` + where
	if err := r.DB.GetContext(ctx, &s, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items := []model.SaleItem{}
	itemsQuery := `SELECT id, sale_id, product_id, product_name, quantity, price_at_sale_cents
        FROM sale_items WHERE sale_id = $1 ORDER BY id`
	if err := r.DB.SelectContext(ctx, &items, itemsQuery, s.ID); err != nil {
		return nil, fmt.Errorf("load sale items: %w", err)
	}
	s.Items = items
	return &s, nil
}

// translate maps Postgres failures onto the sale package's signals.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case postgres.IsLockTimeout(err):
		return fmt.Errorf("%w: %v", sale.ErrLockTimeout, err)
	case postgres.IsUniqueViolation(err, requestIDConstraint):
		return fmt.Errorf("%w: %v", sale.ErrDuplicateRequest, err)
	}
	return err
}
