package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PGRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPGRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestPGRepository_FindByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "price_cents", "stock", "barcode"}).
		AddRow(int64(49), "Água Mineral", int64(350), int64(12), nil)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = $1`)).
		WithArgs(int64(49)).
		WillReturnRows(rows)

	p, err := repo.FindByID(context.Background(), 49)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(49), p.ID)
	assert.Equal(t, int64(350), p.Price.Cents())
	assert.Nil(t, p.Barcode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_FindByBarcode_NoRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE barcode = $1`)).
		WithArgs("7891234567890").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price_cents", "stock", "barcode"}))

	p, err := repo.FindByBarcode(context.Background(), "7891234567890")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_SearchByName_EscapesWildcards(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "price_cents", "stock", "barcode"}).
		AddRow(int64(3), "Desconto 50%", int64(1000), int64(4), "123")
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE name ILIKE $1`)).
		WithArgs(`%50\%%`, 10).
		WillReturnRows(rows)

	products, err := repo.SearchByName(context.Background(), "50%", 10)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.NotNil(t, products[0].Barcode)
	assert.Equal(t, "123", *products[0].Barcode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_SearchByName_Error(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE name ILIKE $1`)).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.SearchByName(context.Background(), "x", 10)
	assert.EqualError(t, err, "connection refused")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\_b\%c\\d`, escapeLike(`a_b%c\d`))
}
