package usecase

import (
	"testing"
	"time"

	"github.com/fekuna/omnipos-pdv-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReceipts_OnePerUnit(t *testing.T) {
	ts := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	paid := model.Money(3000)
	change := model.Money(500)
	s := &model.Sale{
		ID:            42,
		Timestamp:     ts,
		TotalAmount:   2500,
		PaymentMethod: model.PaymentCash,
		PaidAmount:    &paid,
		ChangeAmount:  &change,
		OperatorName:  "caixa1",
		Items: []model.SaleItem{
			{ProductID: 1, ProductName: "Ingresso Pista", Quantity: 2, PriceAtSale: 1000},
			{ProductID: 2, ProductName: "Água", Quantity: 1, PriceAtSale: 500},
		},
	}

	receipts := BuildReceipts(s)
	require.Len(t, receipts, 3)

	for i, r := range receipts {
		assert.Equal(t, int64(42), r.SaleID)
		assert.Equal(t, i+1, r.UnitIndex)
		assert.Equal(t, 3, r.UnitCount)
		assert.Equal(t, ts, r.Timestamp)
		assert.Equal(t, "caixa1", r.OperatorName)
		assert.Equal(t, &paid, r.PaidAmount)
	}
	assert.Equal(t, "Ingresso Pista", receipts[1].ProductName)
	assert.Equal(t, model.Money(1000), receipts[1].UnitPrice)
	assert.Equal(t, int64(2), receipts[2].ProductID)
	assert.Equal(t, model.Money(500), receipts[2].UnitPrice)
}

func TestBuildReceipts_Empty(t *testing.T) {
	assert.Empty(t, BuildReceipts(&model.Sale{ID: 1}))
}
