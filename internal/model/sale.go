package model

import "time"

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
	PaymentPix    PaymentMethod = "pix"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCredit, PaymentDebit, PaymentPix:
		return true
	}
	return false
}

// Sale is written once per successful checkout and never updated.
type Sale struct {
	ID            int64         `db:"id" json:"id"`
	RequestID     *string       `db:"request_id" json:"request_id,omitempty"`
	Timestamp     time.Time     `db:"created_at" json:"timestamp"`
	TotalAmount   Money         `db:"total_cents" json:"total_amount"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	PaidAmount    *Money        `db:"paid_cents" json:"paid_amount"`   // Cash only
	ChangeAmount  *Money        `db:"change_cents" json:"change_amount"` // Cash only
	OperatorID    string        `db:"operator_id" json:"operator_id"`
	OperatorName  string        `db:"operator_name" json:"operator_name"`
	Items         []SaleItem    `db:"-" json:"items"`
}

type SaleItem struct {
	ID          int64  `db:"id" json:"id"`
	SaleID      int64  `db:"sale_id" json:"sale_id"`
	ProductID   int64  `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"` // Joined data
	Quantity    int    `db:"quantity" json:"quantity"`
	PriceAtSale Money  `db:"price_at_sale_cents" json:"price_at_sale"`
}

func (i SaleItem) Subtotal() Money {
	return i.PriceAtSale.Mul(i.Quantity)
}
