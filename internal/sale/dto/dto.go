package dto

import (
	"time"

	"github.com/fekuna/omnipos-pdv-service/internal/model"
)

// ReceiptLine describes a single physical unit sold.
type ReceiptLine struct {
	SaleID        int64               `json:"sale_id"`
	UnitIndex     int                 `json:"unit_index"`
	UnitCount     int                 `json:"unit_count"`
	ProductID     int64               `json:"product_id"`
	ProductName   string              `json:"product_name"`
	UnitPrice     model.Money         `json:"unit_price"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	PaidAmount    *model.Money        `json:"paid_amount"`
	ChangeAmount  *model.Money        `json:"change_amount"`
	Timestamp     time.Time           `json:"timestamp"`
	OperatorName  string              `json:"operator_name"`
}

type CheckoutResult struct {
	Sale     *model.Sale
	Receipts []ReceiptLine
	Replayed bool
}
