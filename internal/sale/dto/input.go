package dto

import "github.com/fekuna/omnipos-pdv-service/internal/model"

type CartLine struct {
	ProductID int64
	Name      string // As shown on the client; receipts use the catalog name
	Quantity  int
	UnitPrice model.Money
}

type CheckoutInput struct {
	RequestID     *string
	OperatorID    string
	OperatorName  string
	Lines         []CartLine
	PaymentMethod model.PaymentMethod
	TotalAmount   *model.Money // Client-computed, checked against the cart
	PaidAmount    *model.Money
	ChangeAmount  *model.Money // Advisory only; change is recomputed
}
