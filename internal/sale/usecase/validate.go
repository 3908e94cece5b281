package usecase

import (
	"math"

	"github.com/fekuna/omnipos-pdv-service/internal/model"
	"github.com/fekuna/omnipos-pdv-service/internal/sale"
	"github.com/fekuna/omnipos-pdv-service/internal/sale/dto"
	"github.com/google/uuid"
)

// MaxUnitsPerSale bounds the number of per-unit receipts one checkout emits.
const MaxUnitsPerSale = 1000

type payment struct {
	total  model.Money
	paid   *model.Money
	change *model.Money
	units  int
}

// validate checks the cart and payment without touching storage and
// returns the server-side totals.
func validate(input *dto.CheckoutInput) (*payment, error) {
	if input.OperatorID == "" {
		return nil, &sale.CheckoutError{Kind: sale.KindValidation, Err: sale.ErrMissingOperator, Detail: "operator id is required"}
	}
	if input.RequestID != nil {
		if _, err := uuid.Parse(*input.RequestID); err != nil {
			return nil, sale.InvalidRequest("request_id must be a UUID")
		}
	}
	if len(input.Lines) == 0 {
		return nil, sale.InvalidCart("cart is empty")
	}

	var total model.Money
	units := 0
	for i, line := range input.Lines {
		n := i + 1
		if line.ProductID <= 0 {
			return nil, lineError(sale.InvalidCart("product id must be positive"), n, line.ProductID)
		}
		if line.Quantity <= 0 {
			return nil, lineError(sale.InvalidCart("quantity must be a positive integer"), n, line.ProductID)
		}
		if line.UnitPrice < 0 {
			return nil, lineError(sale.InvalidCart("unit price must not be negative"), n, line.ProductID)
		}
		units += line.Quantity
		if units > MaxUnitsPerSale {
			return nil, sale.InvalidCart("more than %d units in one sale", MaxUnitsPerSale)
		}
		if line.UnitPrice > 0 && int64(line.Quantity) > math.MaxInt64/4/int64(line.UnitPrice) {
			return nil, lineError(sale.InvalidCart("line amount out of range"), n, line.ProductID)
		}
		total += line.UnitPrice.Mul(line.Quantity)
		if total < 0 {
			return nil, sale.InvalidCart("total amount out of range")
		}
	}

	if !input.PaymentMethod.Valid() {
		return nil, sale.InvalidPayment("unknown payment method %q", string(input.PaymentMethod))
	}
	if input.TotalAmount != nil && *input.TotalAmount != total {
		return nil, sale.InvalidCart("total_amount %s does not match cart total %s", *input.TotalAmount, total)
	}

	p := &payment{total: total, units: units}
	if input.PaymentMethod != model.PaymentCash {
		return p, nil
	}

	if input.PaidAmount == nil {
		return nil, sale.InvalidPayment("paid_amount is required for cash")
	}
	paid := *input.PaidAmount
	if paid < 0 {
		return nil, sale.InvalidPayment("paid_amount must not be negative")
	}
	if paid < total {
		return nil, &sale.CheckoutError{
			Kind:   sale.KindBusinessRule,
			Err:    sale.ErrUnderpayment,
			Detail: "paid " + paid.String() + " < total " + total.String(),
			Paid:   paid,
			Total:  total,
		}
	}
	change := paid - total
	p.paid = &paid
	p.change = &change
	return p, nil
}

func lineError(e *sale.CheckoutError, line int, productID int64) *sale.CheckoutError {
	e.Line = line
	e.ProductID = productID
	return e
}
