package usecase

import (
	"github.com/fekuna/omnipos-pdv-service/internal/model"
	"github.com/fekuna/omnipos-pdv-service/internal/sale/dto"
)

// BuildReceipts emits one receipt per physical unit, in cart order. A line of
// quantity 3 yields three receipts, each for a single unit.
func BuildReceipts(s *model.Sale) []dto.ReceiptLine {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}

	receipts := make([]dto.ReceiptLine, 0, count)
	for _, item := range s.Items {
		for u := 0; u < item.Quantity; u++ {
			receipts = append(receipts, dto.ReceiptLine{
				SaleID:        s.ID,
				UnitIndex:     len(receipts) + 1,
				UnitCount:     count,
				ProductID:     item.ProductID,
				ProductName:   item.ProductName,
				UnitPrice:     item.PriceAtSale,
				PaymentMethod: s.PaymentMethod,
				PaidAmount:    s.PaidAmount,
				ChangeAmount:  s.ChangeAmount,
				Timestamp:     s.Timestamp,
				OperatorName:  s.OperatorName,
			})
		}
	}
	return receipts
}
