package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-pdv-service/internal/auth"
	"github.com/fekuna/omnipos-pdv-service/internal/model"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pdv-service/internal/sale"
	"github.com/fekuna/omnipos-pdv-service/internal/sale/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SaleHandler struct {
	uc     sale.UseCase
	tr     *i18n.Translator
	logger logger.ZapLogger
}

func NewSaleHandler(uc sale.UseCase, tr *i18n.Translator, log logger.ZapLogger) *SaleHandler {
	return &SaleHandler{
		uc:     uc,
		tr:     tr,
		logger: log,
	}
}

type cartItemRequest struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Price    model.Money `json:"price"`
}

type checkoutRequest struct {
	RequestID     *string           `json:"request_id"`
	Cart          []cartItemRequest `json:"cart"`
	PaymentMethod string            `json:"payment_method"`
	TotalAmount   *model.Money      `json:"total_amount"`
	PaidAmount    *model.Money      `json:"paid_amount"`
	ChangeAmount  *model.Money      `json:"change_amount"`
}

type checkoutResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Reason    string            `json:"reason,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
	Line      int               `json:"line,omitempty"`
	ProductID int64             `json:"product_id,omitempty"`
	SaleID    int64             `json:"sale_id,omitempty"`
	Replayed  bool              `json:"replayed,omitempty"`
	Receipts  []dto.ReceiptLine `json:"receipts"`
}

// Checkout handles POST /api/v1/pdv/checkout.
func (h *SaleHandler) Checkout(c *gin.Context) {
	lang := c.GetHeader("Accept-Language")
	op, _ := auth.GetOperator(c.Request.Context())

	var req checkoutRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("failed to decode checkout request", zap.String("operator_id", op.ID), zap.Error(err))
		c.JSON(http.StatusBadRequest, checkoutResponse{
			Reason:   i18n.MsgInvalidRequest,
			Message:  h.tr.Message(lang, i18n.MsgInvalidRequest, nil),
			Receipts: []dto.ReceiptLine{},
		})
		return
	}

	input := &dto.CheckoutInput{
		RequestID:     req.RequestID,
		OperatorID:    op.ID,
		OperatorName:  op.Name,
		Lines:         make([]dto.CartLine, 0, len(req.Cart)),
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		TotalAmount:   req.TotalAmount,
		PaidAmount:    req.PaidAmount,
		ChangeAmount:  req.ChangeAmount,
	}
	for _, item := range req.Cart {
		input.Lines = append(input.Lines, dto.CartLine{
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}

	res, err := h.uc.Checkout(c.Request.Context(), input)
	if err != nil {
		h.writeCheckoutError(c, lang, err)
		return
	}

	msg := h.tr.Message(lang, i18n.MsgCheckoutOK, nil)
	if res.Replayed {
		msg = h.tr.Message(lang, i18n.MsgCheckoutReplayed, map[string]any{"SaleID": res.Sale.ID})
	}
	c.JSON(http.StatusOK, checkoutResponse{
		Success:  true,
		Message:  msg,
		SaleID:   res.Sale.ID,
		Replayed: res.Replayed,
		Receipts: res.Receipts,
	})
}

func (h *SaleHandler) writeCheckoutError(c *gin.Context, lang string, err error) {
	ce, ok := sale.AsCheckoutError(err)
	if !ok {
		ce = sale.StorageFailure(err)
	}

	data := map[string]any{
		"Detail":      ce.Detail,
		"ProductID":   ce.ProductID,
		"ProductName": ce.ProductName,
		"Available":   ce.Available,
		"Requested":   ce.Requested,
		"Paid":        ce.Paid.String(),
		"Total":       ce.Total.String(),
	}
	c.JSON(statusFor(ce), checkoutResponse{
		Reason:    ce.Reason(),
		Message:   h.tr.Message(lang, ce.Reason(), data),
		Retryable: ce.Retryable(),
		Line:      ce.Line,
		ProductID: ce.ProductID,
		Receipts:  []dto.ReceiptLine{},
	})
}

func statusFor(ce *sale.CheckoutError) int {
	switch ce.Kind {
	case sale.KindValidation:
		if errors.Is(ce, sale.ErrMissingOperator) {
			return http.StatusUnauthorized
		}
		return http.StatusBadRequest
	case sale.KindBusinessRule:
		if errors.Is(ce, sale.ErrUnderpayment) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusConflict
	}
	if errors.Is(ce, sale.ErrLockTimeout) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// GetReceipts handles GET /api/v1/pdv/sales/:id/receipts.
func (h *SaleHandler) GetReceipts(c *gin.Context) {
	lang := c.GetHeader("Accept-Language")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"reason":  i18n.MsgInvalidRequest,
			"message": h.tr.Message(lang, i18n.MsgInvalidRequest, nil),
		})
		return
	}

	receipts, err := h.uc.GetReceipts(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sale.ErrSaleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"reason":  i18n.MsgSaleNotFound,
				"message": h.tr.Message(lang, i18n.MsgSaleNotFound, nil),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"reason":  i18n.MsgInternalError,
			"message": h.tr.Message(lang, i18n.MsgInternalError, nil),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sale_id": id, "receipts": receipts})
}
