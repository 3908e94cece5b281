package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-pdv-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pdv-service/internal/product"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	uc     product.UseCase
	tr     *i18n.Translator
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, tr *i18n.Translator, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		tr:     tr,
		logger: log,
	}
}

// Search handles GET /api/v1/pdv/products/search?query=.
func (h *ProductHandler) Search(c *gin.Context) {
	query := c.Query("query")

	products, err := h.uc.Lookup(c.Request.Context(), query)
	if err != nil {
		h.logger.Warn("product search failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"reason":  i18n.MsgLookupUnavailable,
			"message": h.tr.Message(c.GetHeader("Accept-Language"), i18n.MsgLookupUnavailable, nil),
		})
		return
	}

	c.JSON(http.StatusOK, products)
}
