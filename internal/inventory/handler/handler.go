package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-pdv-service/internal/inventory"
	"github.com/fekuna/omnipos-pdv-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	tr     *i18n.Translator
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, tr *i18n.Translator, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		tr:     tr,
		logger: log,
	}
}

// ListMovements handles GET /api/v1/products/:id/movements?type=&page=&page_size=.
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	lang := c.GetHeader("Accept-Language")

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || productID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"reason":  i18n.MsgInvalidRequest,
			"message": h.tr.Message(lang, i18n.MsgInvalidRequest, nil),
		})
		return
	}

	filters := &dto.MovementFilters{
		ProductID:    productID,
		MovementType: c.Query("type"),
	}
	filters.Page, _ = strconv.Atoi(c.Query("page"))
	filters.PageSize, _ = strconv.Atoi(c.Query("page_size"))

	items, total, err := h.uc.ListMovements(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"reason":  i18n.MsgInternalError,
			"message": h.tr.Message(lang, i18n.MsgInternalError, nil),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     items,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}
