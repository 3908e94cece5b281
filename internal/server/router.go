package server

import (
	"net/http"
	"time"

	"github.com/fekuna/omnipos-pdv-service/internal/auth"
	invH "github.com/fekuna/omnipos-pdv-service/internal/inventory/handler"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-pdv-service/internal/pkg/logger"
	prodH "github.com/fekuna/omnipos-pdv-service/internal/product/handler"
	saleH "github.com/fekuna/omnipos-pdv-service/internal/sale/handler"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Product   *prodH.ProductHandler
	Sale      *saleH.SaleHandler
	Inventory *invH.InventoryHandler
}

// NewRouter registers every HTTP endpoint. All API routes require an operator.
func NewRouter(h Handlers, tr *i18n.Translator, log logger.ZapLogger) *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery(), RequestLogger(log))

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := e.Group("/api/v1", auth.RequireOperator(tr))

	pdv := api.Group("/pdv")
	pdv.GET("/products/search", h.Product.Search)
	pdv.POST("/checkout", h.Sale.Checkout)
	pdv.GET("/sales/:id/receipts", h.Sale.GetReceipts)

	api.GET("/products/:id/movements", h.Inventory.ListMovements)

	return e
}

// RequestLogger logs one line per request on zap.
func RequestLogger(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if op, ok := auth.GetOperator(c.Request.Context()); ok {
			fields = append(fields, zap.String("operator_id", op.ID))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("http request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("http request", fields...)
		default:
			log.Info("http request", fields...)
		}
	}
}
