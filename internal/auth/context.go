package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-pdv-service/internal/pkg/i18n"
	"github.com/gin-gonic/gin"
)

const (
	HeaderOperatorID   = "X-Operator-ID"
	HeaderOperatorName = "X-Operator-Name"
	HeaderOperatorRole = "X-Operator-Role"

	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// Operator is the authenticated cashier as asserted by the auth gateway.
type Operator struct {
	ID   string
	Name string
	Role string
}

type operatorKey struct{}

func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

// GetOperator returns the operator stored by RequireOperator.
func GetOperator(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(operatorKey{}).(Operator)
	return op, ok
}

// RequireOperator rejects requests without an operator id (401) or with a
// role that may not sell (403). The operator is stored on the request context.
func RequireOperator(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		op := Operator{
			ID:   strings.TrimSpace(c.GetHeader(HeaderOperatorID)),
			Name: strings.TrimSpace(c.GetHeader(HeaderOperatorName)),
			Role: strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderOperatorRole))),
		}
		lang := c.GetHeader("Accept-Language")

		if op.ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"reason":  i18n.MsgUnauthorized,
				"message": tr.Message(lang, i18n.MsgUnauthorized, nil),
			})
			return
		}
		if op.Role != RoleAdmin && op.Role != RoleOperator {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"reason":  i18n.MsgForbidden,
				"message": tr.Message(lang, i18n.MsgForbidden, nil),
			})
			return
		}
		if op.Name == "" {
			op.Name = op.ID
		}

		c.Request = c.Request.WithContext(WithOperator(c.Request.Context(), op))
		c.Next()
	}
}
