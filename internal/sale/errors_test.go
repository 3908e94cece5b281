package sale

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("outer: %w", StorageFailure(cause))

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)

	ce, ok := AsCheckoutError(err)
	if assert.True(t, ok) {
		assert.Equal(t, KindStorage, ce.Kind)
		assert.Equal(t, "internal_error", ce.Reason())
		assert.False(t, ce.Retryable())
	}
}

func TestStorageFailure_LockTimeout(t *testing.T) {
	ce := StorageFailure(fmt.Errorf("lock product 3: %w", ErrLockTimeout))

	assert.ErrorIs(t, ce, ErrLockTimeout)
	assert.Equal(t, "storage_timeout", ce.Reason())
	assert.True(t, ce.Retryable())
}

func TestCheckoutError_Message(t *testing.T) {
	ce := &CheckoutError{
		Kind:      KindBusinessRule,
		Err:       ErrInsufficientStock,
		Line:      2,
		ProductID: 7,
		Detail:    "available 1, requested 3",
	}
	assert.Equal(t, "checkout: insufficient_stock: line 2: product 7: available 1, requested 3", ce.Error())
	assert.Equal(t, "business_rule", ce.Kind.String())

	assert.Equal(t, "checkout: invalid_cart: cart is empty", InvalidCart("cart is empty").Error())
}
