package sale

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-pdv-service/internal/model"
)

// Reason codes. They double as i18n message ids at the transport layer.
var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInvalidCart        = errors.New("invalid_cart")
	ErrInvalidPayment     = errors.New("invalid_payment")
	ErrUnderpayment       = errors.New("underpayment")
	ErrMissingOperator    = errors.New("unauthorized")
	ErrProductNotFound    = errors.New("product_not_found")
	ErrInsufficientStock  = errors.New("insufficient_stock")
	ErrCheckoutInProgress = errors.New("checkout_in_progress")
	ErrLockTimeout        = errors.New("storage_timeout")
	ErrStorage            = errors.New("internal_error")
)

// Repository-level signals.
var (
	ErrDuplicateRequest = errors.New("duplicate checkout request id")
	ErrSaleNotFound     = errors.New("sale not found")
)

type Kind int

const (
	// KindValidation never touches storage.
	KindValidation Kind = iota + 1
	// KindBusinessRule aborts an open transaction.
	KindBusinessRule
	// KindStorage is infrastructure trouble; details stay out of responses.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusinessRule:
		return "business_rule"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// CheckoutError is the only error type Checkout returns. Err is one of the
// reason sentinels above; Cause is the underlying storage error, if any.
type CheckoutError struct {
	Kind   Kind
	Err    error
	Detail string

	Line        int // 1-based cart line, 0 when not line specific
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
	Paid        model.Money
	Total       model.Money

	Cause error
}

func (e *CheckoutError) Error() string {
	var b strings.Builder
	b.WriteString("checkout: ")
	b.WriteString(e.Reason())
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
	}
	if e.ProductID != 0 {
		fmt.Fprintf(&b, ": product %d", e.ProductID)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *CheckoutError) Unwrap() []error {
	errs := []error{e.Err}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Reason is the stable machine-readable code.
func (e *CheckoutError) Reason() string {
	if e.Err == nil {
		return ErrStorage.Error()
	}
	return e.Err.Error()
}

// Retryable is true when resubmitting the same cart may succeed.
func (e *CheckoutError) Retryable() bool {
	return errors.Is(e.Err, ErrLockTimeout) || errors.Is(e.Err, ErrCheckoutInProgress)
}

func validationError(reason error, detail string, args ...any) *CheckoutError {
	return &CheckoutError{Kind: KindValidation, Err: reason, Detail: fmt.Sprintf(detail, args...)}
}

// InvalidCart, InvalidPayment and InvalidRequest build validation failures.
func InvalidCart(detail string, args ...any) *CheckoutError {
	return validationError(ErrInvalidCart, detail, args...)
}

func InvalidPayment(detail string, args ...any) *CheckoutError {
	return validationError(ErrInvalidPayment, detail, args...)
}

func InvalidRequest(detail string, args ...any) *CheckoutError {
	return validationError(ErrInvalidRequest, detail, args...)
}

func StorageFailure(cause error) *CheckoutError {
	reason := ErrStorage
	if errors.Is(cause, ErrLockTimeout) {
		reason = ErrLockTimeout
	}
	return &CheckoutError{Kind: KindStorage, Err: reason, Cause: cause}
}

// AsCheckoutError extracts a *CheckoutError from err's chain.
func AsCheckoutError(err error) (*CheckoutError, bool) {
	var ce *CheckoutError
	ok := errors.As(err, &ce)
	return ce, ok
}
