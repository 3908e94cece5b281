package model

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. JSON carries it as a decimal number with at
// most two fraction digits; the database stores the cents.
type Money int64

var ErrInvalidMoney = errors.New("invalid monetary amount")

func Cents(c int64) Money { return Money(c) }

func (m Money) Cents() int64 { return int64(m) }

func (m Money) Mul(qty int) Money { return m * Money(qty) }

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Decimal returns m in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	v, err := ParseMoney(string(data))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

var moneyPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]{1,2})?$`)

var maxMoney = decimal.NewFromInt(1 << 62)

// ParseMoney reads a plain decimal such as "12", "12.5" or "-0.05".
// Exponents and more than two fraction digits are rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if !moneyPattern.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidMoney, err)
	}
	cents := d.Shift(2)
	if cents.Abs().GreaterThan(maxMoney) {
		return 0, fmt.Errorf("%w: out of range", ErrInvalidMoney)
	}
	return Money(cents.IntPart()), nil
}

func (m Money) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*m = Money(v)
	case int32:
		*m = Money(v)
	case nil:
		*m = 0
	default:
		return fmt.Errorf("cannot scan %T into Money", src)
	}
	return nil
}
