// Package core holds the ledger domain: money, transactions, categories,
// the filter engine, the period resolver and the aggregator.
//
// This file contains the fixed-point money type. Amounts carry exactly two
// fraction digits and never pass through float64.
package core

import (
	"bytes"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MoneyFractionDigits is the number of digits kept after the decimal point.
	MoneyFractionDigits = 2
	// MoneyMaxDigits mirrors a decimal(12,2) column.
	MoneyMaxDigits = 12
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrTooManyDecimal = errors.New("ensure that there are no more than 2 decimal places")
	ErrTooManyDigits  = errors.New("ensure that there are no more than 12 digits in total")
)

// Money is an exact amount with two fraction digits.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{d: decimal.Zero}

// MoneyFromCents builds a Money from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -MoneyFractionDigits)}
}

// ParseMoney parses a decimal string such as "52.67", "1550" or "0,5".
//
// Both dot and comma separators are accepted. Values with more than two
// fraction digits or more than twelve significant digits are rejected rather
// than rounded, so a stored amount is always exactly what the client sent.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.Exponent() < -MoneyFractionDigits && !d.Equal(d.Truncate(MoneyFractionDigits)) {
		return Money{}, ErrTooManyDecimal
	}
	d = d.Truncate(MoneyFractionDigits)
	whole := d.Abs().Truncate(0).String()
	if whole != "0" && len(whole) > MoneyMaxDigits-MoneyFractionDigits {
		return Money{}, ErrTooManyDigits
	}
	return Money{d: d}, nil
}

// Cents returns the amount as an integer number of cents.
func (m Money) Cents() int64 {
	return m.d.Shift(MoneyFractionDigits).IntPart()
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

// Cmp returns -1, 0 or +1 comparing m to o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

func (m Money) IsZero() bool { return m.d.IsZero() }

func (m Money) IsPositive() bool { return m.d.IsPositive() }

func (m Money) IsNegative() bool { return m.d.IsNegative() }

// String renders the amount with exactly two fraction digits.
func (m Money) String() string {
	return m.d.StringFixed(MoneyFractionDigits)
}

// Validate checks that the amount is usable as a transaction amount.
func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON encodes the amount as a quoted fixed-point string ("50.00").
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a JSON number. The literal
// text is parsed directly so no binary floating point is involved.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return ErrInvalidAmount
	}
	parsed, err := ParseMoney(string(bytes.Trim(b, `"`)))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
