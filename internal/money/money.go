// Package money provides exact-decimal currency arithmetic. Amounts are
// immutable values; every operation returns a new Amount rounded to two
// decimal places so repeated calculations never accumulate sub-cent drift.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrDivideByZero     = errors.New("divide by zero")
	ErrEmptySum         = errors.New("cannot sum an empty list of amounts")
)

// Amount is a monetary value in a single ISO-4217 currency.
type Amount struct {
	value    decimal.Decimal
	currency string
}

func New(value decimal.Decimal, currency string) Amount {
	return Amount{value: round2(value), currency: currency}
}

func FromString(value, currency string) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", value, err)
	}
	return New(d, currency), nil
}

func Zero(currency string) Amount {
	return Amount{value: decimal.Zero, currency: currency}
}

func (a Amount) Currency() string        { return a.currency }
func (a Amount) Value() decimal.Decimal  { return a.value }

func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.sameCurrency(b); err != nil {
		return Amount{}, err
	}
	return Amount{value: round2(a.value.Add(b.value)), currency: a.currency}, nil
}

func (a Amount) Subtract(b Amount) (Amount, error) {
	if err := a.sameCurrency(b); err != nil {
		return Amount{}, err
	}
	return Amount{value: round2(a.value.Sub(b.value)), currency: a.currency}, nil
}

func (a Amount) Multiply(factor decimal.Decimal) Amount {
	return Amount{value: round2(a.value.Mul(factor)), currency: a.currency}
}

func (a Amount) Divide(factor decimal.Decimal) (Amount, error) {
	if factor.IsZero() {
		return Amount{}, ErrDivideByZero
	}
	return Amount{value: round2(a.value.Div(factor)), currency: a.currency}, nil
}

// Percentage returns pct percent of the amount, e.g. Percentage(15) on
// 100.00 yields 15.00.
func (a Amount) Percentage(pct decimal.Decimal) Amount {
	return Amount{
		value:    round2(a.value.Mul(pct).Div(decimal.NewFromInt(100))),
		currency: a.currency,
	}
}

// Sum adds all amounts in the list. An empty list is an error: there is no
// currency to attribute a zero to.
func Sum(amounts []Amount) (Amount, error) {
	if len(amounts) == 0 {
		return Amount{}, ErrEmptySum
	}
	total := amounts[0]
	for _, a := range amounts[1:] {
		var err error
		total, err = total.Add(a)
		if err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

// Compare returns -1, 0 or 1 per decimal comparison semantics.
func (a Amount) Compare(b Amount) (int, error) {
	if err := a.sameCurrency(b); err != nil {
		return 0, err
	}
	return a.value.Cmp(b.value), nil
}

func (a Amount) IsZero() bool     { return a.value.IsZero() }
func (a Amount) IsNegative() bool { return a.value.IsNegative() }
func (a Amount) IsPositive() bool { return a.value.IsPositive() }

// Round re-applies the 2dp half-up rounding. Idempotent, since every
// constructor and operation already rounds.
func (a Amount) Round() Amount {
	return Amount{value: round2(a.value), currency: a.currency}
}

// String renders the bare two-decimal value, e.g. "150.00". This is the
// only representation that crosses into persistence or API responses.
func (a Amount) String() string {
	return a.value.StringFixed(2)
}

// Format renders the value with its currency code, e.g. "150.00 NZD".
func (a Amount) Format() string {
	return fmt.Sprintf("%s %s", a.value.StringFixed(2), a.currency)
}

func (a Amount) sameCurrency(b Amount) error {
	if a.currency != b.currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.currency, b.currency)
	}
	return nil
}

// round2 rounds half away from zero to two places, which is half-up for
// the non-negative amounts this domain deals in.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
