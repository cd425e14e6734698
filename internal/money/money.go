// Package money holds integer cent amounts tagged with a currency code.
// Floating point never touches a balance: user input is parsed as a decimal
// and converted to cents once, at the boundary.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrInvalidCurrency  = errors.New("currency must be a 3-letter code")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrOverflow         = errors.New("amount out of range")
)

// Code is an ISO-4217-like currency code, always upper case.
type Code string

// ParseCurrency normalizes s to an upper-case 3-letter code.
func ParseCurrency(s string) (Code, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
		}
	}
	return Code(s), nil
}

// Money is an amount in the smallest unit of its currency.
type Money struct {
	Cents    int64
	Currency Code
}

// New returns cents of currency c.
func New(cents int64, c Code) Money {
	return Money{Cents: cents, Currency: c}
}

// Add returns m + o. Both values must share a currency.
func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	cents, ok := AddCents(m.Cents, o.Cents)
	if !ok {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrOverflow, m, o)
	}
	return Money{Cents: cents, Currency: m.Currency}, nil
}

// Sub returns m - o. Both values must share a currency.
func (m Money) Sub(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	cents, ok := SubCents(m.Cents, o.Cents)
	if !ok {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrOverflow, m, o)
	}
	return Money{Cents: cents, Currency: m.Currency}, nil
}

// AddCents returns a + b, or false if the result does not fit in an int64.
func AddCents(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

// SubCents returns a - b, or false if the result does not fit in an int64.
func SubCents(a, b int64) (int64, bool) {
	d := a - b
	if (b > 0 && d > a) || (b < 0 && d < a) {
		return 0, false
	}
	return d, true
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents, Currency: m.Currency}
}

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsPositive() bool { return m.Cents > 0 }

// String formats m for logs, e.g. "12.34 EUR".
func (m Money) String() string {
	return Format(m.Cents, m.Currency)
}

// Sum adds amounts, all of which must be in currency c.
func Sum(c Code, amounts ...Money) (Money, error) {
	total := Money{Currency: c}
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

// ParseDecimal converts a decimal string in major units ("12.345") to cents,
// rounding half away from zero at the second decimal place.
func ParseDecimal(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents := d.Shift(2).Round(0)
	bi := cents.BigInt()
	if !bi.IsInt64() {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return bi.Int64(), nil
}

// Format renders cents with two decimal places followed by the currency code.
// Locale-aware symbols are left to the client.
func Format(cents int64, c Code) string {
	s := decimal.New(cents, -2).StringFixed(2)
	if c == "" {
		return s
	}
	return s + " " + string(c)
}
