package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned when arithmetic is attempted between
// two Money values denominated in different currencies.
var ErrCurrencyMismatch = errors.New("domain: currency mismatch")

// Money is an (amount, currency) pair. There is no implicit conversion
// between currencies; Add and Sub fail with ErrCurrencyMismatch instead.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney constructs a Money from a float64 amount, for call sites that
// don't already hold a decimal.Decimal (e.g. config defaults).
func NewMoney(amount float64, currency string) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add returns m+other. Fails with ErrCurrencyMismatch if the currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m-other. Fails with ErrCurrencyMismatch if the currencies differ.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Mul scales m by a unitless factor (e.g. commission-per-lot * volume);
// this never touches currency, so it cannot fail.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor), Currency: m.Currency}
}

// Float64 returns the amount as a float64, for reporting/JSON boundaries
// where exactness is not required (metrics, logs).
func (m Money) Float64() float64 {
	f, _ := m.Amount.Float64()
	return f
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}
