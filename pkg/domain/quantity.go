package domain

import "github.com/shopspring/decimal"

// Quantity is a non-negative, fractional lot size. The zero value is a
// valid zero quantity.
type Quantity struct {
	lots decimal.Decimal
}

// NewQuantity constructs a Quantity from a float64 lot count.
// Negative input is clamped to zero — callers that need to reject
// negative volumes should check before constructing.
func NewQuantity(lots float64) Quantity {
	d := decimal.NewFromFloat(lots)
	if d.IsNegative() {
		d = decimal.Zero
	}
	return Quantity{lots: d}
}

// Add returns q+other. Closed under addition: always non-negative.
func (q Quantity) Add(other Quantity) Quantity {
	return Quantity{lots: q.lots.Add(other.lots)}
}

// IsZero reports whether the quantity is exactly zero.
func (q Quantity) IsZero() bool {
	return q.lots.IsZero()
}

// Float64 returns the lot count as a float64.
func (q Quantity) Float64() float64 {
	f, _ := q.lots.Float64()
	return f
}

// Decimal returns the underlying decimal lot count.
func (q Quantity) Decimal() decimal.Decimal {
	return q.lots
}

func (q Quantity) String() string {
	return q.lots.StringFixed(2)
}

// MarshalJSON encodes the quantity as its decimal lot count, not as an
// empty object — Quantity's lot field is unexported so the default
// reflection-based encoder would otherwise drop it.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return q.lots.MarshalJSON()
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	return q.lots.UnmarshalJSON(data)
}
