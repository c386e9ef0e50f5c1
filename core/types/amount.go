package types

import (
	"github.com/shopspring/decimal"

	"solarwise/internal/errors"
)

// Amount is a currency amount in whole currency units (not cents).
type Amount struct {
	value decimal.Decimal
}

// ZeroAmount is the zero currency amount
var ZeroAmount = Amount{}

// NewAmount wraps a decimal as a currency amount
func NewAmount(d decimal.Decimal) Amount {
	return Amount{value: d}
}

// AmountFromInt creates an amount from an integer
func AmountFromInt(v int64) Amount {
	return Amount{value: decimal.NewFromInt(v)}
}

// ParseAmount converts a caller-supplied float into an amount.
// Negative and non-finite values are rejected as input errors.
func ParseAmount(name string, f float64) (Amount, error) {
	if err := checkFinite(name, f); err != nil {
		return Amount{}, err
	}
	return Amount{value: decimal.NewFromFloat(f)}, nil
}

// AmountFromString parses a decimal string such as "11.00"
func AmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, errors.Parsing("invalid amount "+s, err)
	}
	return Amount{value: d}, nil
}

// MustAmount parses s and panics on failure. Intended for literals.
func MustAmount(s string) Amount {
	return Amount{value: decimal.RequireFromString(s)}
}

// Decimal returns the underlying decimal
func (a Amount) Decimal() decimal.Decimal { return a.value }

func (a Amount) Add(b Amount) Amount { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount { return Amount{value: a.value.Sub(b.value)} }

// Mul scales the amount by a dimensionless factor
func (a Amount) Mul(factor decimal.Decimal) Amount {
	return Amount{value: a.value.Mul(factor)}
}

// Div divides the amount by a dimensionless divisor
func (a Amount) Div(divisor decimal.Decimal) Amount {
	return Amount{value: a.value.Div(divisor)}
}

// PerUnit divides the amount by a per-unit rate, yielding consumption units.
func (a Amount) PerUnit(rate Amount) Units {
	return Units{value: a.value.Div(rate.value)}
}

func (a Amount) Cmp(b Amount) int { return a.value.Cmp(b.value) }
func (a Amount) Equal(b Amount) bool { return a.value.Equal(b.value) }
func (a Amount) LessThan(b Amount) bool { return a.value.LessThan(b.value) }
func (a Amount) LessThanOrEqual(b Amount) bool { return a.value.LessThanOrEqual(b.value) }
func (a Amount) GreaterThan(b Amount) bool { return a.value.GreaterThan(b.value) }
func (a Amount) IsZero() bool { return a.value.IsZero() }
func (a Amount) IsNegative() bool { return a.value.IsNegative() }
func (a Amount) IsPositive() bool { return a.value.IsPositive() }
func (a Amount) Round(places int32) Amount { return Amount{value: a.value.Round(places)} }
func (a Amount) InexactFloat64() float64 { return a.value.InexactFloat64() }
func (a Amount) StringFixed(places int32) string { return a.value.StringFixed(places) }

// String returns the canonical decimal representation
func (a Amount) String() string {
	return a.value.String()
}

// MaxAmount returns the larger of a and b
func MaxAmount(a, b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// MarshalJSON encodes the amount the way decimal does, as a quoted string
func (a Amount) MarshalJSON() ([]byte, error) {
	return a.value.MarshalJSON()
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.value.UnmarshalJSON(data)
}
