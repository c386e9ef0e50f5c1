package types

import (
	"github.com/shopspring/decimal"
)

// Units is an electricity consumption quantity in kWh, the tariff's billing dimension.
type Units struct {
	value decimal.Decimal
}

// ZeroUnits is zero consumption
var ZeroUnits = Units{}

// NewUnits wraps a decimal as a consumption quantity
func NewUnits(d decimal.Decimal) Units {
	return Units{value: d}
}

// UnitsFromInt creates a whole-unit consumption quantity
func UnitsFromInt(v int64) Units {
	return Units{value: decimal.NewFromInt(v)}
}

// ParseUnits converts a caller-supplied float into units.
// Negative and non-finite values are rejected as input errors.
func ParseUnits(name string, f float64) (Units, error) {
	if err := checkFinite(name, f); err != nil {
		return Units{}, err
	}
	return Units{value: decimal.NewFromFloat(f)}, nil
}

// Decimal returns the underlying decimal
func (u Units) Decimal() decimal.Decimal { return u.value }

func (u Units) Add(v Units) Units { return Units{value: u.value.Add(v.value)} }
func (u Units) Sub(v Units) Units { return Units{value: u.value.Sub(v.value)} }

// Priced multiplies the quantity by a per-unit rate
func (u Units) Priced(rate Amount) Amount {
	return Amount{value: u.value.Mul(rate.value)}
}

func (u Units) Cmp(v Units) int { return u.value.Cmp(v.value) }
func (u Units) Equal(v Units) bool { return u.value.Equal(v.value) }
func (u Units) LessThan(v Units) bool { return u.value.LessThan(v.value) }
func (u Units) LessThanOrEqual(v Units) bool { return u.value.LessThanOrEqual(v.value) }
func (u Units) GreaterThan(v Units) bool { return u.value.GreaterThan(v.value) }
func (u Units) IsZero() bool { return u.value.IsZero() }
func (u Units) IsNegative() bool { return u.value.IsNegative() }
func (u Units) IsPositive() bool { return u.value.IsPositive() }
func (u Units) InexactFloat64() float64 { return u.value.InexactFloat64() }
func (u Units) IntPart() int64 { return u.value.IntPart() }

// RoundHalfUp rounds to the nearest whole unit, halves rounding up.
// Units are never negative, so decimal's half-away-from-zero is half-up here.
func (u Units) RoundHalfUp() Units {
	return Units{value: u.value.Round(0)}
}

// String returns the canonical decimal representation
func (u Units) String() string {
	return u.value.String()
}

// MinUnits returns the smaller of a and b
func MinUnits(a, b Units) Units {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MaxUnits returns the larger of a and b
func MaxUnits(a, b Units) Units {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// MarshalJSON encodes the quantity the way decimal does, as a quoted string
func (u Units) MarshalJSON() ([]byte, error) {
	return u.value.MarshalJSON()
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string
func (u *Units) UnmarshalJSON(data []byte) error {
	return u.value.UnmarshalJSON(data)
}
