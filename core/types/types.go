// Package types defines the semantic value types shared across all layers.
// Currency amounts and consumption units are distinct types so the two can
// never be swapped across the forward/inverse billing boundary.
package types

import (
	"math"

	"solarwise/internal/errors"
)

// Currency represents a currency code
type Currency string

const (
	CurrencyLKR Currency = "LKR"
	CurrencyUSD Currency = "USD"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// checkFinite rejects NaN, ±Inf and negative inputs before they reach decimal,
// which panics on non-finite floats.
func checkFinite(name string, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.Inputf("%s must be a finite number", name).WithContext(name, f)
	}
	if f < 0 {
		return errors.Inputf("%s must not be negative", name).WithContext(name, f)
	}
	return nil
}
