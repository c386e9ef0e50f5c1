package tariff

import (
	"go.uber.org/zap"

	"solarwise/core/types"
	"solarwise/internal/errors"
)

// Units recovers the consumption implied by a bill amount.
//
// The result is the largest consumption whose bill does not exceed amount.
// A bill that lands inside a fixed-charge jump, or in the gap where one regime
// hands over to the next, maps to the boundary just below the jump. The result
// is exact and usually fractional; see EstimateUnits for the rounded value.
func (b *Biller) Units(amount types.Amount) (types.Units, error) {
	if amount.IsNegative() {
		return types.ZeroUnits, errors.Inputf("bill amount must not be negative, got %s", amount)
	}

	lower := types.ZeroUnits
	for i := range b.regimes {
		r := &b.regimes[i]
		if r.ceiling != nil && amount.GreaterThan(r.maxBill) {
			lower = *r.ceiling
			continue
		}
		units := types.MaxUnits(r.invert(amount), lower)
		b.logger.Debug("inverted bill",
			zap.String("amount", amount.String()),
			zap.String("regime", r.name),
			zap.String("units", units.String()))
		return units, nil
	}

	// unreachable for a validated schedule: the last regime is unbounded
	return lower, nil
}

// EstimateUnits is Units rounded half-up to a whole unit
func (b *Biller) EstimateUnits(amount types.Amount) (types.Units, error) {
	units, err := b.Units(amount)
	if err != nil {
		return types.ZeroUnits, err
	}
	return units.RoundHalfUp(), nil
}

// invert finds the owning block for amount and solves linearly inside it.
func (r *compiledRegime) invert(amount types.Amount) types.Units {
	for _, seg := range r.segments {
		floor := seg.floor()
		if amount.LessThan(floor) {
			return seg.start
		}
		if !seg.bounded() || amount.LessThanOrEqual(seg.top()) {
			return seg.start.Add(amount.Sub(floor).PerUnit(seg.block.Rate))
		}
	}
	return *r.ceiling
}
