package tariff

import (
	"github.com/Masterminds/semver/v3"

	"solarwise/core/types"
	"solarwise/internal/errors"
)

// Validate checks the schedule's structure and fails fast on misconfiguration.
// Every loader calls it, so a schedule that reaches a Biller is well-formed.
func (s *Schedule) Validate() error {
	_, err := compile(s)
	return err
}

func (s *Schedule) validateHeader() error {
	if !s.Category.IsValid() {
		return errors.Schedulef("unknown tariff category %q", s.Category)
	}
	if _, err := semver.NewVersion(s.Version); err != nil {
		return errors.Wrapf(errors.TypeSchedule, err, "schedule %s has invalid version %q", s.Category, s.Version)
	}
	if s.Currency == "" {
		return errors.Schedulef("schedule %s has no currency", s.Key())
	}
	switch s.FixedCharges {
	case FixedChargeHighestBlock, FixedChargePerBlock:
	default:
		return errors.Schedulef("schedule %s has unknown fixed charge policy %q", s.Key(), s.FixedCharges)
	}
	if s.EffectiveTo != nil && !s.EffectiveTo.After(s.EffectiveFrom) {
		return errors.Schedulef("schedule %s ends before it starts", s.Key())
	}
	if len(s.Regimes) == 0 {
		return errors.Schedulef("schedule %s has no regimes", s.Key())
	}
	return nil
}

func (s *Schedule) validateRegime(i int, r Regime) error {
	if r.Name == "" {
		return errors.Schedulef("schedule %s regime %d has no name", s.Key(), i+1)
	}
	if len(r.Blocks) == 0 {
		return errors.Schedulef("schedule %s regime %s has no blocks", s.Key(), r.Name)
	}

	last := i == len(s.Regimes)-1
	if last && r.Ceiling() != nil {
		return errors.Schedulef("schedule %s: last regime %s must end in an unbounded block", s.Key(), r.Name)
	}
	if !last && r.Ceiling() == nil {
		return errors.Schedulef("schedule %s: only the last regime may be unbounded, %s is not last", s.Key(), r.Name)
	}

	one := types.UnitsFromInt(1)
	for j, b := range r.Blocks {
		ctx := func(e *errors.Error) *errors.Error {
			return e.WithContext("regime", r.Name).WithContext("block", b.Number)
		}
		if b.Number != j+1 {
			return ctx(errors.Schedulef("schedule %s regime %s: block %d is numbered %d", s.Key(), r.Name, j+1, b.Number))
		}
		if !b.MinUnits.Decimal().IsInteger() || (b.MaxUnits != nil && !b.MaxUnits.Decimal().IsInteger()) {
			return ctx(errors.Schedulef("schedule %s regime %s: block %d bounds must be whole units", s.Key(), r.Name, b.Number))
		}
		if j == 0 {
			if !b.MinUnits.IsZero() {
				return ctx(errors.Schedulef("schedule %s regime %s: first block must start at 0, starts at %s", s.Key(), r.Name, b.MinUnits))
			}
		} else {
			prev := r.Blocks[j-1]
			if prev.MaxUnits == nil {
				return ctx(errors.Schedulef("schedule %s regime %s: block %d follows an unbounded block", s.Key(), r.Name, b.Number))
			}
			want := prev.MaxUnits.Add(one)
			if !b.MinUnits.Equal(want) {
				return ctx(errors.Schedulef("schedule %s regime %s: block %d starts at %s, want %s (blocks must be contiguous and non-overlapping)",
					s.Key(), r.Name, b.Number, b.MinUnits, want))
			}
		}
		if b.MaxUnits != nil {
			if b.MaxUnits.LessThan(b.MinUnits) || (j == 0 && b.MaxUnits.IsZero()) {
				return ctx(errors.Schedulef("schedule %s regime %s: block %d is empty", s.Key(), r.Name, b.Number))
			}
		}
		if !b.Rate.IsPositive() {
			return ctx(errors.Schedulef("schedule %s regime %s: block %d rate must be positive", s.Key(), r.Name, b.Number))
		}
		if b.FixedCharge.IsNegative() {
			return ctx(errors.Schedulef("schedule %s regime %s: block %d fixed charge is negative", s.Key(), r.Name, b.Number))
		}
	}

	if i > 0 {
		prevCeiling := s.Regimes[i-1].Ceiling()
		if c := r.Ceiling(); c != nil && !c.GreaterThan(*prevCeiling) {
			return errors.Schedulef("schedule %s: regime %s ceiling %s does not exceed %s", s.Key(), r.Name, c, prevCeiling)
		}
	}
	return nil
}
