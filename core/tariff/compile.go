package tariff

import (
	"solarwise/core/types"
	"solarwise/internal/errors"
)

// segment is a block positioned within its regime. The bill for consumption u
// that falls inside the segment is entry + fixed + (u - start) * rate.
type segment struct {
	block Block

	// start is the exclusive lower edge (previous block's MaxUnits, 0 for the first)
	start types.Units

	// capacity is MaxUnits - start, zero for the unbounded block
	capacity types.Units

	// entry is the energy charge of all lower blocks, fully consumed
	entry types.Amount

	// fixed is the total fixed charge owed once consumption reaches this block
	fixed types.Amount
}

func (s segment) bounded() bool {
	return s.block.MaxUnits != nil
}

// floor is the lowest bill inside the segment, just past its start
func (s segment) floor() types.Amount {
	return s.entry.Add(s.fixed)
}

// top is the bill with the segment fully consumed; only meaningful when bounded
func (s segment) top() types.Amount {
	return s.floor().Add(s.capacity.Priced(s.block.Rate))
}

type compiledRegime struct {
	name     string
	ceiling  *types.Units
	segments []segment

	// maxBill is the bill at exactly the ceiling; unset for the unbounded regime
	maxBill types.Amount
}

// billAt evaluates the regime's bill function without building a breakdown
func (r *compiledRegime) billAt(u types.Units) types.Amount {
	if !u.IsPositive() {
		return types.ZeroAmount
	}
	for _, seg := range r.segments {
		if !seg.bounded() || u.LessThanOrEqual(*seg.block.MaxUnits) {
			return seg.floor().Add(u.Sub(seg.start).Priced(seg.block.Rate))
		}
	}
	return r.maxBill
}

// compile validates the schedule and lays out each regime's segments.
func compile(s *Schedule) ([]compiledRegime, error) {
	if s == nil {
		return nil, errors.Schedulef("schedule is nil")
	}
	if err := s.validateHeader(); err != nil {
		return nil, err
	}

	regimes := make([]compiledRegime, 0, len(s.Regimes))
	for i, r := range s.Regimes {
		if err := s.validateRegime(i, r); err != nil {
			return nil, err
		}

		cr := compiledRegime{name: r.Name, ceiling: r.Ceiling()}
		start := types.ZeroUnits
		entry := types.ZeroAmount
		fixed := types.ZeroAmount
		for _, b := range r.Blocks {
			switch s.FixedCharges {
			case FixedChargePerBlock:
				fixed = fixed.Add(b.FixedCharge)
			default:
				fixed = b.FixedCharge
			}

			seg := segment{block: b, start: start, entry: entry, fixed: fixed}
			if b.MaxUnits != nil {
				seg.capacity = b.MaxUnits.Sub(start)
				entry = entry.Add(seg.capacity.Priced(b.Rate))
				start = *b.MaxUnits
			}
			cr.segments = append(cr.segments, seg)
		}
		if cr.ceiling != nil {
			cr.maxBill = cr.segments[len(cr.segments)-1].top()
		}
		regimes = append(regimes, cr)
	}

	// Handing over to the next regime must never lower the bill, otherwise
	// the bill is not monotone in units and cannot be inverted.
	for i := 0; i+1 < len(regimes); i++ {
		lo, hi := &regimes[i], &regimes[i+1]
		at := *lo.ceiling
		if lo.maxBill.GreaterThan(hi.billAt(at)) {
			return nil, errors.Schedulef("schedule %s: bill drops from %s to %s when regime %s hands over to %s at %s units",
				s.Key(), lo.maxBill, hi.billAt(at), lo.name, hi.name, at)
		}
	}

	return regimes, nil
}
