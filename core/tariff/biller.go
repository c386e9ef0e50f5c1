package tariff

import (
	"go.uber.org/zap"

	"solarwise/core/types"
	"solarwise/internal/errors"
	"solarwise/internal/logging"
)

// Line is the charge for one consumed block
type Line struct {
	Block       int          `json:"block"`
	Units       types.Units  `json:"units"`
	Rate        types.Amount `json:"rate"`
	Amount      types.Amount `json:"amount"`
	FixedCharge types.Amount `json:"fixed_charge"`
}

// Bill is a bill breakdown. Lines hold only blocks that were actually
// consumed; the sum of line amounts plus FixedCharge equals Total.
type Bill struct {
	Schedule    string         `json:"schedule"`
	Regime      string         `json:"regime"`
	Currency    types.Currency `json:"currency"`
	Units       types.Units    `json:"units"`
	Lines       []Line         `json:"breakdown"`
	FixedCharge types.Amount   `json:"fixed_charge"`
	Total       types.Amount   `json:"total"`
}

// Biller applies one schedule forwards (units to amount) and backwards.
// It holds no mutable state and is safe for concurrent use.
type Biller struct {
	schedule *Schedule
	regimes  []compiledRegime
	logger   *zap.Logger
}

// NewBiller validates the schedule and prepares it for billing.
// The biller works on its own copy, so later edits to schedule do not reach it.
func NewBiller(schedule *Schedule, logger *zap.Logger) (*Biller, error) {
	schedule = schedule.Clone()
	regimes, err := compile(schedule)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Biller{
		schedule: schedule,
		regimes:  regimes,
		logger:   logger.With(logging.Schedule(schedule.Key())),
	}, nil
}

// Schedule returns the biller's copy of its schedule. Callers must not modify it.
func (b *Biller) Schedule() *Schedule {
	return b.schedule
}

// regimeFor selects the single regime that applies to a total unit count.
// Selection is on total consumption, never per block.
func (b *Biller) regimeFor(units types.Units) *compiledRegime {
	for i := range b.regimes {
		r := &b.regimes[i]
		if r.ceiling == nil || units.LessThanOrEqual(*r.ceiling) {
			return r
		}
	}
	return &b.regimes[len(b.regimes)-1]
}

// Bill computes the bill and per-block breakdown for a consumption
func (b *Biller) Bill(units types.Units) (Bill, error) {
	if units.IsNegative() {
		return Bill{}, errors.Inputf("units must not be negative, got %s", units)
	}

	regime := b.regimeFor(units)
	bill := Bill{
		Schedule:    b.schedule.Key(),
		Regime:      regime.name,
		Currency:    b.schedule.Currency,
		Units:       units,
		Lines:       []Line{},
		FixedCharge: types.ZeroAmount,
		Total:       types.ZeroAmount,
	}

	remaining := units
	for _, seg := range regime.segments {
		if !remaining.IsPositive() {
			break
		}

		take := remaining
		if seg.bounded() {
			take = types.MinUnits(remaining, seg.capacity)
		}
		line := Line{
			Block:  seg.block.Number,
			Units:  take,
			Rate:   seg.block.Rate,
			Amount: take.Priced(seg.block.Rate),
		}
		if b.schedule.FixedCharges == FixedChargePerBlock {
			line.FixedCharge = seg.block.FixedCharge
		}
		bill.Lines = append(bill.Lines, line)
		remaining = remaining.Sub(take)
	}

	if n := len(bill.Lines); n > 0 && b.schedule.FixedCharges == FixedChargeHighestBlock {
		bill.Lines[n-1].FixedCharge = regime.segments[n-1].block.FixedCharge
	}

	for _, line := range bill.Lines {
		bill.FixedCharge = bill.FixedCharge.Add(line.FixedCharge)
		bill.Total = bill.Total.Add(line.Amount)
	}
	bill.Total = bill.Total.Add(bill.FixedCharge)

	b.logger.Debug("computed bill",
		zap.String("units", units.String()),
		zap.String("regime", regime.name),
		zap.Int("blocks", len(bill.Lines)),
		zap.String("total", bill.Total.String()))

	return bill, nil
}
