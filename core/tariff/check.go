package tariff

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"solarwise/core/types"
)

// maxViolations caps how many problems a single check records
const maxViolations = 20

// CheckReport is the outcome of exercising a schedule over a unit range
type CheckReport struct {
	Schedule   string   `json:"schedule"`
	MaxUnits   int64    `json:"max_units"`
	Checked    int64    `json:"checked"`
	Violations []string `json:"violations,omitempty"`
}

// OK reports whether no violations were found
func (r *CheckReport) OK() bool {
	return len(r.Violations) == 0
}

func (r *CheckReport) add(format string, args ...interface{}) {
	if len(r.Violations) < maxViolations {
		r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
	}
}

// Check bills every whole unit count from 0 to maxUnits and verifies that
// the breakdown adds up, that bills never decrease, and that inverting each
// bill returns the unit count it came from. It also inverts the midpoint
// between consecutive bills to confirm the inverse never decreases.
func Check(ctx context.Context, b *Biller, maxUnits int64) (*CheckReport, error) {
	report := &CheckReport{Schedule: b.schedule.Key(), MaxUnits: maxUnits}
	two := decimal.NewFromInt(2)

	var prevTotal types.Amount
	var prevUnits types.Units
	for u := int64(0); u <= maxUnits; u++ {
		if u%256 == 0 {
			if err := ctx.Err(); err != nil {
				return report, err
			}
		}

		units := types.UnitsFromInt(u)
		bill, err := b.Bill(units)
		if err != nil {
			return report, err
		}

		sumUnits := types.ZeroUnits
		sumAmount := types.ZeroAmount
		for _, line := range bill.Lines {
			sumUnits = sumUnits.Add(line.Units)
			sumAmount = sumAmount.Add(line.Amount)
		}
		if !sumUnits.Equal(units) {
			report.add("%d units: breakdown holds %s units", u, sumUnits)
		}
		if !sumAmount.Add(bill.FixedCharge).Equal(bill.Total) {
			report.add("%d units: breakdown sums to %s plus %s fixed, total is %s", u, sumAmount, bill.FixedCharge, bill.Total)
		}

		back, err := b.EstimateUnits(bill.Total)
		if err != nil {
			return report, err
		}
		if back.Sub(units).Decimal().Abs().GreaterThan(decimal.NewFromInt(1)) {
			report.add("%d units: bill %s inverts to %s units", u, bill.Total, back)
		}

		if u > 0 {
			if bill.Total.LessThan(prevTotal) {
				report.add("%d units: bill %s is lower than %s at %d units", u, bill.Total, prevTotal, u-1)
			}
			mid := prevTotal.Add(bill.Total).Div(two)
			midUnits, err := b.Units(mid)
			if err != nil {
				return report, err
			}
			exact, err := b.Units(bill.Total)
			if err != nil {
				return report, err
			}
			if midUnits.LessThan(prevUnits) || midUnits.GreaterThan(exact) {
				report.add("bill %s inverts to %s units, outside [%s, %s]", mid, midUnits, prevUnits, exact)
			}
			prevUnits = exact
		}
		prevTotal = bill.Total
		report.Checked++
	}

	return report, nil
}
