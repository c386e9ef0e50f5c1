// Package quality combines component quality ratings into a package-level score.
package quality

import (
	"github.com/shopspring/decimal"

	"solarwise/internal/errors"
)

var (
	// MaxScore is the top of the 0-10 rating scale
	MaxScore = decimal.NewFromInt(10)

	panelWeight    = decimal.RequireFromString("0.4")
	inverterWeight = decimal.RequireFromString("0.4")
	batteryWeight  = decimal.RequireFromString("0.2")
	pairWeight     = decimal.RequireFromString("0.5")
)

// Components holds the optional 0-10 ratings of a package's hardware
type Components struct {
	Panel    *decimal.Decimal `json:"panel,omitempty"`
	Inverter *decimal.Decimal `json:"inverter,omitempty"`
	Battery  *decimal.Decimal `json:"battery,omitempty"`
}

// Result is a package score. Sufficient is false when the panel or inverter
// rating is missing; such a score means insufficient data, not a poor rating.
type Result struct {
	Score      decimal.Decimal `json:"score"`
	Sufficient bool            `json:"sufficient"`
}

// Score weights panel and inverter at 40% each and the battery at 20%.
// Without a battery, panel and inverter count 50/50 so the score still spans 0-10.
func Score(c Components) (Result, error) {
	for _, r := range []struct {
		name  string
		value *decimal.Decimal
	}{
		{"panel", c.Panel},
		{"inverter", c.Inverter},
		{"battery", c.Battery},
	} {
		if r.value != nil && (r.value.IsNegative() || r.value.GreaterThan(MaxScore)) {
			return Result{}, errors.Inputf("%s score must be between 0 and 10, got %s", r.name, r.value)
		}
	}

	sufficient := c.Panel != nil && c.Inverter != nil
	if sufficient && c.Battery == nil {
		return Result{
			Score:      c.Panel.Mul(pairWeight).Add(c.Inverter.Mul(pairWeight)),
			Sufficient: true,
		}, nil
	}

	total := decimal.Zero
	if c.Panel != nil {
		total = total.Add(c.Panel.Mul(panelWeight))
	}
	if c.Inverter != nil {
		total = total.Add(c.Inverter.Mul(inverterWeight))
	}
	if c.Battery != nil {
		total = total.Add(c.Battery.Mul(batteryWeight))
	}
	return Result{Score: total, Sufficient: sufficient}, nil
}

// ParseComponents reads ratings as stored by the catalog, where an empty string means absent
func ParseComponents(panel, inverter, battery string) (Components, error) {
	var c Components
	for _, f := range []struct {
		name string
		raw  string
		dst  **decimal.Decimal
	}{
		{"panel", panel, &c.Panel},
		{"inverter", inverter, &c.Inverter},
		{"battery", battery, &c.Battery},
	} {
		if f.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return Components{}, errors.Wrapf(errors.TypeInput, err, "invalid %s score %q", f.name, f.raw)
		}
		*f.dst = &v
	}
	return c, nil
}
