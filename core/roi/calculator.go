package roi

import (
	"solarwise/core/sizing"
	"solarwise/core/tariff"
	"solarwise/core/types"
)

// Full is the combined answer for a bill and an optional system price
type Full struct {
	Recommendation sizing.Recommendation `json:"recommendation"`
	ROI            *Result               `json:"roi"`
}

// Calculator is the entry point for callers holding raw floats from a request.
// It validates inputs before any schedule logic runs.
type Calculator struct {
	engine *Engine
}

// NewCalculator wraps an engine
func NewCalculator(engine *Engine) *Calculator {
	return &Calculator{engine: engine}
}

// Engine returns the underlying engine
func (c *Calculator) Engine() *Engine {
	return c.engine
}

// CalculateRecommendation sizes a system for a monthly bill
func (c *Calculator) CalculateRecommendation(monthlyBillLKR float64) (sizing.Recommendation, error) {
	bill, err := types.ParseAmount("monthly_bill_lkr", monthlyBillLKR)
	if err != nil {
		return sizing.Recommendation{}, err
	}
	return c.engine.Recommend(bill)
}

// CalculateFull returns the recommendation and, when a system price is given, the ROI
func (c *Calculator) CalculateFull(monthlyBillLKR float64, systemPriceLKR *float64) (*Full, error) {
	bill, err := types.ParseAmount("monthly_bill_lkr", monthlyBillLKR)
	if err != nil {
		return nil, err
	}
	var price *types.Amount
	if systemPriceLKR != nil {
		p, err := types.ParseAmount("system_price_lkr", *systemPriceLKR)
		if err != nil {
			return nil, err
		}
		price = &p
	}

	rec, err := c.engine.Recommend(bill)
	if err != nil {
		return nil, err
	}
	full := &Full{Recommendation: rec}
	if price == nil {
		return full, nil
	}

	full.ROI, err = c.engine.Evaluate(bill, *price)
	if err != nil {
		return nil, err
	}
	return full, nil
}

// CalculateBill prices a monthly consumption
func (c *Calculator) CalculateBill(units float64) (tariff.Bill, error) {
	u, err := types.ParseUnits("units", units)
	if err != nil {
		return tariff.Bill{}, err
	}
	return c.engine.biller.Bill(u)
}

// CalculateUnits estimates the whole-unit consumption behind a bill
func (c *Calculator) CalculateUnits(billLKR float64) (types.Units, error) {
	bill, err := types.ParseAmount("bill_lkr", billLKR)
	if err != nil {
		return types.ZeroUnits, err
	}
	return c.engine.biller.EstimateUnits(bill)
}
