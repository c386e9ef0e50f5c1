// Package roi estimates solar savings and payback from a monthly electricity bill.
package roi

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solarwise/core/sizing"
	"solarwise/core/tariff"
	"solarwise/core/types"
	"solarwise/internal/errors"
)

const monthsPerYear = 12

// Reasons a result carries no payback
const (
	ReasonNoSavings = "annual savings are not positive, payback is undefined"
	ReasonNoSystem  = "bill is too small to justify any system, payback is undefined"
)

// Result is the savings and payback estimate for one bill and system price
type Result struct {
	MonthlyBill       types.Amount    `json:"monthly_bill"`
	EstimatedUnits    types.Units     `json:"estimated_units"`
	CapacityKW        decimal.Decimal `json:"recommended_capacity_kw"`
	MonthlyGeneration types.Units     `json:"monthly_generation"`
	PostSolarUnits    types.Units     `json:"post_solar_units"`
	PostSolarBill     types.Amount    `json:"post_solar_bill"`
	MonthlySavings    types.Amount    `json:"estimated_monthly_savings"`
	AnnualSavings     types.Amount    `json:"estimated_annual_savings"`
	SystemPrice       types.Amount    `json:"system_price"`

	// PaybackYears is nil when no system is sized or annual savings are not positive
	PaybackYears *decimal.Decimal `json:"payback_years"`

	// Recommended is false whenever PaybackYears is nil
	Recommended bool   `json:"recommended"`
	Reason      string `json:"reason,omitempty"`

	// Breakdown is the pre-solar bill
	Breakdown tariff.Bill `json:"tariff_breakdown"`
}

// Engine composes inverse billing, sizing and forward billing.
// It is stateless and safe for concurrent use.
type Engine struct {
	biller *tariff.Biller
	sizer  *sizing.Sizer
	logger *zap.Logger
}

// NewEngine creates an engine over one tariff schedule and sizing configuration
func NewEngine(biller *tariff.Biller, sizer *sizing.Sizer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{biller: biller, sizer: sizer, logger: logger}
}

// Biller returns the engine's biller
func (e *Engine) Biller() *tariff.Biller {
	return e.biller
}

// Recommend estimates consumption from a monthly bill and sizes a system for it
func (e *Engine) Recommend(monthlyBill types.Amount) (sizing.Recommendation, error) {
	units, err := e.biller.EstimateUnits(monthlyBill)
	if err != nil {
		return sizing.Recommendation{}, err
	}
	return e.sizer.Recommend(units)
}

// Evaluate computes savings and payback for a system priced at systemPrice.
// Solar output is assumed to displace grid consumption unit for unit.
func (e *Engine) Evaluate(monthlyBill, systemPrice types.Amount) (*Result, error) {
	if systemPrice.IsNegative() {
		return nil, errors.Inputf("system price must not be negative, got %s", systemPrice)
	}

	units, err := e.biller.EstimateUnits(monthlyBill)
	if err != nil {
		return nil, err
	}
	rec, err := e.sizer.Recommend(units)
	if err != nil {
		return nil, err
	}

	generation := e.sizer.Generation(rec.CapacityKW)
	postSolarUnits := types.MaxUnits(types.ZeroUnits, units.Sub(generation))
	postSolar, err := e.biller.Bill(postSolarUnits)
	if err != nil {
		return nil, err
	}
	before, err := e.biller.Bill(units)
	if err != nil {
		return nil, err
	}

	monthlySavings := monthlyBill.Sub(postSolar.Total)
	annualSavings := monthlySavings.Mul(decimal.NewFromInt(monthsPerYear))

	result := &Result{
		MonthlyBill:       monthlyBill,
		EstimatedUnits:    units,
		CapacityKW:        rec.CapacityKW,
		MonthlyGeneration: generation,
		PostSolarUnits:    postSolarUnits,
		PostSolarBill:     postSolar.Total,
		MonthlySavings:    monthlySavings,
		AnnualSavings:     annualSavings,
		SystemPrice:       systemPrice,
		Breakdown:         before,
	}

	switch {
	case !rec.CapacityKW.IsPositive():
		result.Reason = ReasonNoSystem
	case annualSavings.IsPositive():
		payback := systemPrice.Decimal().Div(annualSavings.Decimal()).Round(1)
		result.PaybackYears = &payback
		result.Recommended = true
	default:
		result.Reason = ReasonNoSavings
	}

	e.logger.Debug("evaluated roi",
		zap.String("monthly_bill", monthlyBill.String()),
		zap.String("units", units.String()),
		zap.String("capacity_kw", rec.CapacityKW.String()),
		zap.String("annual_savings", annualSavings.String()),
		zap.Bool("recommended", result.Recommended))

	return result, nil
}
