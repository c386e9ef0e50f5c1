package roi

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarwise/core/sizing"
	"solarwise/core/tariff"
	"solarwise/core/types"
	"solarwise/internal/errors"
)

func newCalculator(t *testing.T) *Calculator {
	t.Helper()
	biller, err := tariff.NewBiller(tariff.CEBDomestic2025(), nil)
	require.NoError(t, err)
	sizer, err := sizing.New(sizing.DefaultConfig(), nil)
	require.NoError(t, err)
	return NewCalculator(NewEngine(biller, sizer, nil))
}

func price(v float64) *float64 { return &v }

func TestRecommendationForMonthlyBill(t *testing.T) {
	c := newCalculator(t)

	rec, err := c.CalculateRecommendation(15000)
	require.NoError(t, err)
	assert.True(t, rec.CapacityKW.IsPositive())
	assert.True(t, rec.EstimatedUnits.GreaterThan(types.UnitsFromInt(50)))
	assert.Equal(t, int64(357), rec.EstimatedUnits.IntPart())
	assert.True(t, rec.CapacityKW.Equal(decimal.RequireFromString("2.8")))
}

func TestFullWithSystemPrice(t *testing.T) {
	c := newCalculator(t)

	full, err := c.CalculateFull(25000, price(700000))
	require.NoError(t, err)
	require.NotNil(t, full.ROI)

	roi := full.ROI
	require.NotNil(t, roi.PaybackYears)
	assert.True(t, roi.PaybackYears.IsPositive())
	assert.True(t, roi.MonthlySavings.IsPositive())
	assert.True(t, roi.Recommended)

	// 549 units, 4.3 kW generating 559 units: the whole bill is offset
	assert.Equal(t, int64(549), roi.EstimatedUnits.IntPart())
	assert.True(t, roi.PostSolarUnits.IsZero())
	assert.True(t, roi.PostSolarBill.IsZero())
	assert.True(t, roi.AnnualSavings.Equal(types.AmountFromInt(300000)))
	assert.Equal(t, "2.3", roi.PaybackYears.String())
	assert.True(t, full.Recommendation.CapacityKW.Equal(roi.CapacityKW))

	// pre-solar breakdown is the forward bill of the estimated units
	assert.True(t, roi.Breakdown.Units.Equal(roi.EstimatedUnits))
	assert.Len(t, roi.Breakdown.Lines, 5)
}

func TestFullWithoutSystemPrice(t *testing.T) {
	c := newCalculator(t)

	full, err := c.CalculateFull(25000, nil)
	require.NoError(t, err)
	assert.Nil(t, full.ROI)
	assert.True(t, full.Recommendation.CapacityKW.IsPositive())
}

func TestHigherBillNeedsLargerSystem(t *testing.T) {
	c := newCalculator(t)

	low, err := c.CalculateRecommendation(5000)
	require.NoError(t, err)
	high, err := c.CalculateRecommendation(50000)
	require.NoError(t, err)
	assert.True(t, high.CapacityKW.GreaterThan(low.CapacityKW), "low=%s high=%s", low.CapacityKW, high.CapacityKW)
}

func TestZeroBillHasUndefinedPayback(t *testing.T) {
	c := newCalculator(t)

	full, err := c.CalculateFull(0, price(500000))
	require.NoError(t, err)
	require.NotNil(t, full.ROI)
	assert.Nil(t, full.ROI.PaybackYears)
	assert.False(t, full.ROI.Recommended)
	assert.Equal(t, ReasonNoSavings, full.ROI.Reason)

	data, err := json.Marshal(full.ROI)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payback_years":null`)
	assert.NotContains(t, string(data), "Inf")
	assert.NotContains(t, string(data), "NaN")
}

func TestBillBelowFirstFixedChargeIsNotRecommended(t *testing.T) {
	c := newCalculator(t)

	// 50 is below the 75 fixed charge of the first block
	full, err := c.CalculateFull(50, price(500000))
	require.NoError(t, err)
	assert.True(t, full.Recommendation.CapacityKW.IsZero())

	require.NotNil(t, full.ROI)
	assert.True(t, full.ROI.CapacityKW.IsZero())
	assert.Nil(t, full.ROI.PaybackYears)
	assert.False(t, full.ROI.Recommended)
	assert.Equal(t, ReasonNoSystem, full.ROI.Reason)

	data, err := json.Marshal(full.ROI)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payback_years":null`)
	assert.Contains(t, string(data), `"recommended":false`)
}

func TestCalculatorRejectsInvalidInput(t *testing.T) {
	c := newCalculator(t)

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := c.CalculateRecommendation(bad)
		require.Error(t, err, "bill=%v", bad)
		assert.True(t, errors.IsType(err, errors.TypeInput))

		_, err = c.CalculateFull(1000, price(bad))
		require.Error(t, err, "price=%v", bad)
		assert.True(t, errors.IsType(err, errors.TypeInput))

		_, err = c.CalculateBill(bad)
		require.Error(t, err, "units=%v", bad)

		_, err = c.CalculateUnits(bad)
		require.Error(t, err, "bill=%v", bad)
	}
}

func TestCalculateBillAndUnits(t *testing.T) {
	c := newCalculator(t)

	bill, err := c.CalculateBill(180)
	require.NoError(t, err)
	assert.True(t, bill.Total.Equal(types.AmountFromInt(5310)))

	units, err := c.CalculateUnits(5310)
	require.NoError(t, err)
	assert.Equal(t, "180", units.String())
}

func TestEvaluateRejectsNegativePrice(t *testing.T) {
	c := newCalculator(t)

	_, err := c.Engine().Evaluate(types.AmountFromInt(1000), types.AmountFromInt(-1))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}
