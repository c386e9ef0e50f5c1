package sizing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarwise/core/types"
	"solarwise/internal/errors"
)

func newSizer(t *testing.T) *Sizer {
	t.Helper()
	s, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	return s
}

func TestRecommendRoundsUpToTenthKW(t *testing.T) {
	s := newSizer(t)

	tests := []struct {
		units    int64
		capacity string
		minPrice int64
		maxPrice int64
	}{
		{0, "0", 0, 0},
		{1, "0.1", 12000, 18000},
		{13, "0.1", 12000, 18000},
		{14, "0.2", 24000, 36000},
		{130, "1", 120000, 180000},
		{357, "2.8", 336000, 504000},
		{549, "4.3", 516000, 774000},
	}

	for _, tt := range tests {
		rec, err := s.Recommend(types.UnitsFromInt(tt.units))
		require.NoError(t, err)
		assert.True(t, rec.CapacityKW.Equal(decimal.RequireFromString(tt.capacity)), "units=%d capacity=%s", tt.units, rec.CapacityKW)
		assert.True(t, rec.MinPrice.Equal(types.AmountFromInt(tt.minPrice)), "units=%d min=%s", tt.units, rec.MinPrice)
		assert.True(t, rec.MaxPrice.Equal(types.AmountFromInt(tt.maxPrice)), "units=%d max=%s", tt.units, rec.MaxPrice)
		assert.True(t, rec.EstimatedUnits.Equal(types.UnitsFromInt(tt.units)))
	}
}

func TestCapacityMonotoneAndNeverUndersized(t *testing.T) {
	s := newSizer(t)
	yield := DefaultConfig().YieldPerKW

	prev := decimal.Zero
	for u := int64(0); u <= 3000; u++ {
		units := types.UnitsFromInt(u)
		capacity := s.Capacity(units)

		assert.False(t, capacity.LessThan(prev), "units=%d", u)
		assert.False(t, capacity.Mul(yield).LessThan(units.Decimal()), "units=%d capacity=%s undersized", u, capacity)
		assert.True(t, s.Generation(capacity).Decimal().GreaterThanOrEqual(units.Decimal()))
		prev = capacity
	}
}

func TestRecommendRejectsNegativeUnits(t *testing.T) {
	s := newSizer(t)

	_, err := s.Recommend(types.UnitsFromInt(-3))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.YieldPerKW = decimal.Zero
	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))

	cfg = DefaultConfig()
	cfg.MaxPricePerKW = decimal.NewFromInt(1000)
	_, err = New(cfg, nil)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.YieldPerKW = decimal.NewFromInt(110)
	s, err := New(cfg, nil)
	require.NoError(t, err)
	assert.True(t, s.Capacity(types.UnitsFromInt(357)).Equal(decimal.RequireFromString("3.3")))
}
