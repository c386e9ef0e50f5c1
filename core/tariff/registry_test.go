package tariff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarwise/core/types"
	"solarwise/internal/errors"
)

func revised(version string, from time.Time, rate string) *Schedule {
	s := CEBDomestic2025()
	s.Version = version
	s.EffectiveFrom = from
	s.Regimes[1].Blocks[4].Rate = types.MustAmount(rate)
	return s
}

func TestRegistryActivePicksLatestEffective(t *testing.T) {
	r := NewRegistry(nil)
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jul := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	_, err := r.Register(CEBDomestic2025())
	require.NoError(t, err)
	_, err = r.Register(revised("2025.2.0", jul, "55"))
	require.NoError(t, err)

	b, err := r.Active(CategoryDomestic, jan.AddDate(0, 2, 0))
	require.NoError(t, err)
	assert.Equal(t, "2025.1.0", b.Schedule().Version)

	b, err = r.Active(CategoryDomestic, jul.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, "2025.2.0", b.Schedule().Version)
}

func TestRegistryPrefersHigherVersionOnSameDate(t *testing.T) {
	r := NewRegistry(nil)
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := r.Register(revised("2025.1.1", jan, "53"))
	require.NoError(t, err)
	_, err = r.Register(CEBDomestic2025())
	require.NoError(t, err)

	b, err := r.Active(CategoryDomestic, jan.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, "2025.1.1", b.Schedule().Version)

	b, err = r.Resolve(CategoryDomestic, jan.AddDate(0, 0, 10), "<2025.1.1")
	require.NoError(t, err)
	assert.Equal(t, "2025.1.0", b.Schedule().Version)
}

func TestRegistryRejectsDuplicatesAndUnknowns(t *testing.T) {
	r := NewRegistry(nil)

	first, err := r.Register(CEBDomestic2025())
	require.NoError(t, err)
	again, err := r.Register(CEBDomestic2025())
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Len(t, r.Schedules(), 1)

	changed := CEBDomestic2025()
	changed.Regimes[1].Blocks[4].Rate = types.MustAmount("60.00")
	_, err = r.Register(changed)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeSchedule))

	_, err = r.Active(CategoryIndustrial, time.Now())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))

	_, err = r.Active(CategoryDomestic, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)

	_, err = r.Resolve(CategoryDomestic, time.Now(), "not a constraint")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestRegistrySchedulesOrdered(t *testing.T) {
	r := NewRegistry(nil)
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := r.Register(revised("2025.3.0", jan, "60"))
	require.NoError(t, err)
	_, err = r.Register(CEBDomestic2025())
	require.NoError(t, err)

	schedules := r.Schedules()
	require.Len(t, schedules, 2)
	assert.Equal(t, "2025.1.0", schedules[0].Version)
	assert.Equal(t, "2025.3.0", schedules[1].Version)

	billers := r.Billers()
	require.Len(t, billers, 2)
	assert.Same(t, schedules[1], billers[1].Schedule())
}
