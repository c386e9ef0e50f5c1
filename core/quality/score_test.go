package quality

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarwise/internal/errors"
)

func d(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		components Components
		want       string
		sufficient bool
	}{
		{"panel and inverter only", Components{Panel: d("8"), Inverter: d("6")}, "7", true},
		{"all three", Components{Panel: d("8"), Inverter: d("6"), Battery: d("9")}, "7.4", true},
		{"nothing", Components{}, "0", false},
		{"panel only", Components{Panel: d("8")}, "3.2", false},
		{"inverter and battery", Components{Inverter: d("5"), Battery: d("10")}, "4", false},
		{"perfect", Components{Panel: d("10"), Inverter: d("10"), Battery: d("10")}, "10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.components)
			require.NoError(t, err)
			assert.True(t, got.Score.Equal(decimal.RequireFromString(tt.want)), "score=%s want %s", got.Score, tt.want)
			assert.Equal(t, tt.sufficient, got.Sufficient)
		})
	}
}

func TestScoreRejectsOutOfRange(t *testing.T) {
	_, err := Score(Components{Panel: d("11"), Inverter: d("5")})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	_, err = Score(Components{Panel: d("5"), Inverter: d("5"), Battery: d("-0.5")})
	require.Error(t, err)
}

func TestScoreNamesFirstInvalidRating(t *testing.T) {
	// every run reports the same component
	for i := 0; i < 50; i++ {
		_, err := Score(Components{Panel: d("12"), Inverter: d("-1"), Battery: d("20")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panel score")
	}

	_, err := Score(Components{Panel: d("5"), Inverter: d("-1"), Battery: d("20")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inverter score")
}

func TestParseComponents(t *testing.T) {
	c, err := ParseComponents("8.5", "7", "")
	require.NoError(t, err)
	require.NotNil(t, c.Panel)
	require.NotNil(t, c.Inverter)
	assert.Nil(t, c.Battery)

	got, err := Score(c)
	require.NoError(t, err)
	assert.Equal(t, "7.75", got.Score.String())

	_, err = ParseComponents("great", "", "")
	require.Error(t, err)
}
