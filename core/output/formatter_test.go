package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarwise/core/quality"
	"solarwise/core/roi"
	"solarwise/core/sizing"
	"solarwise/core/tariff"
	"solarwise/core/types"
	"solarwise/internal/errors"
)

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		in     string
		places int32
		want   string
	}{
		{"0", 0, "0"},
		{"1234.5", 2, "1,234.50"},
		{"1000000", 0, "1,000,000"},
		{"-1234.567", 2, "-1,234.57"},
		{"999.999", 2, "1,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDecimal(decimal.RequireFromString(tt.in), tt.places), tt.in)
	}

	assert.Equal(t, "LKR 5,310.00", FormatAmount(types.CurrencyLKR, types.AmountFromInt(5310)))
	assert.Equal(t, "60.5 kWh", FormatUnits(types.NewUnits(decimal.RequireFromString("60.5"))))
	assert.Equal(t, "357 kWh", FormatUnits(types.UnitsFromInt(357)))
}

func newBiller(t *testing.T) *tariff.Biller {
	t.Helper()
	b, err := tariff.NewBiller(tariff.CEBDomestic2025(), nil)
	require.NoError(t, err)
	return b
}

func TestCLIFormatterBill(t *testing.T) {
	bill, err := newBiller(t).Bill(types.UnitsFromInt(180))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewCLIFormatter(true).Render(&buf, &Report{Bill: &bill}))

	out := buf.String()
	assert.Contains(t, out, "Bill for 180 kWh")
	assert.Contains(t, out, "standard regime")
	assert.Contains(t, out, "Block")
	assert.Contains(t, out, "Fixed charge: LKR 1,500.00")
	assert.Contains(t, out, "Total:        LKR 5,310.00")
}

func TestCLIFormatterROIWithoutPayback(t *testing.T) {
	sizer, err := sizing.New(sizing.DefaultConfig(), nil)
	require.NoError(t, err)
	engine := roi.NewEngine(newBiller(t), sizer, nil)

	result, err := engine.Evaluate(types.ZeroAmount, types.AmountFromInt(500000))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewCLIFormatter(false).Render(&buf, &Report{ROI: result}))
	assert.Contains(t, buf.String(), "Payback:              n/a")
	assert.Contains(t, buf.String(), "Recommended:          no")
}

func TestCLIFormatterQualityAndChecks(t *testing.T) {
	biller := newBiller(t)
	check, err := tariff.Check(context.Background(), biller, 200)
	require.NoError(t, err)

	q, err := quality.Score(quality.Components{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewCLIFormatter(true).Render(&buf, &Report{
		Quality:   &q,
		Schedules: []*tariff.Schedule{biller.Schedule()},
		Checks:    []*tariff.CheckReport{check},
	}))

	out := buf.String()
	assert.Contains(t, out, "insufficient data")
	assert.Contains(t, out, "domestic tariff 2025.1.0")
	assert.Contains(t, out, "fingerprint: "+biller.Schedule().Fingerprint())
	assert.Contains(t, out, "domestic@2025.1.0: OK (201 unit counts checked, 0 to 200)")
}

func TestJSONFormatter(t *testing.T) {
	bill, err := newBiller(t).Bill(types.UnitsFromInt(180))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(false).Render(&buf, &Report{
		Bill:     &bill,
		Metadata: Metadata{Version: "test", Schedule: bill.Schedule},
	}))

	var decoded struct {
		Bill struct {
			Total     string            `json:"total"`
			Breakdown []json.RawMessage `json:"breakdown"`
		} `json:"bill"`
		ROI      json.RawMessage `json:"roi"`
		Metadata Metadata        `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "5310", decoded.Bill.Total)
	assert.Len(t, decoded.Bill.Breakdown, 4)
	assert.Nil(t, decoded.ROI)
	assert.Equal(t, "domestic@2025.1.0", decoded.Metadata.Schedule)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(true)
	assert.Equal(t, []Format{FormatCLI, FormatJSON}, r.Formats())

	f, err := r.GetFormatter(FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f.Format())

	_, err = r.GetFormatter("html")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))

	assert.Error(t, r.Register(NewCLIFormatter(false)))
}
