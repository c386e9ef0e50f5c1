package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"solarwise/core/tariff"
	"solarwise/core/types"
)

// CLIFormatter renders reports as aligned plain-text tables
type CLIFormatter struct {
	showBreakdown bool
}

// NewCLIFormatter creates a CLI formatter
func NewCLIFormatter(showBreakdown bool) *CLIFormatter {
	return &CLIFormatter{showBreakdown: showBreakdown}
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render writes every non-empty section of the report
func (f *CLIFormatter) Render(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	if report.Units != nil {
		ew.printf("Estimated consumption for a %s bill: %s\n\n",
			FormatAmount(report.Units.Currency, report.Units.Bill), FormatUnits(report.Units.Units))
	}
	if report.Bill != nil {
		f.renderBill(ew, report.Bill)
	}
	if rec := report.Recommendation; rec != nil {
		ew.printf("Recommended System\n")
		ew.printf("  Monthly consumption:  %s\n", FormatUnits(rec.EstimatedUnits))
		ew.printf("  Capacity:             %s kW\n", rec.CapacityKW.String())
		ew.printf("  Indicative price:     %s to %s\n\n",
			FormatAmount(types.CurrencyLKR, rec.MinPrice), FormatAmount(types.CurrencyLKR, rec.MaxPrice))
	}
	if r := report.ROI; r != nil {
		cur := r.Breakdown.Currency
		ew.printf("Return on Investment\n")
		ew.printf("  Monthly bill:         %s\n", FormatAmount(cur, r.MonthlyBill))
		ew.printf("  Monthly generation:   %s\n", FormatUnits(r.MonthlyGeneration))
		ew.printf("  Bill after solar:     %s\n", FormatAmount(cur, r.PostSolarBill))
		ew.printf("  Monthly savings:      %s\n", FormatAmount(cur, r.MonthlySavings))
		ew.printf("  Annual savings:       %s\n", FormatAmount(cur, r.AnnualSavings))
		ew.printf("  System price:         %s\n", FormatAmount(cur, r.SystemPrice))
		if r.PaybackYears != nil {
			ew.printf("  Payback:              %s years\n", r.PaybackYears.String())
		} else {
			ew.printf("  Payback:              n/a (%s)\n", r.Reason)
		}
		verdict := "no"
		if r.Recommended {
			verdict = "yes"
		}
		ew.printf("  Recommended:          %s\n\n", verdict)
		if f.showBreakdown && report.Bill == nil {
			f.renderBill(ew, &r.Breakdown)
		}
	}
	if q := report.Quality; q != nil {
		ew.printf("Package quality score: %s / 10\n", q.Score.StringFixed(2))
		if !q.Sufficient {
			ew.printf("  (insufficient data: panel and inverter ratings are both required)\n")
		}
		ew.printf("\n")
	}
	for _, s := range report.Schedules {
		ew.printf("%s", s.Describe())
		ew.printf("  fingerprint: %s\n\n", s.Fingerprint())
	}
	for _, c := range report.Checks {
		renderCheck(ew, c)
	}
	return ew.err
}

func (f *CLIFormatter) renderBill(ew *errWriter, bill *tariff.Bill) {
	ew.printf("Bill for %s (%s, %s regime)\n", FormatUnits(bill.Units), bill.Schedule, bill.Regime)
	if f.showBreakdown && len(bill.Lines) > 0 {
		tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "  Block\tUnits\tRate\tEnergy\tFixed\t\n")
		for _, line := range bill.Lines {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t\n",
				line.Block,
				strings.TrimSuffix(FormatUnits(line.Units), " kWh"),
				FormatDecimal(line.Rate.Decimal(), 2),
				FormatDecimal(line.Amount.Decimal(), 2),
				FormatDecimal(line.FixedCharge.Decimal(), 2))
		}
		if err := tw.Flush(); err != nil && ew.err == nil {
			ew.err = err
		}
	}
	ew.printf("  Fixed charge: %s\n", FormatAmount(bill.Currency, bill.FixedCharge))
	ew.printf("  Total:        %s\n\n", FormatAmount(bill.Currency, bill.Total))
}

func renderCheck(ew *errWriter, c *tariff.CheckReport) {
	status := "OK"
	if !c.OK() {
		status = "FAILED"
	}
	ew.printf("%s: %s (%d unit counts checked, 0 to %d)\n", c.Schedule, status, c.Checked, c.MaxUnits)
	for _, v := range c.Violations {
		ew.printf("  - %s\n", strings.TrimSpace(v))
	}
}

// errWriter keeps the first write error so rendering code stays linear
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	fmt.Fprintf(ew, format, args...)
}
