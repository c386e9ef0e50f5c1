// Package cmd - calculator commands
package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"solarwise/core/output"
	"solarwise/core/quality"
	"solarwise/core/roi"
	"solarwise/core/types"
	"solarwise/internal/errors"
)

var (
	scorePanel    string
	scoreInverter string
	scoreBattery  string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <monthly-bill>",
	Short: "Size a solar system for a monthly bill",
	Long: `Recover the monthly consumption behind a bill and size a rooftop
system that covers it, with an indicative price range.

Examples:
  solarwise recommend 15000
  solarwise recommend 15000 --category religious`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

var roiCmd = &cobra.Command{
	Use:   "roi <monthly-bill> <system-price>",
	Short: "Estimate savings and payback for a quoted system",
	Args:  cobra.ExactArgs(2),
	RunE:  runROI,
}

var billCmd = &cobra.Command{
	Use:   "bill <units>",
	Short: "Price a month of consumption",
	Args:  cobra.ExactArgs(1),
	RunE:  runBill,
}

var unitsCmd = &cobra.Command{
	Use:   "units <bill>",
	Short: "Estimate the consumption behind a bill",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnits,
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a hardware package from its component ratings",
	Long: `Combine panel, inverter and battery ratings (0 to 10) into one score.
A missing panel or inverter rating marks the score as insufficient data.

Examples:
  solarwise score --panel 8 --inverter 6 --battery 9`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(roiCmd)
	rootCmd.AddCommand(billCmd)
	rootCmd.AddCommand(unitsCmd)
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scorePanel, "panel", "", "panel rating")
	scoreCmd.Flags().StringVar(&scoreInverter, "inverter", "", "inverter rating")
	scoreCmd.Flags().StringVar(&scoreBattery, "battery", "", "battery rating")
}

// calculatorFor loads the schedules and resolves the one in effect
func calculatorFor(cmd *cobra.Command) (*roi.Calculator, func() error, error) {
	at, err := when()
	if err != nil {
		return nil, nil, err
	}
	a, err := loadApp(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	calc, err := a.Calculator("", at)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return calc, a.Close, nil
}

func parseNumber(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Inputf("%s must be a number, got %q", name, raw)
	}
	return v, nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	bill, err := parseNumber("monthly bill", args[0])
	if err != nil {
		return err
	}
	calc, closeApp, err := calculatorFor(cmd)
	if err != nil {
		return err
	}
	defer closeApp()

	rec, err := calc.CalculateRecommendation(bill)
	if err != nil {
		return err
	}
	return render(cmd, &output.Report{
		Recommendation: &rec,
		Metadata:       output.Metadata{Schedule: scheduleKey(calc)},
	})
}

func runROI(cmd *cobra.Command, args []string) error {
	bill, err := parseNumber("monthly bill", args[0])
	if err != nil {
		return err
	}
	price, err := parseNumber("system price", args[1])
	if err != nil {
		return err
	}
	calc, closeApp, err := calculatorFor(cmd)
	if err != nil {
		return err
	}
	defer closeApp()

	full, err := calc.CalculateFull(bill, &price)
	if err != nil {
		return err
	}
	return render(cmd, &output.Report{
		Recommendation: &full.Recommendation,
		ROI:            full.ROI,
		Metadata:       output.Metadata{Schedule: scheduleKey(calc)},
	})
}

func runBill(cmd *cobra.Command, args []string) error {
	units, err := parseNumber("units", args[0])
	if err != nil {
		return err
	}
	calc, closeApp, err := calculatorFor(cmd)
	if err != nil {
		return err
	}
	defer closeApp()

	bill, err := calc.CalculateBill(units)
	if err != nil {
		return err
	}
	return render(cmd, &output.Report{
		Bill:     &bill,
		Metadata: output.Metadata{Schedule: scheduleKey(calc)},
	})
}

func runUnits(cmd *cobra.Command, args []string) error {
	raw, err := parseNumber("bill", args[0])
	if err != nil {
		return err
	}
	bill, err := types.ParseAmount("bill", raw)
	if err != nil {
		return err
	}
	calc, closeApp, err := calculatorFor(cmd)
	if err != nil {
		return err
	}
	defer closeApp()

	units, err := calc.CalculateUnits(raw)
	if err != nil {
		return err
	}
	schedule := calc.Engine().Biller().Schedule()
	return render(cmd, &output.Report{
		Units: &output.UnitsEstimate{
			Bill:     bill,
			Currency: schedule.Currency,
			Units:    units,
			Schedule: schedule.Key(),
		},
		Metadata: output.Metadata{Schedule: schedule.Key()},
	})
}

func runScore(cmd *cobra.Command, args []string) error {
	components, err := quality.ParseComponents(scorePanel, scoreInverter, scoreBattery)
	if err != nil {
		return err
	}
	result, err := quality.Score(components)
	if err != nil {
		return err
	}
	return render(cmd, &output.Report{Quality: &result})
}

func scheduleKey(calc *roi.Calculator) string {
	return calc.Engine().Biller().Schedule().Key()
}
