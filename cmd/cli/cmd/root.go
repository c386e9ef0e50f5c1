// Package cmd provides the CLI commands for solarwise.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"solarwise/core/output"
	"solarwise/internal/app"
	"solarwise/internal/config"
	"solarwise/internal/errors"
	"solarwise/internal/logging"
)

var (
	cfgFile      string
	verbose      bool
	outputFormat string
	category     string
	billingDate  string
	databasePath string
	scheduleDirs []string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "solarwise",
	Short: "Electricity bills and rooftop solar returns",
	Long: `solarwise prices electricity consumption against progressive block
tariffs, recovers consumption from a bill, and sizes rooftop solar systems
with their expected payback.

Examples:
  solarwise bill 180
  solarwise units 5310
  solarwise recommend 15000
  solarwise roi 25000 700000 --format json
  solarwise tariff import ./tariffs --activate`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.solarwise.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "", "output format (cli, json)")
	rootCmd.PersistentFlags().StringVarP(&category, "category", "c", "", "tariff category (domestic, religious, industrial, commercial)")
	rootCmd.PersistentFlags().StringVar(&billingDate, "date", "", "billing date used to pick the schedule, YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "", "tariff snapshot database")
	rootCmd.PersistentFlags().StringSliceVar(&scheduleDirs, "schedules", nil, "schedule files or directories to load")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if category != "" {
		cfg.Tariff.Category = category
	}
	if outputFormat != "" {
		cfg.Output.DefaultFormat = outputFormat
	}
	if databasePath != "" {
		cfg.Tariff.DatabasePath = databasePath
	}
	if len(scheduleDirs) > 0 {
		cfg.Tariff.ScheduleFiles = scheduleDirs
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	config.Set(cfg)

	// Initialize logging
	if err := logging.Initialize(cfg.Logging); err != nil {
		return errors.Wrap(errors.TypeConfig, "failed to initialize logging", err)
	}
	return nil
}

// loadApp builds the registry and store from the current configuration
func loadApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, config.Get(), logging.Named("cli"))
}

// when returns the billing date from --date, or now
func when() (time.Time, error) {
	if billingDate == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", billingDate)
	if err != nil {
		return time.Time{}, errors.Inputf("invalid --date %q, want YYYY-MM-DD", billingDate)
	}
	return t.UTC(), nil
}

// render writes a report in the configured format
func render(cmd *cobra.Command, report *output.Report) error {
	cfg := config.Get()
	report.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
	report.Metadata.Version = app.Version

	formatter, err := output.NewRegistry(cfg.Output.ShowBreakdown).GetFormatter(output.Format(cfg.Output.DefaultFormat))
	if err != nil {
		return err
	}
	return formatter.Render(cmd.OutOrStdout(), report)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "solarwise version %s\n", app.Version)
	},
}

var configForce bool

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return errors.Inputf("%s already exists, use --force to overwrite", path)
		}
		if err := config.Get().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(config.Get()); err != nil {
			return err
		}
		return enc.Close()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
}
