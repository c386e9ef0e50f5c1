// Package cmd - tariff schedule management
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"solarwise/core/output"
	"solarwise/core/tariff"
	"solarwise/db"
	"solarwise/db/ingestion"
	"solarwise/internal/config"
	"solarwise/internal/errors"
	"solarwise/internal/logging"
)

var tariffCmd = &cobra.Command{
	Use:   "tariff",
	Short: "Tariff schedule management",
	Long: `Inspect, check and import tariff schedules.

Schedules come from the built-in CEB domestic tariff, schedule files
(--schedules) and the active snapshots of the tariff database (--db).`,
}

var tariffShowCmd = &cobra.Command{
	Use:   "show [category]",
	Short: "Describe the loaded schedules",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTariffShow,
}

var tariffCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every loaded schedule bills consistently",
	Long: `Bill every whole unit count up to --max-units against each loaded
schedule and verify that bills add up, never decrease, and invert back
to the same consumption.`,
	Args: cobra.NoArgs,
	RunE: runTariffCheck,
}

var tariffImportCmd = &cobra.Command{
	Use:   "import <path>...",
	Short: "Import schedule files into the tariff database",
	Long: `Import HCL or YAML schedule files into the tariff database.

Runs three phases:
  1. FETCH   - Parse and validate every file (NO DB writes)
  2. REVIEW  - Consistency check every schedule (NO DB writes)
  3. COMMIT  - Store each schedule as an immutable snapshot

Importing identical content again is a no-op. Changing a stored version
is rejected; publish a new version instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTariffImport,
}

var tariffSnapshotsCmd = &cobra.Command{
	Use:   "snapshots [category]",
	Short: "List stored snapshots",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTariffSnapshots,
}

var tariffActivateCmd = &cobra.Command{
	Use:   "activate <snapshot-id>",
	Short: "Make a stored snapshot active",
	Args:  cobra.ExactArgs(1),
	RunE:  runTariffActivate,
}

var tariffDeactivateCmd = &cobra.Command{
	Use:   "deactivate <category> <version>",
	Short: "Stop loading a stored schedule version",
	Args:  cobra.ExactArgs(2),
	RunE:  runTariffDeactivate,
}

var (
	tariffMaxUnits int64
	tariffActivate bool
)

func init() {
	rootCmd.AddCommand(tariffCmd)
	tariffCmd.AddCommand(tariffShowCmd)
	tariffCmd.AddCommand(tariffCheckCmd)
	tariffCmd.AddCommand(tariffImportCmd)
	tariffCmd.AddCommand(tariffSnapshotsCmd)
	tariffCmd.AddCommand(tariffActivateCmd)
	tariffCmd.AddCommand(tariffDeactivateCmd)

	tariffCheckCmd.Flags().Int64Var(&tariffMaxUnits, "max-units", ingestion.DefaultCheckUnits, "highest unit count to check")
	tariffImportCmd.Flags().Int64Var(&tariffMaxUnits, "max-units", ingestion.DefaultCheckUnits, "highest unit count to check")
	tariffImportCmd.Flags().BoolVar(&tariffActivate, "activate", false, "activate imported snapshots")
}

func parseCategory(raw string) (tariff.Category, error) {
	cat := tariff.Category(raw)
	if !cat.IsValid() {
		return "", errors.Inputf("unknown tariff category %q", raw)
	}
	return cat, nil
}

func runTariffShow(cmd *cobra.Command, args []string) error {
	var filter tariff.Category
	if len(args) == 1 {
		cat, err := parseCategory(args[0])
		if err != nil {
			return err
		}
		filter = cat
	}

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	report := &output.Report{}
	for _, s := range a.Registry.Schedules() {
		if filter == "" || s.Category == filter {
			report.Schedules = append(report.Schedules, s)
		}
	}
	if len(report.Schedules) == 0 {
		return errors.Newf(errors.TypeNotFound, "no schedules loaded for category %q", filter)
	}
	return render(cmd, report)
}

func runTariffCheck(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	governor := ingestion.NewGovernor(tariffMaxUnits, logging.Named("governor"))
	reports, reviewErr := governor.Review(cmd.Context(), a.Registry.Schedules())
	if reports != nil {
		if err := render(cmd, &output.Report{Checks: reports}); err != nil {
			return err
		}
	}
	return reviewErr
}

// openStore opens the configured tariff database
func openStore() (*db.SQLiteStore, error) {
	path := config.Get().Tariff.DatabasePath
	if path == "" {
		return nil, errors.New(errors.TypeConfig, "no tariff database configured, set --db or tariff.database_path")
	}
	return db.OpenSQLite(path, logging.Named("db"))
}

func runTariffImport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline := ingestion.NewPipeline(
		&ingestion.FileSource{Paths: args},
		ingestion.NewGovernor(tariffMaxUnits, logging.Named("governor")),
		store,
		logging.Named("ingestion"),
	)
	state, err := pipeline.Run(cmd.Context(), tariffActivate)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ingestion %s: %s\n", state.ID, state.Status)
	for _, snap := range state.Snapshots {
		status := "inactive"
		if snap.IsActive {
			status = "active"
		}
		fmt.Fprintf(out, "  %s  %s  %s\n", snap.ID, snap.Key(), status)
	}
	return nil
}

func runTariffSnapshots(cmd *cobra.Command, args []string) error {
	var filter tariff.Category
	if len(args) == 1 {
		cat, err := parseCategory(args[0])
		if err != nil {
			return err
		}
		filter = cat
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	snaps, err := store.ListSnapshots(cmd.Context(), filter)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No snapshots stored.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCHEDULE\tACTIVE\tIMPORTED\tSOURCE")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", s.ID, s.Key(), s.IsActive, s.ImportedAt.Format("2006-01-02 15:04"), s.Source)
	}
	return tw.Flush()
}

func runTariffActivate(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return errors.Inputf("invalid snapshot id %q", args[0])
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Activate(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Activated %s\n", id)
	return nil
}

func runTariffDeactivate(cmd *cobra.Command, args []string) error {
	cat, err := parseCategory(args[0])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Deactivate(cmd.Context(), cat, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %s@%s\n", cat, args[1])
	return nil
}
