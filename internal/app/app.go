// Package app wires configuration into the tariff registry, sizer and store
// shared by the CLI and the HTTP server.
package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"solarwise/adapters/schedule"
	"solarwise/api"
	"solarwise/core/roi"
	"solarwise/core/sizing"
	"solarwise/core/tariff"
	"solarwise/db"
	"solarwise/internal/config"
	"solarwise/internal/errors"
)

// Version is the release version reported by both binaries
const Version = "1.0.0"

// App holds the long-lived components built from a configuration
type App struct {
	Config   *config.Config
	Registry *tariff.Registry
	Sizer    *sizing.Sizer

	// Store is nil unless tariff.database_path is set
	Store *db.SQLiteStore

	Logger *zap.Logger
}

// New builds the registry from the built-in schedule, schedule files and
// the active schedules of the tariff store, in that order.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		Config:   cfg,
		Registry: tariff.NewRegistry(logger.Named("tariff")),
		Logger:   logger,
	}

	sizer, err := sizing.New(cfg.Sizing, logger.Named("sizing"))
	if err != nil {
		return nil, err
	}
	a.Sizer = sizer

	if !cfg.Tariff.SkipBuiltin {
		if _, err := a.Registry.Register(tariff.CEBDomestic2025()); err != nil {
			return nil, err
		}
	}

	if len(cfg.Tariff.ScheduleFiles) > 0 {
		schedules, err := schedule.LoadPaths(ctx, cfg.Tariff.ScheduleFiles)
		if err != nil {
			return nil, err
		}
		if err := a.registerAll(schedules); err != nil {
			return nil, err
		}
	}

	if cfg.Tariff.DatabasePath != "" {
		store, err := db.OpenSQLite(cfg.Tariff.DatabasePath, logger.Named("db"))
		if err != nil {
			return nil, err
		}
		a.Store = store

		schedules, err := store.LoadActive(ctx)
		if err != nil {
			store.Close()
			return nil, err
		}
		if err := a.registerAll(schedules); err != nil {
			store.Close()
			return nil, err
		}
	}

	if len(a.Registry.Schedules()) == 0 {
		a.Close()
		return nil, errors.New(errors.TypeConfig, "no tariff schedules configured")
	}
	return a, nil
}

func (a *App) registerAll(schedules []*tariff.Schedule) error {
	for _, s := range schedules {
		if _, err := a.Registry.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Calculator returns a calculator over the schedule in effect for category at a date.
// An empty category uses the configured default.
func (a *App) Calculator(category string, at time.Time) (*roi.Calculator, error) {
	if category == "" {
		category = a.Config.Tariff.Category
	}
	cat := tariff.Category(category)
	if !cat.IsValid() {
		return nil, errors.Inputf("unknown tariff category %q", category)
	}
	biller, err := a.Registry.Resolve(cat, at, a.Config.Tariff.VersionConstraint)
	if err != nil {
		return nil, err
	}
	return roi.NewCalculator(roi.NewEngine(biller, a.Sizer, a.Logger.Named("roi"))), nil
}

// Server builds the HTTP API over the app's registry, sizer and store
func (a *App) Server() (*api.Server, error) {
	opts := api.Options{
		Version:           Version,
		DefaultCategory:   tariff.Category(a.Config.Tariff.Category),
		VersionConstraint: a.Config.Tariff.VersionConstraint,
		Registry:          a.Registry,
		Sizer:             a.Sizer,
		Logger:            a.Logger,
	}
	// a nil *SQLiteStore must not become a non-nil interface
	if a.Store != nil {
		opts.Store = a.Store
	}
	return api.NewServer(opts)
}

// Close releases the tariff store
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
