// Package ingestion - Ingestion governance and validation
package ingestion

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"solarwise/core/tariff"
	"solarwise/internal/errors"
	"solarwise/internal/logging"
)

// DefaultCheckUnits is how far each schedule is exercised before import
const DefaultCheckUnits = 2000

// IngestionStatus represents the state of an ingestion
type IngestionStatus string

const (
	IngestionStarted   IngestionStatus = "started"
	IngestionCompleted IngestionStatus = "completed"
	IngestionRejected  IngestionStatus = "rejected"
	IngestionFailed    IngestionStatus = "failed"
)

// Governor exercises schedules over a unit range and rejects any whose
// bills do not add up, decrease, or fail to invert.
type Governor struct {
	maxUnits int64
	logger   *zap.Logger
}

// NewGovernor creates a governor checking 0..maxUnits
func NewGovernor(maxUnits int64, logger *zap.Logger) *Governor {
	if maxUnits <= 0 {
		maxUnits = DefaultCheckUnits
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Governor{maxUnits: maxUnits, logger: logger}
}

// Review checks every schedule concurrently. It returns one report per
// schedule, in input order, and a TypeSchedule error if any report failed.
func (g *Governor) Review(ctx context.Context, schedules []*tariff.Schedule) ([]*tariff.CheckReport, error) {
	reports := make([]*tariff.CheckReport, len(schedules))

	group, ctx := errgroup.WithContext(ctx)
	for i, s := range schedules {
		group.Go(func() error {
			b, err := tariff.NewBiller(s, g.logger)
			if err != nil {
				return err
			}
			report, err := tariff.Check(ctx, b, g.maxUnits)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var failed []string
	for _, r := range reports {
		if r.OK() {
			continue
		}
		g.logger.Warn("schedule failed consistency check",
			logging.Schedule(r.Schedule),
			zap.Strings("violations", r.Violations))
		failed = append(failed, r.Schedule)
	}
	if len(failed) > 0 {
		return reports, errors.Schedulef("consistency check failed for %s", strings.Join(failed, ", "))
	}
	return reports, nil
}
