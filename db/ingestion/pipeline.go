// Package ingestion - Tariff schedule ingestion pipeline
// Strictly separated from billing: fetch → review → store → activate
package ingestion

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"solarwise/adapters/schedule"
	"solarwise/core/tariff"
	"solarwise/db"
	"solarwise/internal/logging"
)

// Source provides schedules to ingest
type Source interface {
	// Name describes the source for snapshot provenance
	Name() string

	// Fetch returns validated schedules
	Fetch(ctx context.Context) ([]*tariff.Schedule, error)
}

// FileSource reads HCL and YAML schedule files and directories
type FileSource struct {
	Paths []string
}

// Name returns the file list
func (s *FileSource) Name() string {
	return "file:" + strings.Join(s.Paths, ",")
}

// Fetch loads and validates every schedule in the paths
func (s *FileSource) Fetch(ctx context.Context) ([]*tariff.Schedule, error) {
	return schedule.LoadPaths(ctx, s.Paths)
}

// StaticSource serves schedules already in memory, such as the built-in tariff
type StaticSource struct {
	Label     string
	Schedules []*tariff.Schedule
}

// Name returns the label
func (s *StaticSource) Name() string {
	return s.Label
}

// Fetch validates and returns the schedules
func (s *StaticSource) Fetch(ctx context.Context) ([]*tariff.Schedule, error) {
	for _, sched := range s.Schedules {
		if err := sched.Validate(); err != nil {
			return nil, err
		}
	}
	return s.Schedules, nil
}

// IngestionState tracks one pipeline run
type IngestionState struct {
	ID          uuid.UUID             `json:"id"`
	Source      string                `json:"source"`
	Status      IngestionStatus       `json:"status"`
	Snapshots   []*db.Snapshot        `json:"snapshots,omitempty"`
	Reports     []*tariff.CheckReport `json:"reports,omitempty"`
	Error       string                `json:"error,omitempty"`
	StartedAt   time.Time             `json:"started_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

// Pipeline orchestrates the full ingestion flow
type Pipeline struct {
	source   Source
	governor *Governor
	store    db.TariffStore
	logger   *zap.Logger
}

// NewPipeline creates a new ingestion pipeline
func NewPipeline(source Source, governor *Governor, store db.TariffStore, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{source: source, governor: governor, store: store, logger: logger}
}

// Run fetches, reviews and stores every schedule from the source. With
// activate set, stored snapshots become visible to LoadActive. Nothing is
// stored unless every schedule passes review.
func (p *Pipeline) Run(ctx context.Context, activate bool) (*IngestionState, error) {
	state := &IngestionState{
		ID:        uuid.New(),
		Source:    p.source.Name(),
		Status:    IngestionStarted,
		StartedAt: time.Now().UTC(),
	}
	logger := p.logger.With(logging.IngestionID(state.ID), zap.String("source", state.Source))

	fail := func(status IngestionStatus, err error) (*IngestionState, error) {
		state.Status = status
		state.Error = err.Error()
		logger.Error("ingestion stopped", zap.String("status", string(status)), zap.Error(err))
		return state, err
	}

	// Fetch
	schedules, err := p.source.Fetch(ctx)
	if err != nil {
		return fail(IngestionFailed, err)
	}

	// Review
	state.Reports, err = p.governor.Review(ctx, schedules)
	if err != nil {
		return fail(IngestionRejected, err)
	}

	// Store and activate
	for _, s := range schedules {
		snap, err := p.store.SaveSchedule(ctx, s, state.Source)
		if err != nil {
			return fail(IngestionFailed, err)
		}
		if activate && !snap.IsActive {
			if err := p.store.Activate(ctx, snap.ID); err != nil {
				return fail(IngestionFailed, err)
			}
			snap.IsActive = true
		}
		state.Snapshots = append(state.Snapshots, snap)
	}

	now := time.Now().UTC()
	state.CompletedAt = &now
	state.Status = IngestionCompleted
	logger.Info("ingestion completed", zap.Int("schedules", len(state.Snapshots)))
	return state, nil
}
