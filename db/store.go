// Package db persists tariff schedules.
// Stored schedules are immutable snapshots; a new tariff revision is a new
// version, never an update in place.
package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"solarwise/core/tariff"
)

// Snapshot describes one stored schedule
type Snapshot struct {
	ID          uuid.UUID       `json:"id"`
	Category    tariff.Category `json:"category"`
	Version     string          `json:"version"`
	Fingerprint string          `json:"fingerprint"`
	Source      string          `json:"source"`
	ImportedAt  time.Time       `json:"imported_at"`
	IsActive    bool            `json:"is_active"`
}

// Key identifies the snapshot's schedule
func (s *Snapshot) Key() string {
	return string(s.Category) + "@" + s.Version
}

// TariffStore persists schedules
type TariffStore interface {
	// SaveSchedule validates and stores a schedule as an inactive snapshot.
	// Saving identical content again returns the existing snapshot.
	SaveSchedule(ctx context.Context, s *tariff.Schedule, source string) (*Snapshot, error)

	// Activate makes a snapshot visible to LoadActive
	Activate(ctx context.Context, id uuid.UUID) error

	// Deactivate hides a category's version from LoadActive
	Deactivate(ctx context.Context, category tariff.Category, version string) error

	// ListSnapshots lists snapshots, optionally for one category
	ListSnapshots(ctx context.Context, category tariff.Category) ([]*Snapshot, error)

	// LoadSchedule reads one stored schedule
	LoadSchedule(ctx context.Context, id uuid.UUID) (*tariff.Schedule, error)

	// LoadActive reads every active schedule
	LoadActive(ctx context.Context) ([]*tariff.Schedule, error)

	// Close releases the store
	Close() error
}
