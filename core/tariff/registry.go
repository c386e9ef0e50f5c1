package tariff

import (
	"sort"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"solarwise/core/determinism"
	"solarwise/internal/errors"
	"solarwise/internal/logging"
)

// Registry holds the billers for every loaded schedule version.
// It is filled once at startup and only read afterwards.
type Registry struct {
	mu      sync.RWMutex
	billers map[Category][]*entry
	logger  *zap.Logger
}

type entry struct {
	version *semver.Version
	biller  *Biller
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		billers: make(map[Category][]*entry),
		logger:  logger,
	}
}

// Register validates a schedule and adds it. Registering identical content
// again returns the existing biller; a different schedule under an existing
// category and version is an error, schedules are never replaced in place.
func (r *Registry) Register(s *Schedule) (*Biller, error) {
	biller, err := NewBiller(s, r.logger)
	if err != nil {
		return nil, err
	}
	v, err := semver.NewVersion(s.Version)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeSchedule, err, "invalid version %q", s.Version)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.billers[s.Category] {
		if e.version.Equal(v) {
			if e.biller.schedule.Fingerprint() == s.Fingerprint() {
				return e.biller, nil
			}
			return nil, errors.Schedulef("schedule %s is already registered with different content", s.Key())
		}
	}
	r.billers[s.Category] = append(r.billers[s.Category], &entry{version: v, biller: biller})

	r.logger.Info("registered tariff schedule",
		logging.Schedule(s.Key()),
		zap.Time("effective_from", s.EffectiveFrom),
		zap.String("fingerprint", s.Fingerprint()[:12]))
	return biller, nil
}

// Active returns the biller whose schedule is in effect for category at time at.
// When several windows cover at, the latest EffectiveFrom wins, then the highest version.
func (r *Registry) Active(category Category, at time.Time) (*Biller, error) {
	return r.Resolve(category, at, "")
}

// Resolve is Active restricted to versions matching a semver constraint such as "~2025.1".
// An empty constraint matches every version.
func (r *Registry) Resolve(category Category, at time.Time, constraint string) (*Biller, error) {
	var c *semver.Constraints
	if constraint != "" {
		parsed, err := semver.NewConstraint(constraint)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeInput, err, "invalid version constraint %q", constraint)
		}
		c = parsed
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *entry
	for _, e := range r.billers[category] {
		s := e.biller.schedule
		if !s.EffectiveAt(at) {
			continue
		}
		if c != nil && !c.Check(e.version) {
			continue
		}
		if best == nil {
			best = e
			continue
		}
		bs := best.biller.schedule
		if s.EffectiveFrom.After(bs.EffectiveFrom) ||
			(s.EffectiveFrom.Equal(bs.EffectiveFrom) && e.version.GreaterThan(best.version)) {
			best = e
		}
	}

	if best == nil {
		return nil, errors.NotFound("tariff schedule", string(category)).
			WithContext("at", at.Format(time.RFC3339)).
			WithContext("constraint", constraint)
	}
	return best.biller, nil
}

// Schedules lists every registered schedule ordered by category, then version
func (r *Registry) Schedules() []*Schedule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Schedule
	for _, category := range determinism.SortedKeys(r.billers) {
		entries := append([]*entry(nil), r.billers[category]...)
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].version.LessThan(entries[j].version)
		})
		for _, e := range entries {
			out = append(out, e.biller.schedule)
		}
	}
	return out
}

// Billers returns a biller for every registered schedule in Schedules order
func (r *Registry) Billers() []*Biller {
	schedules := r.Schedules()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Biller, 0, len(schedules))
	for _, s := range schedules {
		for _, e := range r.billers[s.Category] {
			if e.biller.schedule == s {
				out = append(out, e.biller)
			}
		}
	}
	return out
}
