// Package output provides output formatting for calculator results.
// This package produces human and machine-readable outputs.
package output

import (
	"io"
	"sort"
	"sync"

	"solarwise/core/quality"
	"solarwise/core/roi"
	"solarwise/core/sizing"
	"solarwise/core/tariff"
	"solarwise/core/types"
	"solarwise/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report carries whichever results a command produced. Nil sections are omitted.
type Report struct {
	// Bill is a forward bill breakdown
	Bill *tariff.Bill `json:"bill,omitempty"`

	// Units is an inverse-billing estimate
	Units *UnitsEstimate `json:"units,omitempty"`

	// Recommendation is a system sizing recommendation
	Recommendation *sizing.Recommendation `json:"recommendation,omitempty"`

	// ROI is a savings and payback estimate
	ROI *roi.Result `json:"roi,omitempty"`

	// Quality is a hardware package score
	Quality *quality.Result `json:"quality,omitempty"`

	// Schedules are tariff schedules to describe
	Schedules []*tariff.Schedule `json:"schedules,omitempty"`

	// Checks are schedule consistency reports
	Checks []*tariff.CheckReport `json:"checks,omitempty"`

	// Metadata contains execution context
	Metadata Metadata `json:"metadata"`
}

// UnitsEstimate pairs a bill with the consumption behind it
type UnitsEstimate struct {
	Bill     types.Amount   `json:"bill"`
	Currency types.Currency `json:"currency"`
	Units    types.Units    `json:"units"`
	Schedule string         `json:"schedule"`
}

// Metadata contains execution context
type Metadata struct {
	// Timestamp is when the calculation was performed
	Timestamp string `json:"timestamp"`

	// Version is the tool version
	Version string `json:"version"`

	// Schedule is the tariff schedule key used
	Schedule string `json:"schedule,omitempty"`
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates a registry holding the built-in formatters
func NewRegistry(showBreakdown bool) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	_ = r.Register(NewCLIFormatter(showBreakdown))
	_ = r.Register(NewJSONFormatter(true))
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.formatters[formatter.Format()]; exists {
		return errors.Newf(errors.TypeInternal, "formatter %q already registered", formatter.Format())
	}
	r.formatters[formatter.Format()] = formatter
	return nil
}

// GetFormatter returns a formatter for a format type
func (r *Registry) GetFormatter(format Format) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	if !ok {
		return nil, errors.Inputf("unknown output format %q (supported: %v)", format, r.formatsLocked())
	}
	return f, nil
}

// Formats lists the registered format names
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.formatsLocked()
}

func (r *Registry) formatsLocked() []Format {
	formats := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
