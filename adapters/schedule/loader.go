// Package schedule loads tariff schedules from HCL and YAML files.
package schedule

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"solarwise/core/tariff"
	"solarwise/core/types"
	"solarwise/internal/errors"
)

// dateLayout is the format of effective_from and effective_to
const dateLayout = "2006-01-02"

// Loader reads tariff schedules from one file format
type Loader interface {
	// Name returns the loader name
	Name() string

	// CanLoad reports whether the loader handles the file
	CanLoad(path string) bool

	// Parse decodes schedules from src. Schedules are not validated.
	Parse(src []byte, filename string) ([]*tariff.Schedule, error)
}

var loaders = []Loader{NewHCLLoader(), NewYAMLLoader()}

// LoaderFor returns the loader handling path
func LoaderFor(path string) (Loader, error) {
	for _, l := range loaders {
		if l.CanLoad(path) {
			return l, nil
		}
	}
	return nil, errors.Newf(errors.TypeParsing, "no schedule loader for %s (want .hcl, .yaml or .yml)", path)
}

// LoadFile reads and validates every schedule in a file
func LoadFile(ctx context.Context, path string) ([]*tariff.Schedule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loader, err := LoaderFor(path)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeParsing, err, "read schedule file %s", path)
	}

	schedules, err := loader.Parse(src, path)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, errors.Newf(errors.TypeParsing, "%s defines no schedules", path)
	}
	for _, s := range schedules {
		if err := s.Validate(); err != nil {
			return nil, errors.Wrapf(errors.TypeSchedule, err, "%s: schedule %s", path, s.Key())
		}
	}
	return schedules, nil
}

// LoadPaths loads files and directories. Directories are scanned one level
// deep for files any loader can handle, in name order.
func LoadPaths(ctx context.Context, paths []string) ([]*tariff.Schedule, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeParsing, err, "schedule path %s", p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeParsing, err, "read schedule directory %s", p)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, err := LoaderFor(e.Name()); err == nil {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}

	var all []*tariff.Schedule
	for _, f := range files {
		schedules, err := LoadFile(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, schedules...)
	}
	return all, nil
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.TypeParsing, err, "%s must be YYYY-MM-DD, got %q", field, value)
	}
	return t.UTC(), nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(field, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// policyOrDefault applies the highest-block policy when none is given
func policyOrDefault(p string) tariff.FixedChargePolicy {
	if p == "" {
		return tariff.FixedChargeHighestBlock
	}
	return tariff.FixedChargePolicy(p)
}

func unitsFrom(d decimal.Decimal) types.Units {
	return types.NewUnits(d)
}
