package schedule

import (
	"bytes"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"solarwise/core/tariff"
	"solarwise/core/types"
	"solarwise/internal/errors"
)

type yamlFile struct {
	Schedules []yamlSchedule `yaml:"schedules"`
}

type yamlSchedule struct {
	Category      string       `yaml:"category"`
	Version       string       `yaml:"version"`
	EffectiveFrom string       `yaml:"effective_from"`
	EffectiveTo   string       `yaml:"effective_to"`
	Currency      string       `yaml:"currency"`
	FixedCharges  string       `yaml:"fixed_charges"`
	Regimes       []yamlRegime `yaml:"regimes"`
}

type yamlRegime struct {
	Name   string      `yaml:"name"`
	Blocks []yamlBlock `yaml:"blocks"`
}

type yamlBlock struct {
	Number      int              `yaml:"number"`
	MinUnits    decimal.Decimal  `yaml:"min_units"`
	MaxUnits    *decimal.Decimal `yaml:"max_units"`
	Rate        decimal.Decimal  `yaml:"rate"`
	FixedCharge decimal.Decimal  `yaml:"fixed_charge"`
}

// YAMLLoader reads schedules from a YAML document with a top-level
// "schedules" list. Unknown keys are rejected.
type YAMLLoader struct{}

// NewYAMLLoader creates a YAML loader
func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{}
}

// Name returns the loader name
func (l *YAMLLoader) Name() string {
	return "yaml"
}

// CanLoad handles .yaml and .yml files
func (l *YAMLLoader) CanLoad(path string) bool {
	return hasExt(path, ".yaml", ".yml")
}

// Parse decodes the schedules list in src
func (l *YAMLLoader) Parse(src []byte, filename string) ([]*tariff.Schedule, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var doc yamlFile
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(errors.TypeParsing, err, "parse %s", filename)
	}

	schedules := make([]*tariff.Schedule, 0, len(doc.Schedules))
	for _, ys := range doc.Schedules {
		s, err := ys.toSchedule()
		if err != nil {
			return nil, errors.Wrapf(errors.TypeParsing, err, "%s: schedule %s@%s", filename, ys.Category, ys.Version)
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}

func (ys yamlSchedule) toSchedule() (*tariff.Schedule, error) {
	from, err := parseDate("effective_from", ys.EffectiveFrom)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate("effective_to", ys.EffectiveTo)
	if err != nil {
		return nil, err
	}

	s := &tariff.Schedule{
		Category:      tariff.Category(ys.Category),
		Version:       ys.Version,
		EffectiveFrom: from,
		EffectiveTo:   to,
		Currency:      types.Currency(ys.Currency),
		FixedCharges:  policyOrDefault(ys.FixedCharges),
	}
	for _, yr := range ys.Regimes {
		regime := tariff.Regime{Name: yr.Name}
		for _, yb := range yr.Blocks {
			b := tariff.Block{
				Number:      yb.Number,
				MinUnits:    unitsFrom(yb.MinUnits),
				Rate:        types.NewAmount(yb.Rate),
				FixedCharge: types.NewAmount(yb.FixedCharge),
			}
			if yb.MaxUnits != nil {
				u := unitsFrom(*yb.MaxUnits)
				b.MaxUnits = &u
			}
			regime.Blocks = append(regime.Blocks, b)
		}
		s.Regimes = append(s.Regimes, regime)
	}
	return s, nil
}
