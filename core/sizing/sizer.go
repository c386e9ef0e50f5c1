// Package sizing converts monthly consumption into a recommended solar system.
package sizing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"solarwise/core/types"
	"solarwise/internal/errors"
)

// Config holds the regional sizing parameters
type Config struct {
	// YieldPerKW is the average monthly generation of 1 kW installed, in kWh
	YieldPerKW decimal.Decimal `json:"yield_per_kw" yaml:"yield_per_kw"`

	// GranularityKW is the step capacity is rounded up to
	GranularityKW decimal.Decimal `json:"granularity_kw" yaml:"granularity_kw"`

	// MinPricePerKW and MaxPricePerKW bound the installed price band
	MinPricePerKW decimal.Decimal `json:"min_price_per_kw" yaml:"min_price_per_kw"`
	MaxPricePerKW decimal.Decimal `json:"max_price_per_kw" yaml:"max_price_per_kw"`
}

// DefaultConfig returns the Sri Lanka defaults: ~130 kWh per kW per month
// and a 120,000 to 180,000 LKR per kW installed price band.
func DefaultConfig() Config {
	return Config{
		YieldPerKW:    decimal.NewFromInt(130),
		GranularityKW: decimal.RequireFromString("0.1"),
		MinPricePerKW: decimal.NewFromInt(120000),
		MaxPricePerKW: decimal.NewFromInt(180000),
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if !c.YieldPerKW.IsPositive() {
		return errors.New(errors.TypeConfig, "sizing yield per kW must be positive")
	}
	if !c.GranularityKW.IsPositive() {
		return errors.New(errors.TypeConfig, "sizing granularity must be positive")
	}
	if c.MinPricePerKW.IsNegative() || c.MaxPricePerKW.LessThan(c.MinPricePerKW) {
		return errors.New(errors.TypeConfig, "sizing price band must satisfy 0 <= min <= max")
	}
	return nil
}

// Recommendation is a recommended system size and indicative price range
type Recommendation struct {
	CapacityKW     decimal.Decimal `json:"capacity_kw"`
	EstimatedUnits types.Units     `json:"estimated_units"`
	MinPrice       types.Amount    `json:"min_price_range"`
	MaxPrice       types.Amount    `json:"max_price_range"`
}

// Sizer recommends system capacity for a consumption
type Sizer struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a sizer
func New(cfg Config, logger *zap.Logger) (*Sizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sizer{cfg: cfg, logger: logger}, nil
}

// Config returns the sizer's configuration
func (s *Sizer) Config() Config {
	return s.cfg
}

// Capacity returns the capacity needed to generate units per month, rounded
// up to the configured granularity so the system never under-serves consumption.
func (s *Sizer) Capacity(units types.Units) decimal.Decimal {
	perStep := s.cfg.YieldPerKW.Mul(s.cfg.GranularityKW)
	steps := units.Decimal().Div(perStep).Ceil()
	return steps.Mul(s.cfg.GranularityKW)
}

// Generation returns the expected monthly generation of a system
func (s *Sizer) Generation(capacityKW decimal.Decimal) types.Units {
	return types.NewUnits(capacityKW.Mul(s.cfg.YieldPerKW))
}

// Recommend sizes a system for a monthly consumption
func (s *Sizer) Recommend(units types.Units) (Recommendation, error) {
	if units.IsNegative() {
		return Recommendation{}, errors.Inputf("units must not be negative, got %s", units)
	}

	capacity := s.Capacity(units)
	rec := Recommendation{
		CapacityKW:     capacity,
		EstimatedUnits: units,
		MinPrice:       types.NewAmount(capacity.Mul(s.cfg.MinPricePerKW).Round(0)),
		MaxPrice:       types.NewAmount(capacity.Mul(s.cfg.MaxPricePerKW).Round(0)),
	}

	s.logger.Debug("sized system",
		zap.String("units", units.String()),
		zap.String("capacity_kw", capacity.String()))
	return rec, nil
}
