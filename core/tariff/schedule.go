// Package tariff models progressive electricity tariffs and bills against them.
//
// A Schedule is a versioned, immutable table of consumption blocks grouped into
// regimes. The Biller compiles a validated schedule once and then applies it in
// both directions: units to bill amount, and bill amount back to units.
package tariff

import (
	"fmt"
	"time"

	"solarwise/core/determinism"
	"solarwise/core/types"
)

// Category is a consumer category a schedule is published for
type Category string

const (
	CategoryDomestic   Category = "domestic"
	CategoryReligious  Category = "religious"
	CategoryIndustrial Category = "industrial"
	CategoryCommercial Category = "commercial"
)

// IsValid checks if the category is a known category
func (c Category) IsValid() bool {
	switch c {
	case CategoryDomestic, CategoryReligious, CategoryIndustrial, CategoryCommercial:
		return true
	default:
		return false
	}
}

// FixedChargePolicy controls how block fixed charges accumulate on one bill
type FixedChargePolicy string

const (
	// FixedChargeHighestBlock charges only the fixed charge of the highest block reached
	FixedChargeHighestBlock FixedChargePolicy = "highest_block"

	// FixedChargePerBlock charges every reached block's fixed charge once
	FixedChargePerBlock FixedChargePolicy = "per_block"
)

// Block is one progressive consumption block.
// It bills consumption in (MaxUnits of the previous block, MaxUnits].
type Block struct {
	// Number is the 1-based ordinal within the regime
	Number int `json:"block_number"`

	// MinUnits is the inclusive lower bound in whole units
	MinUnits types.Units `json:"min_units"`

	// MaxUnits is the inclusive upper bound, nil for the unbounded last block
	MaxUnits *types.Units `json:"max_units,omitempty"`

	// Rate is the energy charge per unit
	Rate types.Amount `json:"rate"`

	// FixedCharge is charged once when consumption reaches this block
	FixedCharge types.Amount `json:"fixed_charge"`
}

// Bounded reports whether the block has an upper limit
func (b Block) Bounded() bool {
	return b.MaxUnits != nil
}

// Regime is a named, ordered block list for one consumption tier
type Regime struct {
	Name   string  `json:"name"`
	Blocks []Block `json:"blocks"`
}

// Ceiling returns the highest unit count the regime applies to, or nil when unbounded
func (r Regime) Ceiling() *types.Units {
	if len(r.Blocks) == 0 {
		return nil
	}
	return r.Blocks[len(r.Blocks)-1].MaxUnits
}

// Schedule is a complete tariff for one category and version.
// Treat a Schedule as read-only once it has been validated; replacing a tariff
// means loading a new Schedule, never editing one in place.
type Schedule struct {
	Category      Category          `json:"category"`
	Version       string            `json:"version"`
	EffectiveFrom time.Time         `json:"effective_from"`
	EffectiveTo   *time.Time        `json:"effective_to,omitempty"`
	Currency      types.Currency    `json:"currency"`
	FixedCharges  FixedChargePolicy `json:"fixed_charge_policy"`

	// Regimes are ordered by ceiling; the last one is unbounded
	Regimes []Regime `json:"regimes"`
}

// Clone returns a deep copy that shares no slices or pointers with s
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return nil
	}
	out := *s
	if s.EffectiveTo != nil {
		to := *s.EffectiveTo
		out.EffectiveTo = &to
	}
	out.Regimes = make([]Regime, len(s.Regimes))
	for i, r := range s.Regimes {
		blocks := make([]Block, len(r.Blocks))
		for j, blk := range r.Blocks {
			if blk.MaxUnits != nil {
				hi := *blk.MaxUnits
				blk.MaxUnits = &hi
			}
			blocks[j] = blk
		}
		out.Regimes[i] = Regime{Name: r.Name, Blocks: blocks}
	}
	return &out
}

// Key identifies the schedule in logs and registries
func (s *Schedule) Key() string {
	return fmt.Sprintf("%s@%s", s.Category, s.Version)
}

// EffectiveAt reports whether the schedule's window covers t
func (s *Schedule) EffectiveAt(t time.Time) bool {
	if t.Before(s.EffectiveFrom) {
		return false
	}
	if s.EffectiveTo != nil && !t.Before(*s.EffectiveTo) {
		return false
	}
	return true
}

// Fingerprint is a content hash of the schedule, stable across loaders
func (s *Schedule) Fingerprint() string {
	sum, _ := determinism.HashJSON(s)
	return sum.Hex()
}

// Describe renders the schedule as plain text, one line per block
func (s *Schedule) Describe() string {
	out := fmt.Sprintf("%s tariff %s (effective %s, fixed charges: %s)\n",
		s.Category, s.Version, s.EffectiveFrom.Format("2006-01-02"), s.FixedCharges)
	for _, r := range s.Regimes {
		ceiling := "unbounded"
		if c := r.Ceiling(); c != nil {
			ceiling = "up to " + c.String() + " units"
		}
		out += fmt.Sprintf("  %s (%s):\n", r.Name, ceiling)
		for _, b := range r.Blocks {
			upper := "above"
			if b.MaxUnits != nil {
				upper = "- " + b.MaxUnits.String()
			}
			line := fmt.Sprintf("    %d. %s %s units: %s %s/unit", b.Number, b.MinUnits, upper, s.Currency, b.Rate)
			if b.FixedCharge.IsPositive() {
				line += fmt.Sprintf(" + %s %s fixed", s.Currency, b.FixedCharge)
			}
			out += line + "\n"
		}
	}
	return out
}

func unitsPtr(v int64) *types.Units {
	u := types.UnitsFromInt(v)
	return &u
}
