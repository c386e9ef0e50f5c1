package schedule

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"solarwise/core/tariff"
	"solarwise/core/types"
	"solarwise/internal/errors"
)

var (
	fileSchema = &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "schedule", LabelNames: []string{"category"}},
		},
	}

	scheduleSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "version", Required: true},
			{Name: "effective_from", Required: true},
			{Name: "effective_to"},
			{Name: "currency", Required: true},
			{Name: "fixed_charges"},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "regime", LabelNames: []string{"name"}},
		},
	}

	regimeSchema = &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "block", LabelNames: []string{"number"}},
		},
	}

	blockSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "min_units", Required: true},
			{Name: "max_units"},
			{Name: "rate", Required: true},
			{Name: "fixed_charge"},
		},
	}
)

// HCLLoader reads schedules written in HCL:
//
//	schedule "domestic" {
//	  version        = "2025.1.0"
//	  effective_from = "2025-01-01"
//	  currency       = "LKR"
//
//	  regime "standard" {
//	    block "1" {
//	      min_units = 0
//	      max_units = 60
//	      rate      = 11.00
//	    }
//	  }
//	}
type HCLLoader struct{}

// NewHCLLoader creates an HCL loader
func NewHCLLoader() *HCLLoader {
	return &HCLLoader{}
}

// Name returns the loader name
func (l *HCLLoader) Name() string {
	return "hcl"
}

// CanLoad handles .hcl files
func (l *HCLLoader) CanLoad(path string) bool {
	return hasExt(path, ".hcl")
}

// Parse decodes every schedule block in src
func (l *HCLLoader) Parse(src []byte, filename string) ([]*tariff.Schedule, error) {
	// a fresh parser per call keeps the loader safe for concurrent use
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	var schedules []*tariff.Schedule
	for _, block := range content.Blocks {
		s, err := decodeSchedule(block)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}

func decodeSchedule(block *hcl.Block) (*tariff.Schedule, error) {
	content, diags := block.Body.Content(scheduleSchema)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}
	attrs := content.Attributes

	s := &tariff.Schedule{Category: tariff.Category(block.Labels[0])}
	var err error
	if s.Version, err = stringAttr(attrs, "version"); err != nil {
		return nil, err
	}
	from, err := stringAttr(attrs, "effective_from")
	if err != nil {
		return nil, err
	}
	if s.EffectiveFrom, err = parseDate("effective_from", from); err != nil {
		return nil, err
	}
	to, err := stringAttr(attrs, "effective_to")
	if err != nil {
		return nil, err
	}
	if s.EffectiveTo, err = parseOptionalDate("effective_to", to); err != nil {
		return nil, err
	}
	currency, err := stringAttr(attrs, "currency")
	if err != nil {
		return nil, err
	}
	s.Currency = types.Currency(currency)
	policy, err := stringAttr(attrs, "fixed_charges")
	if err != nil {
		return nil, err
	}
	s.FixedCharges = policyOrDefault(policy)

	for _, rb := range content.Blocks {
		regime, err := decodeRegime(rb)
		if err != nil {
			return nil, err
		}
		s.Regimes = append(s.Regimes, regime)
	}
	return s, nil
}

func decodeRegime(block *hcl.Block) (tariff.Regime, error) {
	content, diags := block.Body.Content(regimeSchema)
	if diags.HasErrors() {
		return tariff.Regime{}, diagError(diags)
	}

	regime := tariff.Regime{Name: block.Labels[0]}
	for _, bb := range content.Blocks {
		b, err := decodeBlock(bb)
		if err != nil {
			return tariff.Regime{}, err
		}
		regime.Blocks = append(regime.Blocks, b)
	}
	return regime, nil
}

func decodeBlock(block *hcl.Block) (tariff.Block, error) {
	number, err := strconv.Atoi(block.Labels[0])
	if err != nil {
		return tariff.Block{}, errors.Wrapf(errors.TypeParsing, err, "%s: block label must be a number, got %q", block.DefRange, block.Labels[0])
	}

	content, diags := block.Body.Content(blockSchema)
	if diags.HasErrors() {
		return tariff.Block{}, diagError(diags)
	}
	attrs := content.Attributes

	b := tariff.Block{Number: number, FixedCharge: types.ZeroAmount}
	minUnits, err := decimalAttr(attrs, "min_units")
	if err != nil {
		return tariff.Block{}, err
	}
	b.MinUnits = unitsFrom(*minUnits)

	maxUnits, err := decimalAttr(attrs, "max_units")
	if err != nil {
		return tariff.Block{}, err
	}
	if maxUnits != nil {
		u := unitsFrom(*maxUnits)
		b.MaxUnits = &u
	}

	rate, err := decimalAttr(attrs, "rate")
	if err != nil {
		return tariff.Block{}, err
	}
	b.Rate = types.NewAmount(*rate)

	fixed, err := decimalAttr(attrs, "fixed_charge")
	if err != nil {
		return tariff.Block{}, err
	}
	if fixed != nil {
		b.FixedCharge = types.NewAmount(*fixed)
	}
	return b, nil
}

// evalAttr evaluates a literal attribute; schedules have no variables or functions.
// ok is false when the attribute is absent or null.
func evalAttr(attrs hcl.Attributes, name string) (val cty.Value, attr *hcl.Attribute, ok bool, err error) {
	attr, present := attrs[name]
	if !present {
		return cty.NilVal, nil, false, nil
	}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, attr, false, diagError(diags)
	}
	if !val.IsKnown() || val.IsNull() {
		return cty.NilVal, attr, false, nil
	}
	return val, attr, true, nil
}

func stringAttr(attrs hcl.Attributes, name string) (string, error) {
	val, attr, ok, err := evalAttr(attrs, name)
	if err != nil || !ok {
		return "", err
	}
	if val.Type() != cty.String {
		return "", errors.Newf(errors.TypeParsing, "%s: %s must be a string, got %s", attr.Range, name, val.Type().FriendlyName())
	}
	return val.AsString(), nil
}

// decimalAttr converts through the number's decimal text so rates like
// 7.85 are not rounded through float64. Quoted numbers are also accepted.
func decimalAttr(attrs hcl.Attributes, name string) (*decimal.Decimal, error) {
	val, attr, ok, err := evalAttr(attrs, name)
	if err != nil || !ok {
		return nil, err
	}

	var text string
	switch val.Type() {
	case cty.Number:
		text = val.AsBigFloat().Text('f', -1)
	case cty.String:
		text = val.AsString()
	default:
		return nil, errors.Newf(errors.TypeParsing, "%s: %s must be a number, got %s", attr.Range, name, val.Type().FriendlyName())
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeParsing, err, "%s: %s is not a decimal number", attr.Range, name)
	}
	return &d, nil
}

func diagError(diags hcl.Diagnostics) error {
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		msg := diag.Summary
		if diag.Detail != "" {
			msg += ": " + diag.Detail
		}
		if diag.Subject != nil {
			msg = fmt.Sprintf("%s: %s", diag.Subject, msg)
		}
		return errors.Parsing(msg, diags)
	}
	return errors.Parsing("invalid schedule", diags)
}
