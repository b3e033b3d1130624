package config

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/Simplici0/costcalc/internal/pricing"
)

// Defaults are the calculator values used when a request or preset leaves a field out.
type Defaults struct {
	OverheadPercent        float64
	ProfitMarginPercent    float64
	BatchSize              int
	AdditionalMaterialCost float64
	SetupTimeMinutes       float64
	Quantities             []int
	DiscountTiers          []pricing.DiscountTier
}

// DefaultsResult is the outcome of loading a defaults file.
type DefaultsResult struct {
	Defaults Defaults
	Warnings []string
}

// BuiltinDefaults returns the calculator defaults used without a defaults file.
func BuiltinDefaults() Defaults {
	return Defaults{
		OverheadPercent:     20,
		ProfitMarginPercent: 25,
		BatchSize:           1,
		Quantities:          []int{1, 2, 5, 10, 20, 50},
		DiscountTiers: []pricing.DiscountTier{
			{MinQuantity: 10, Percent: 5},
			{MinQuantity: 50, Percent: 10},
			{MinQuantity: 100, Percent: 15},
		},
	}
}

// Input returns a pricing input pre-filled with the defaults.
func (d Defaults) Input() pricing.Input {
	return pricing.Input{
		OverheadPercent:        d.OverheadPercent,
		ProfitMarginPercent:    d.ProfitMarginPercent,
		BatchSize:              d.BatchSize,
		AdditionalMaterialCost: d.AdditionalMaterialCost,
	}
}

// Setup returns the default setup configuration.
func (d Defaults) Setup() pricing.SetupConfig {
	return pricing.SetupConfig{TimeMinutes: d.SetupTimeMinutes}
}

type tomlFile struct {
	Pricing       tomlPricing `toml:"pricing"`
	DiscountTiers []tomlTier  `toml:"discount_tiers"`
}

type tomlPricing struct {
	OverheadPercent        float64 `toml:"overhead_percentage"`
	ProfitMarginPercent    float64 `toml:"profit_margin_percentage"`
	BatchSize              int     `toml:"batch_size"`
	AdditionalMaterialCost float64 `toml:"additional_material_cost"`
	SetupTimeMinutes       float64 `toml:"setup_time_minutes"`
	Quantities             []int   `toml:"quantities"`
}

type tomlTier struct {
	MinQuantity int     `toml:"min_quantity"`
	Percent     float64 `toml:"discount_percentage"`
}

// LoadDefaults reads calculator defaults from a TOML file. A missing file yields
// the built-in defaults. Unknown keys are reported as warnings.
func LoadDefaults(path string) (*DefaultsResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &DefaultsResult{Defaults: BuiltinDefaults()}, nil
		}
		return nil, errors.Wrap(err, "reading defaults file")
	}
	return LoadDefaultsFromString(string(data))
}

// LoadDefaultsFromString parses calculator defaults from TOML text.
func LoadDefaultsFromString(data string) (*DefaultsResult, error) {
	result := &DefaultsResult{Defaults: BuiltinDefaults()}
	if strings.TrimSpace(data) == "" {
		return result, nil
	}

	var tf tomlFile
	md, err := toml.Decode(data, &tf)
	if err != nil {
		return nil, errors.Wrap(err, "parsing defaults")
	}

	for _, key := range md.Undecoded() {
		result.Warnings = append(result.Warnings, fmt.Sprintf("unknown defaults key: %q", key.String()))
	}

	d := &result.Defaults
	if md.IsDefined("pricing", "overhead_percentage") {
		d.OverheadPercent = tf.Pricing.OverheadPercent
	}
	if md.IsDefined("pricing", "profit_margin_percentage") {
		d.ProfitMarginPercent = tf.Pricing.ProfitMarginPercent
	}
	if md.IsDefined("pricing", "batch_size") {
		d.BatchSize = tf.Pricing.BatchSize
	}
	if md.IsDefined("pricing", "additional_material_cost") {
		d.AdditionalMaterialCost = tf.Pricing.AdditionalMaterialCost
	}
	if md.IsDefined("pricing", "setup_time_minutes") {
		d.SetupTimeMinutes = tf.Pricing.SetupTimeMinutes
	}
	if md.IsDefined("pricing", "quantities") {
		d.Quantities = tf.Pricing.Quantities
	}
	if md.IsDefined("discount_tiers") {
		d.DiscountTiers = make([]pricing.DiscountTier, 0, len(tf.DiscountTiers))
		for _, tier := range tf.DiscountTiers {
			d.DiscountTiers = append(d.DiscountTiers, pricing.DiscountTier{MinQuantity: tier.MinQuantity, Percent: tier.Percent})
		}
	}

	if err := validateDefaults(d); err != nil {
		return nil, err
	}
	return result, nil
}

func validateDefaults(d *Defaults) error {
	var errs []string

	if d.OverheadPercent < 0 || d.OverheadPercent > 100 {
		errs = append(errs, fmt.Sprintf("overhead_percentage must be 0-100, got %g", d.OverheadPercent))
	}
	if d.ProfitMarginPercent < 0 || d.ProfitMarginPercent > 100 {
		errs = append(errs, fmt.Sprintf("profit_margin_percentage must be 0-100, got %g", d.ProfitMarginPercent))
	}
	if d.BatchSize < 1 {
		errs = append(errs, fmt.Sprintf("batch_size must be positive, got %d", d.BatchSize))
	}
	if d.AdditionalMaterialCost < 0 {
		errs = append(errs, fmt.Sprintf("additional_material_cost must not be negative, got %g", d.AdditionalMaterialCost))
	}
	if d.SetupTimeMinutes < 0 {
		errs = append(errs, fmt.Sprintf("setup_time_minutes must not be negative, got %g", d.SetupTimeMinutes))
	}
	if err := pricing.ValidateQuantities(d.Quantities); err != nil {
		errs = append(errs, "quantities: "+err.Error())
	}
	if err := pricing.ValidateTiers(d.DiscountTiers); err != nil {
		errs = append(errs, "discount_tiers: "+err.Error())
	}

	if len(errs) > 0 {
		return errors.Newf("defaults validation error: %s", strings.Join(errs, "; "))
	}
	return nil
}
