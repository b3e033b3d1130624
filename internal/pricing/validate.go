package pricing

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// ErrInvalidInput matches every *ValidationError.
var ErrInvalidInput = errors.New("invalid pricing input")

// ValidationError reports the first input that falls outside its allowed range.
// Reason is a human readable sentence suitable for showing to the user.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Validate checks in in a fixed order and reports the first violation.
func Validate(in Input) error {
	if in.MachineCostPerHour < 0 {
		return invalid("machine_cost_per_hour", "Machine cost per hour cannot be negative.")
	}
	if in.MaterialCostPerUnit < 0 {
		return invalid("material_cost_per_unit", "Material cost per unit cannot be negative.")
	}
	if in.ProductionTimeMinutes <= 0 {
		return invalid("production_time_minutes", "Production time must be greater than zero.")
	}
	if in.LaborCostPerHour < 0 {
		return invalid("labor_cost_per_hour", "Labor cost per hour cannot be negative.")
	}
	if in.OverheadPercent < 0 || in.OverheadPercent > 100 {
		return invalid("overhead_percentage", "Overhead percentage must be between 0 and 100.")
	}
	if in.ProfitMarginPercent < 0 || in.ProfitMarginPercent > 100 {
		return invalid("profit_margin_percentage", "Profit margin percentage must be between 0 and 100.")
	}
	if in.BatchSize <= 0 {
		return invalid("batch_size", "Batch size must be greater than zero.")
	}
	if in.AdditionalMaterialCost < 0 {
		return invalid("additional_material_cost", "Additional material cost cannot be negative.")
	}

	// NaN slips through every comparison above.
	for _, c := range []struct {
		field string
		label string
		value float64
	}{
		{"machine_cost_per_hour", "Machine cost per hour", in.MachineCostPerHour},
		{"material_cost_per_unit", "Material cost per unit", in.MaterialCostPerUnit},
		{"production_time_minutes", "Production time", in.ProductionTimeMinutes},
		{"labor_cost_per_hour", "Labor cost per hour", in.LaborCostPerHour},
		{"overhead_percentage", "Overhead percentage", in.OverheadPercent},
		{"profit_margin_percentage", "Profit margin percentage", in.ProfitMarginPercent},
		{"additional_material_cost", "Additional material cost", in.AdditionalMaterialCost},
	} {
		if !isFinite(c.value) {
			return invalid(c.field, c.label+" must be a finite number.")
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ValidateResult rejects a calculation whose price overflowed.
func ValidateResult(res Result) error {
	if !isFinite(res.PricePerPiece) || !isFinite(res.TotalBatchCost) {
		return invalid("price_per_piece", "Calculated price is too large to represent.")
	}
	return nil
}

// ValidateQuantityTable rejects a table with any overflowed row.
func ValidateQuantityTable(t QuantityTable) error {
	for _, q := range t.Quantities() {
		row := t[q]
		if !isFinite(row.PricePerPiece) || !isFinite(row.TotalCost) {
			return invalid("price_per_piece", fmt.Sprintf("Calculated price for %d pieces is too large to represent.", q))
		}
	}
	return nil
}

// ValidateRates rejects negative hourly components.
func ValidateRates(r CostRates) error {
	checks := []struct {
		field string
		label string
		value float64
	}{
		{"electricity", "Electricity cost per hour", r.ElectricityPerHour},
		{"maintenance", "Maintenance cost per hour", r.MaintenancePerHour},
		{"depreciation", "Depreciation cost per hour", r.DepreciationPerHour},
		{"facility", "Facility cost per hour", r.FacilityPerHour},
		{"labor", "Labor cost per hour", r.LaborPerHour},
		{"other", "Other costs per hour", r.OtherPerHour},
	}
	for _, c := range checks {
		if c.value < 0 {
			return invalid(c.field, c.label+" cannot be negative.")
		}
		if !isFinite(c.value) {
			return invalid(c.field, c.label+" must be a finite number.")
		}
	}
	if !isFinite(MachineRate(r)) {
		return invalid("total", "Total machine cost per hour is too large to represent.")
	}
	return nil
}

// ValidateSetup rejects a negative setup time or setup rate.
func ValidateSetup(s SetupConfig) error {
	if s.TimeMinutes < 0 {
		return invalid("setup_time_minutes", "Setup time cannot be negative.")
	}
	if s.CostPerHour != nil && *s.CostPerHour < 0 {
		return invalid("setup_cost_per_hour", "Setup cost per hour cannot be negative.")
	}
	if !isFinite(s.TimeMinutes) {
		return invalid("setup_time_minutes", "Setup time must be a finite number.")
	}
	if s.CostPerHour != nil && !isFinite(*s.CostPerHour) {
		return invalid("setup_cost_per_hour", "Setup cost per hour must be a finite number.")
	}
	return nil
}

// ValidateTiers checks thresholds and percentages and rejects two tiers that
// share a threshold.
func ValidateTiers(tiers []DiscountTier) error {
	seen := make(map[int]struct{}, len(tiers))
	for _, tier := range tiers {
		if tier.MinQuantity < 2 {
			return invalid("discount_tiers", fmt.Sprintf("Discount tier threshold must be at least 2, got %d.", tier.MinQuantity))
		}
		if tier.Percent < 0 || tier.Percent > 100 || math.IsNaN(tier.Percent) {
			return invalid("discount_tiers", fmt.Sprintf("Discount for %d+ pieces must be between 0 and 100.", tier.MinQuantity))
		}
		if _, dup := seen[tier.MinQuantity]; dup {
			return invalid("discount_tiers", fmt.Sprintf("Discount tier threshold %d is defined more than once.", tier.MinQuantity))
		}
		seen[tier.MinQuantity] = struct{}{}
	}
	return nil
}

// ValidateQuantities requires at least one quantity and no quantity below one.
func ValidateQuantities(quantities []int) error {
	if len(quantities) == 0 {
		return invalid("quantities", "At least one quantity is required.")
	}
	for _, q := range quantities {
		if q < 1 {
			return invalid("quantities", fmt.Sprintf("Quantity must be greater than zero, got %d.", q))
		}
	}
	return nil
}
