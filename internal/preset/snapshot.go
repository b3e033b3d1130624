package preset

import (
	"math"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"

	"github.com/Simplici0/costcalc/internal/pricing"
)

// RateDetails is the hourly machine cost breakdown saved alongside the inputs.
type RateDetails struct {
	Electricity  float64 `mapstructure:"electricity"`
	Maintenance  float64 `mapstructure:"maintenance"`
	Depreciation float64 `mapstructure:"depreciation"`
	Facility     float64 `mapstructure:"facility"`
	Labor        float64 `mapstructure:"labor"`
	Other        float64 `mapstructure:"other"`
	Total        float64 `mapstructure:"total"`
}

// Snapshot is the typed view of a calculator preset. Nil fields were absent
// from the record.
type Snapshot struct {
	MachineCostPerHour     *float64     `mapstructure:"machine_cost_per_hour"`
	MaterialCostPerUnit    *float64     `mapstructure:"material_cost_per_unit"`
	ProductionTimeMinutes  *float64     `mapstructure:"production_time_minutes"`
	LaborCostPerHour       *float64     `mapstructure:"labor_cost_per_hour"`
	OverheadPercent        *float64     `mapstructure:"overhead_percentage"`
	ProfitMarginPercent    *float64     `mapstructure:"profit_margin_percentage"`
	AdditionalMaterialCost *float64     `mapstructure:"additional_material_cost"`
	BatchSize              *int         `mapstructure:"batch_size"`
	IncludeLaborCost       *bool        `mapstructure:"include_labor_cost"`
	MachineCostDetails     *RateDetails `mapstructure:"machine_cost_details"`
}

// NewSnapshot captures in and, when given, the hourly rates it was derived from.
func NewSnapshot(in pricing.Input, rates *pricing.CostRates) Snapshot {
	s := Snapshot{
		MachineCostPerHour:     &in.MachineCostPerHour,
		MaterialCostPerUnit:    &in.MaterialCostPerUnit,
		ProductionTimeMinutes:  &in.ProductionTimeMinutes,
		LaborCostPerHour:       &in.LaborCostPerHour,
		OverheadPercent:        &in.OverheadPercent,
		ProfitMarginPercent:    &in.ProfitMarginPercent,
		AdditionalMaterialCost: &in.AdditionalMaterialCost,
		BatchSize:              &in.BatchSize,
		IncludeLaborCost:       &in.IncludeLaborSeparately,
	}
	if rates != nil {
		s.MachineCostDetails = &RateDetails{
			Electricity:  rates.ElectricityPerHour,
			Maintenance:  rates.MaintenancePerHour,
			Depreciation: rates.DepreciationPerHour,
			Facility:     rates.FacilityPerHour,
			Labor:        rates.LaborPerHour,
			Other:        rates.OtherPerHour,
			Total:        pricing.MachineRate(*rates),
		}
	}
	return s
}

// Record converts the snapshot into a storable record, leaving out absent fields.
func (s Snapshot) Record() Record {
	rec := Record{}
	putFloat := func(key string, v *float64) {
		if v != nil {
			rec[key] = *v
		}
	}

	putFloat("machine_cost_per_hour", s.MachineCostPerHour)
	putFloat("material_cost_per_unit", s.MaterialCostPerUnit)
	putFloat("production_time_minutes", s.ProductionTimeMinutes)
	putFloat("labor_cost_per_hour", s.LaborCostPerHour)
	putFloat("overhead_percentage", s.OverheadPercent)
	putFloat("profit_margin_percentage", s.ProfitMarginPercent)
	putFloat("additional_material_cost", s.AdditionalMaterialCost)
	if s.BatchSize != nil {
		rec["batch_size"] = *s.BatchSize
	}
	if s.IncludeLaborCost != nil {
		rec["include_labor_cost"] = *s.IncludeLaborCost
	}
	if d := s.MachineCostDetails; d != nil {
		rec["machine_cost_details"] = map[string]any{
			"electricity":  d.Electricity,
			"maintenance":  d.Maintenance,
			"depreciation": d.Depreciation,
			"facility":     d.Facility,
			"labor":        d.Labor,
			"other":        d.Other,
			"total":        d.Total,
		}
	}
	return rec
}

// DecodeSnapshot reads the calculator keys of rec. Keys it does not know are ignored.
func DecodeSnapshot(rec Record) (Snapshot, error) {
	var s Snapshot
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncType(rejectFractionalInts),
	})
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "create snapshot decoder")
	}
	if err := decoder.Decode(map[string]any(rec)); err != nil {
		return Snapshot{}, errors.Wrap(err, "decode preset snapshot")
	}
	return s, nil
}

// rejectFractionalInts stops a stored 2.5 from being truncated into an int field.
func rejectFractionalInts(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}
	if f, ok := data.(float64); ok && (f != math.Trunc(f) || math.IsInf(f, 0)) {
		return nil, errors.Newf("%v is not a whole number", f)
	}
	return data, nil
}

// Input overlays the snapshot onto base and returns the result.
func (s Snapshot) Input(base pricing.Input) pricing.Input {
	in := base
	if s.MachineCostPerHour != nil {
		in.MachineCostPerHour = *s.MachineCostPerHour
	}
	if s.MaterialCostPerUnit != nil {
		in.MaterialCostPerUnit = *s.MaterialCostPerUnit
	}
	if s.ProductionTimeMinutes != nil {
		in.ProductionTimeMinutes = *s.ProductionTimeMinutes
	}
	if s.LaborCostPerHour != nil {
		in.LaborCostPerHour = *s.LaborCostPerHour
	}
	if s.OverheadPercent != nil {
		in.OverheadPercent = *s.OverheadPercent
	}
	if s.ProfitMarginPercent != nil {
		in.ProfitMarginPercent = *s.ProfitMarginPercent
	}
	if s.AdditionalMaterialCost != nil {
		in.AdditionalMaterialCost = *s.AdditionalMaterialCost
	}
	if s.BatchSize != nil {
		in.BatchSize = *s.BatchSize
	}
	if s.IncludeLaborCost != nil {
		in.IncludeLaborSeparately = *s.IncludeLaborCost
	}
	return in
}

// Rates returns the saved hourly breakdown, if any.
func (s Snapshot) Rates() *pricing.CostRates {
	if s.MachineCostDetails == nil {
		return nil
	}
	d := s.MachineCostDetails
	return &pricing.CostRates{
		ElectricityPerHour:  d.Electricity,
		MaintenancePerHour:  d.Maintenance,
		DepreciationPerHour: d.Depreciation,
		FacilityPerHour:     d.Facility,
		LaborPerHour:        d.Labor,
		OtherPerHour:        d.Other,
	}
}
