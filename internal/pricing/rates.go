package pricing

import "math"

// CostRates holds the independent hourly costs of running a machine.
type CostRates struct {
	ElectricityPerHour  float64 `json:"electricity"`
	MaintenancePerHour  float64 `json:"maintenance"`
	DepreciationPerHour float64 `json:"depreciation"`
	FacilityPerHour     float64 `json:"facility"`
	LaborPerHour        float64 `json:"labor"`
	OtherPerHour        float64 `json:"other"`
}

// MachineRate sums all hourly components into a single machine rate.
func MachineRate(r CostRates) float64 {
	return r.ElectricityPerHour +
		r.MaintenancePerHour +
		r.DepreciationPerHour +
		r.FacilityPerHour +
		r.OtherPerHour +
		r.LaborPerHour
}

// ConsistentRates returns rates when they still add up to machineRate and nil
// otherwise, so a breakdown is never reported next to a rate it does not explain.
func ConsistentRates(machineRate float64, rates *CostRates) *CostRates {
	if rates == nil {
		return nil
	}
	total := MachineRate(*rates)
	if math.Abs(total-machineRate) > 1e-9*math.Max(1, math.Abs(machineRate)) {
		return nil
	}
	return rates
}
