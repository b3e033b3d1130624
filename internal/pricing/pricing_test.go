package pricing

import (
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func baseInput() Input {
	return Input{
		MachineCostPerHour:    60,
		MaterialCostPerUnit:   2,
		ProductionTimeMinutes: 6,
		OverheadPercent:       20,
		ProfitMarginPercent:   25,
		BatchSize:             1,
	}
}

func TestCalculate_ReferenceExample(t *testing.T) {
	result := Calculate(baseInput())

	nearlyEqual(t, "machineCost", result.Breakdown.MachineCost, 6)
	nearlyEqual(t, "laborCost", result.Breakdown.LaborCost, 0)
	nearlyEqual(t, "materialCost", result.Breakdown.MaterialCost, 2)
	nearlyEqual(t, "directCost", result.Breakdown.DirectCost, 8)
	nearlyEqual(t, "overhead", result.Breakdown.Overhead, 1.6)
	nearlyEqual(t, "baseCost", result.Breakdown.BaseCost, 9.6)
	nearlyEqual(t, "profit", result.Breakdown.Profit, 2.4)
	nearlyEqual(t, "pricePerPiece", result.PricePerPiece, 12)
	nearlyEqual(t, "totalBatchCost", result.TotalBatchCost, 12)
}

func TestCalculate_LaborOnlyWhenIncludedSeparately(t *testing.T) {
	in := baseInput()
	in.LaborCostPerHour = 30

	without := Calculate(in)
	nearlyEqual(t, "without laborCost", without.Breakdown.LaborCost, 0)
	nearlyEqual(t, "without directCost", without.Breakdown.DirectCost, 8)

	in.IncludeLaborSeparately = true
	with := Calculate(in)
	nearlyEqual(t, "with laborCost", with.Breakdown.LaborCost, 3)
	nearlyEqual(t, "with directCost", with.Breakdown.DirectCost, 11)
	nearlyEqual(t, "with pricePerPiece", with.PricePerPiece, 11*1.2*1.25)
}

func TestCalculate_AdditionalMaterialIsDirectCost(t *testing.T) {
	in := baseInput()
	in.AdditionalMaterialCost = 2

	result := Calculate(in)

	nearlyEqual(t, "additionalMaterialCost", result.Breakdown.AdditionalMaterialCost, 2)
	nearlyEqual(t, "directCost", result.Breakdown.DirectCost, 10)
	nearlyEqual(t, "pricePerPiece", result.PricePerPiece, 15)
}

func TestCalculate_PriceIdentities(t *testing.T) {
	inputs := []Input{
		baseInput(),
		{MachineCostPerHour: 42.5, MaterialCostPerUnit: 0.37, ProductionTimeMinutes: 13.3, LaborCostPerHour: 18, OverheadPercent: 7.5, ProfitMarginPercent: 33, AdditionalMaterialCost: 1.1, BatchSize: 17, IncludeLaborSeparately: true},
		{MachineCostPerHour: 0, MaterialCostPerUnit: 5, ProductionTimeMinutes: 1, OverheadPercent: 100, ProfitMarginPercent: 100, BatchSize: 3},
	}

	for i, in := range inputs {
		r := Calculate(in)
		if math.Abs(r.PricePerPiece-(r.Breakdown.BaseCost+r.Breakdown.Profit)) > 1e-9*r.PricePerPiece {
			t.Fatalf("input %d: price %v != base %v + profit %v", i, r.PricePerPiece, r.Breakdown.BaseCost, r.Breakdown.Profit)
		}
		if math.Abs(r.Breakdown.BaseCost-(r.Breakdown.DirectCost+r.Breakdown.Overhead)) > 1e-9*r.Breakdown.BaseCost {
			t.Fatalf("input %d: base %v != direct %v + overhead %v", i, r.Breakdown.BaseCost, r.Breakdown.DirectCost, r.Breakdown.Overhead)
		}

		s := r.Shares
		sum := s.Machine + s.Labor + s.Material + s.AdditionalMaterial + s.Overhead + s.Profit
		if math.Abs(sum-100) > 1e-6 {
			t.Fatalf("input %d: shares sum to %v, want 100", i, sum)
		}
		if math.Abs(s.Base+s.Profit-100) > 1e-6 {
			t.Fatalf("input %d: base+profit share = %v, want 100", i, s.Base+s.Profit)
		}
	}
}

func TestCalculate_ZeroPriceHasZeroShares(t *testing.T) {
	result := Calculate(Input{ProductionTimeMinutes: 10, OverheadPercent: 20, ProfitMarginPercent: 25, BatchSize: 4})

	nearlyEqual(t, "pricePerPiece", result.PricePerPiece, 0)
	nearlyEqual(t, "totalBatchCost", result.TotalBatchCost, 0)
	if result.Shares != (Shares{}) {
		t.Fatalf("expected zero shares for a zero price, got %+v", result.Shares)
	}
}

func TestCalculate_BatchSizeOnlyScalesTotal(t *testing.T) {
	in := baseInput()
	single := Calculate(in)

	for _, batch := range []int{2, 10, 250} {
		in.BatchSize = batch
		r := Calculate(in)
		nearlyEqual(t, "pricePerPiece", r.PricePerPiece, single.PricePerPiece)
		nearlyEqual(t, "totalBatchCost", r.TotalBatchCost, single.PricePerPiece*float64(batch))
	}
}

func TestCalculate_ZeroProductionTimeHasNoMachineCost(t *testing.T) {
	in := baseInput()
	in.ProductionTimeMinutes = 0

	result := Calculate(in)

	nearlyEqual(t, "machineCost", result.Breakdown.MachineCost, 0)
	nearlyEqual(t, "pricePerPiece", result.PricePerPiece, 2*1.2*1.25)
}

func TestMachineRate_SumsAllComponents(t *testing.T) {
	rates := CostRates{
		ElectricityPerHour:  3.5,
		MaintenancePerHour:  2,
		DepreciationPerHour: 10,
		FacilityPerHour:     4.25,
		LaborPerHour:        25,
		OtherPerHour:        0.25,
	}

	nearlyEqual(t, "machineRate", MachineRate(rates), 45)
	nearlyEqual(t, "empty machineRate", MachineRate(CostRates{}), 0)
}

func TestMachineRate_OrderIndependent(t *testing.T) {
	a := CostRates{ElectricityPerHour: 1.1, MaintenancePerHour: 2.2, DepreciationPerHour: 3.3, FacilityPerHour: 4.4, LaborPerHour: 5.5, OtherPerHour: 6.6}
	b := CostRates{ElectricityPerHour: 6.6, MaintenancePerHour: 5.5, DepreciationPerHour: 4.4, FacilityPerHour: 3.3, LaborPerHour: 2.2, OtherPerHour: 1.1}

	nearlyEqual(t, "swapped machineRate", MachineRate(a), MachineRate(b))
}

func TestConsistentRates(t *testing.T) {
	rates := &CostRates{ElectricityPerHour: 1.1, MaintenancePerHour: 2.2, DepreciationPerHour: 3.3, FacilityPerHour: 4.4, LaborPerHour: 5.5, OtherPerHour: 6.6}

	if got := ConsistentRates(23.1, rates); got != rates {
		t.Fatalf("matching total: got %v, want the given rates", got)
	}
	if got := ConsistentRates(MachineRate(*rates), rates); got != rates {
		t.Fatalf("exact total: got %v, want the given rates", got)
	}
	if got := ConsistentRates(100, rates); got != nil {
		t.Fatalf("overridden rate: got %v, want nil", got)
	}
	if got := ConsistentRates(60, nil); got != nil {
		t.Fatalf("no breakdown: got %v, want nil", got)
	}
}
