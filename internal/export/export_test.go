package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/costcalc/internal/pricing"
)

func sampleInput() pricing.Input {
	return pricing.Input{
		MachineCostPerHour:    60,
		MaterialCostPerUnit:   2,
		ProductionTimeMinutes: 6,
		OverheadPercent:       20,
		ProfitMarginPercent:   25,
		BatchSize:             100,
	}
}

func TestBreakdownCSV(t *testing.T) {
	out, err := BreakdownCSV(pricing.Calculate(sampleInput()))
	require.NoError(t, err)

	want := strings.Join([]string{
		"Component,Cost per Piece,Percentage",
		"Machine,6.00,50.00%",
		"Labor,0.00,0.00%",
		"Material,2.00,16.67%",
		"Additional Material,0.00,0.00%",
		"Overhead,1.60,13.33%",
		"Base Cost,9.60,80.00%",
		"Profit,2.40,20.00%",
		"Price per Piece,12.00,100.00%",
	}, "\n") + "\n"
	assert.Equal(t, want, string(out))
}

func TestQuantitiesCSV(t *testing.T) {
	table := pricing.CalculateQuantities(
		sampleInput(),
		pricing.SetupConfig{TimeMinutes: 30},
		[]pricing.DiscountTier{{MinQuantity: 50, Percent: 10}, {MinQuantity: 10, Percent: 5}},
		[]int{10, 1},
	)

	out, err := QuantitiesCSV(table)
	require.NoError(t, err)

	want := strings.Join([]string{
		"Quantity,Price per Piece,Total Cost,Setup Cost per Piece,Material Discount (%),Discounted Material Cost",
		"1,42.00,42.00,30.00,0.0%,2.00",
		"10,14.85,148.50,3.00,5.0%,1.90",
	}, "\n") + "\n"
	assert.Equal(t, want, string(out))
}

func TestQuantitiesCSV_EmptyTableHasHeaderOnly(t *testing.T) {
	out, err := QuantitiesCSV(pricing.QuantityTable{})
	require.NoError(t, err)
	assert.Equal(t, "Quantity,Price per Piece,Total Cost,Setup Cost per Piece,Material Discount (%),Discounted Material Cost\n", string(out))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "0.00", Money(0))
	assert.Equal(t, "1234.57", Money(1234.567))
	assert.Equal(t, "33.33%", Percent(100.0/3))
	assert.Equal(t, "7.5%", Discount(7.5))
	assert.Equal(t, "10.0%", Discount(10))
}

func TestPriceReport(t *testing.T) {
	in := sampleInput()
	report := PriceReport(in, pricing.Calculate(in), nil)

	assert.Contains(t, report, "- Machine Cost per Hour: $60.00\n")
	assert.Contains(t, report, "- Batch Size: 100 pieces\n")
	assert.Contains(t, report, "- Price per Piece: $12.00\n")
	assert.Contains(t, report, "- Total Batch Cost: $1200.00\n")
	assert.Contains(t, report, "- Material: $2.00 (16.67%)\n")
	assert.NotContains(t, report, "Machine Cost Breakdown")
	assert.NotContains(t, report, "- Labor")
}

func TestPriceReport_WithRatesAndLabor(t *testing.T) {
	in := sampleInput()
	in.IncludeLaborSeparately = true
	in.LaborCostPerHour = 30
	rates := &pricing.CostRates{ElectricityPerHour: 10, MaintenancePerHour: 5, DepreciationPerHour: 25, FacilityPerHour: 8, LaborPerHour: 0, OtherPerHour: 12}

	report := PriceReport(in, pricing.Calculate(in), rates)

	assert.Contains(t, report, "Machine Cost Breakdown (per Hour):\n")
	assert.Contains(t, report, "- Electricity: $10.00\n")
	assert.Contains(t, report, "- Total Machine Cost: $60.00\n")
	assert.Contains(t, report, "- Labor Cost per Hour: $30.00\n")
	assert.Contains(t, report, "- Labor: $3.00 (")
}

func TestQuantitiesReport(t *testing.T) {
	table := pricing.CalculateQuantities(sampleInput(), pricing.SetupConfig{TimeMinutes: 30}, nil, []int{20, 5})
	report := QuantitiesReport(table)

	first := strings.Index(report, "Quantity: 5\n")
	second := strings.Index(report, "Quantity: 20\n")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.Contains(t, report, "- Setup Cost per Piece: $6.00\n")
	assert.Contains(t, report, "- Material Discount: 0.0%\n")
}
