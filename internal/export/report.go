package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/costcalc/internal/pricing"
)

const reportRule = "================================================"

// PriceReport renders a plain-text summary of a single-quantity calculation.
// rates may be nil when the machine rate was entered directly.
func PriceReport(in pricing.Input, res pricing.Result, rates *pricing.CostRates) string {
	var b strings.Builder

	b.WriteString("Manufacturing Cost Calculator Results\n")
	b.WriteString(reportRule + "\n\n")

	b.WriteString("Input Parameters:\n")
	fmt.Fprintf(&b, "- Machine Cost per Hour: $%s\n", Money(in.MachineCostPerHour))
	fmt.Fprintf(&b, "- Material Cost per Unit: $%s\n", Money(in.MaterialCostPerUnit))
	fmt.Fprintf(&b, "- Additional Material Cost: $%s\n", Money(in.AdditionalMaterialCost))
	fmt.Fprintf(&b, "- Production Time: %s minutes per piece\n", decimal.NewFromFloat(in.ProductionTimeMinutes).StringFixed(2))
	if in.IncludeLaborSeparately {
		fmt.Fprintf(&b, "- Labor Cost per Hour: $%s\n", Money(in.LaborCostPerHour))
	}
	fmt.Fprintf(&b, "- Overhead Percentage: %s\n", Percent(in.OverheadPercent))
	fmt.Fprintf(&b, "- Profit Margin: %s\n", Percent(in.ProfitMarginPercent))
	fmt.Fprintf(&b, "- Batch Size: %d pieces\n", in.BatchSize)

	if rates != nil {
		b.WriteString("\nMachine Cost Breakdown (per Hour):\n")
		fmt.Fprintf(&b, "- Electricity: $%s\n", Money(rates.ElectricityPerHour))
		fmt.Fprintf(&b, "- Maintenance: $%s\n", Money(rates.MaintenancePerHour))
		fmt.Fprintf(&b, "- Depreciation: $%s\n", Money(rates.DepreciationPerHour))
		fmt.Fprintf(&b, "- Facility: $%s\n", Money(rates.FacilityPerHour))
		fmt.Fprintf(&b, "- Labor: $%s\n", Money(rates.LaborPerHour))
		fmt.Fprintf(&b, "- Other Costs: $%s\n", Money(rates.OtherPerHour))
		fmt.Fprintf(&b, "- Total Machine Cost: $%s\n", Money(pricing.MachineRate(*rates)))
	}

	b.WriteString("\nCalculation Results:\n")
	fmt.Fprintf(&b, "- Price per Piece: $%s\n", Money(res.PricePerPiece))
	fmt.Fprintf(&b, "- Total Batch Cost: $%s\n", Money(res.TotalBatchCost))
	fmt.Fprintf(&b, "- Profit per Piece: $%s\n", Money(res.Breakdown.Profit))

	b.WriteString("\nCost Breakdown per Piece:\n")
	for _, row := range BreakdownRows(res) {
		if row.Component == "Labor" && !in.IncludeLaborSeparately {
			continue
		}
		fmt.Fprintf(&b, "- %s: $%s (%s)\n", row.Component, row.CostPerPiece, row.Percentage)
	}
	return b.String()
}

// QuantitiesReport renders one block per quantity, smallest first.
func QuantitiesReport(table pricing.QuantityTable) string {
	var b strings.Builder

	b.WriteString("Multi-Quantity Pricing Results\n")
	b.WriteString(reportRule + "\n")

	for _, row := range QuantityRows(table) {
		fmt.Fprintf(&b, "\nQuantity: %d\n", row.Quantity)
		fmt.Fprintf(&b, "- Price per Piece: $%s\n", row.PricePerPiece)
		fmt.Fprintf(&b, "- Total Cost: $%s\n", row.TotalCost)
		fmt.Fprintf(&b, "- Setup Cost per Piece: $%s\n", row.SetupCostPerPiece)
		fmt.Fprintf(&b, "- Material Discount: %s\n", row.MaterialDiscount)
		fmt.Fprintf(&b, "- Discounted Material Cost: $%s\n", row.DiscountedMaterialCost)
	}
	return b.String()
}
