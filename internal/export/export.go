// Package export renders pricing results as CSV files and plain-text reports.
package export

import (
	"github.com/cockroachdb/errors"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/costcalc/internal/pricing"
)

// BreakdownRow is one line of the per-piece cost breakdown.
type BreakdownRow struct {
	Component    string `csv:"Component"`
	CostPerPiece string `csv:"Cost per Piece"`
	Percentage   string `csv:"Percentage"`
}

// QuantityRow is one line of the multi-quantity price table.
type QuantityRow struct {
	Quantity               int    `csv:"Quantity"`
	PricePerPiece          string `csv:"Price per Piece"`
	TotalCost              string `csv:"Total Cost"`
	SetupCostPerPiece      string `csv:"Setup Cost per Piece"`
	MaterialDiscount       string `csv:"Material Discount (%)"`
	DiscountedMaterialCost string `csv:"Discounted Material Cost"`
}

// BreakdownRows lists every cost component of res followed by the final price.
func BreakdownRows(res pricing.Result) []BreakdownRow {
	b, s := res.Breakdown, res.Shares
	return []BreakdownRow{
		{"Machine", Money(b.MachineCost), Percent(s.Machine)},
		{"Labor", Money(b.LaborCost), Percent(s.Labor)},
		{"Material", Money(b.MaterialCost), Percent(s.Material)},
		{"Additional Material", Money(b.AdditionalMaterialCost), Percent(s.AdditionalMaterial)},
		{"Overhead", Money(b.Overhead), Percent(s.Overhead)},
		{"Base Cost", Money(b.BaseCost), Percent(s.Base)},
		{"Profit", Money(b.Profit), Percent(s.Profit)},
		{"Price per Piece", Money(res.PricePerPiece), "100.00%"},
	}
}

// QuantityRows lists the table in ascending quantity order.
func QuantityRows(table pricing.QuantityTable) []QuantityRow {
	rows := make([]QuantityRow, 0, len(table))
	for _, r := range table.Rows() {
		rows = append(rows, QuantityRow{
			Quantity:               r.Quantity,
			PricePerPiece:          Money(r.PricePerPiece),
			TotalCost:              Money(r.TotalCost),
			SetupCostPerPiece:      Money(r.SetupCostPerPiece),
			MaterialDiscount:       Discount(r.DiscountPercent),
			DiscountedMaterialCost: Money(r.DiscountedMaterialCost),
		})
	}
	return rows
}

// BreakdownCSV renders the cost breakdown of res with a header line.
func BreakdownCSV(res pricing.Result) ([]byte, error) {
	rows := BreakdownRows(res)
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, errors.Wrap(err, "marshal breakdown csv")
	}
	return out, nil
}

// QuantitiesCSV renders the multi-quantity table with a header line.
func QuantitiesCSV(table pricing.QuantityTable) ([]byte, error) {
	rows := QuantityRows(table)
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, errors.Wrap(err, "marshal quantities csv")
	}
	return out, nil
}

// Money formats an amount with two decimals.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Percent formats a share with two decimals and a percent sign.
func Percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// Discount formats a discount percentage with one decimal.
func Discount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}
