package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Simplici0/costcalc/internal/export"
	"github.com/Simplici0/costcalc/internal/pricing"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("117"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	totalStyle  = numberStyle.Bold(true).Foreground(lipgloss.Color("82"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

func priceTable(in pricing.Input, res pricing.Result, rates *pricing.CostRates) string {
	rows := export.BreakdownRows(res)
	if !in.IncludeLaborSeparately {
		kept := rows[:0]
		for _, row := range rows {
			if row.Component != "Labor" {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	last := len(rows) - 1
	t := newTable("Component", "Cost per Piece", "Percentage").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == last && col > 0:
				return totalStyle
			case col > 0:
				return numberStyle
			default:
				return cellStyle
			}
		})
	for _, row := range rows {
		t.Row(row.Component, row.CostPerPiece, row.Percentage)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Piece price") + "\n")
	if rates != nil {
		fmt.Fprintf(&b, "Machine rate: %s/h (from cost breakdown)\n", export.Money(pricing.MachineRate(*rates)))
	}
	b.WriteString(t.Render() + "\n")
	fmt.Fprintf(&b, "Batch of %d: %s\n", in.BatchSize, export.Money(res.TotalBatchCost))
	return b.String()
}

func quantitiesTable(qt pricing.QuantityTable) string {
	t := newTable("Quantity", "Price per Piece", "Total Cost", "Setup per Piece", "Material Discount", "Material Cost").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return numberStyle
		})
	for _, row := range export.QuantityRows(qt) {
		t.Row(
			strconv.Itoa(row.Quantity),
			row.PricePerPiece,
			row.TotalCost,
			row.SetupCostPerPiece,
			row.MaterialDiscount,
			row.DiscountedMaterialCost,
		)
	}
	return titleStyle.Render("Price by quantity") + "\n" + t.Render() + "\n"
}
