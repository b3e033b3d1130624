package pricing

import (
	"sort"

	"github.com/samber/lo"
)

// SetupConfig describes the one-time machine setup spread across a batch.
type SetupConfig struct {
	TimeMinutes float64 `json:"setup_time_minutes"`
	// CostPerHour overrides the hourly rate charged during setup.
	// When nil the machine cost per hour of the base input is used.
	CostPerHour *float64 `json:"setup_cost_per_hour,omitempty"`
}

// DiscountTier grants a material discount from MinQuantity pieces upwards.
type DiscountTier struct {
	MinQuantity int     `json:"min_quantity"`
	Percent     float64 `json:"discount_percentage"`
}

// QuantityResult is the price of one requested quantity including setup and discount.
type QuantityResult struct {
	Quantity               int     `json:"quantity"`
	PricePerPiece          float64 `json:"price_per_piece"`
	TotalCost              float64 `json:"total_cost"`
	SetupCostPerPiece      float64 `json:"setup_cost_per_piece"`
	DiscountPercent        float64 `json:"material_discount_percentage"`
	DiscountedMaterialCost float64 `json:"discounted_material_cost"`
	Base                   Result  `json:"base_result"`
}

// QuantityTable maps each requested quantity to its result.
type QuantityTable map[int]QuantityResult

// Quantities returns the quantities of the table in ascending order.
func (t QuantityTable) Quantities() []int {
	keys := lo.Keys(map[int]QuantityResult(t))
	sort.Ints(keys)
	return keys
}

// Rows returns the results ordered by ascending quantity.
func (t QuantityTable) Rows() []QuantityResult {
	rows := make([]QuantityResult, 0, len(t))
	for _, q := range t.Quantities() {
		rows = append(rows, t[q])
	}
	return rows
}

// CalculateQuantities prices every quantity in quantities. Each quantity carries its
// share of the setup cost and the material discount of the highest tier it reaches.
// Duplicate quantities collapse into one entry; quantities below 1 are skipped.
func CalculateQuantities(in Input, setup SetupConfig, tiers []DiscountTier, quantities []int) QuantityTable {
	setupRate := in.MachineCostPerHour
	if setup.CostPerHour != nil {
		setupRate = *setup.CostPerHour
	}
	setupCost := setupRate * (setup.TimeMinutes / 60.0)
	ordered := sortTiers(tiers)

	table := make(QuantityTable, len(quantities))
	for _, q := range lo.Uniq(quantities) {
		if q < 1 {
			continue
		}

		setupPerPiece := setupCost / float64(q)
		discount := resolveDiscount(ordered, q)
		material := in.MaterialCostPerUnit
		if discount > 0 {
			material = in.MaterialCostPerUnit * (1 - discount/100.0)
		}

		quantityInput := in
		quantityInput.MaterialCostPerUnit = material
		quantityInput.BatchSize = q
		base := Calculate(quantityInput)

		price := base.PricePerPiece + setupPerPiece
		table[q] = QuantityResult{
			Quantity:               q,
			PricePerPiece:          price,
			TotalCost:              price * float64(q),
			SetupCostPerPiece:      setupPerPiece,
			DiscountPercent:        discount,
			DiscountedMaterialCost: material,
			Base:                   base,
		}
	}
	return table
}

// ResolveDiscount returns the discount percentage that applies to quantity.
func ResolveDiscount(tiers []DiscountTier, quantity int) float64 {
	return resolveDiscount(sortTiers(tiers), quantity)
}

// sortTiers returns a copy of tiers ordered by threshold, then by percent, so that
// the larger discount wins when two tiers share a threshold.
func sortTiers(tiers []DiscountTier) []DiscountTier {
	ordered := make([]DiscountTier, len(tiers))
	copy(ordered, tiers)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].MinQuantity != ordered[j].MinQuantity {
			return ordered[i].MinQuantity < ordered[j].MinQuantity
		}
		return ordered[i].Percent < ordered[j].Percent
	})
	return ordered
}

// resolveDiscount expects tiers sorted by sortTiers.
func resolveDiscount(tiers []DiscountTier, quantity int) float64 {
	discount := 0.0
	for _, tier := range tiers {
		if quantity >= tier.MinQuantity {
			discount = tier.Percent
		}
	}
	return discount
}
