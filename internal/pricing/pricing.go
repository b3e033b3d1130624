package pricing

// Input represents the per-piece production parameters used to price a part.
type Input struct {
	MachineCostPerHour     float64 `json:"machine_cost_per_hour"`
	MaterialCostPerUnit    float64 `json:"material_cost_per_unit"`
	ProductionTimeMinutes  float64 `json:"production_time_minutes"`
	LaborCostPerHour       float64 `json:"labor_cost_per_hour"`
	OverheadPercent        float64 `json:"overhead_percentage"`
	ProfitMarginPercent    float64 `json:"profit_margin_percentage"`
	AdditionalMaterialCost float64 `json:"additional_material_cost"`
	BatchSize              int     `json:"batch_size"`
	// IncludeLaborSeparately adds LaborCostPerHour on top of the machine rate.
	// Leave it off when labor is already part of MachineCostPerHour.
	IncludeLaborSeparately bool `json:"include_labor_cost"`
}

// Breakdown contains the per-piece cost components of a price.
type Breakdown struct {
	MachineCost            float64 `json:"machine_cost_per_piece"`
	LaborCost              float64 `json:"labor_cost_per_piece"`
	MaterialCost           float64 `json:"material_cost_per_piece"`
	AdditionalMaterialCost float64 `json:"additional_material_cost"`
	DirectCost             float64 `json:"direct_cost_per_piece"`
	Overhead               float64 `json:"overhead_cost_per_piece"`
	BaseCost               float64 `json:"base_cost_per_piece"`
	Profit                 float64 `json:"profit_per_piece"`
}

// Shares contains each component as a percentage of the price per piece.
// Machine, Labor, Material, AdditionalMaterial, Overhead and Profit add up to 100.
// Base is reported for display and overlaps with the others.
type Shares struct {
	Machine            float64 `json:"machine_cost_percentage"`
	Labor              float64 `json:"labor_cost_percentage"`
	Material           float64 `json:"material_cost_percentage"`
	AdditionalMaterial float64 `json:"additional_material_cost_percentage"`
	Overhead           float64 `json:"overhead_cost_percentage"`
	Base               float64 `json:"base_cost_percentage"`
	Profit             float64 `json:"profit_percentage"`
}

// Result groups the full pricing output for one piece and its batch.
type Result struct {
	Breakdown      Breakdown `json:"breakdown"`
	PricePerPiece  float64   `json:"price_per_piece"`
	TotalBatchCost float64   `json:"total_batch_cost"`
	Shares         Shares    `json:"shares"`
}

// Calculate computes the price of one piece and of the whole batch.
// It does not validate its input; run Validate first.
func Calculate(in Input) Result {
	hours := in.ProductionTimeMinutes / 60.0

	machineCost := in.MachineCostPerHour * hours
	laborCost := 0.0
	if in.IncludeLaborSeparately {
		laborCost = in.LaborCostPerHour * hours
	}
	materialCost := in.MaterialCostPerUnit

	direct := machineCost + laborCost + materialCost + in.AdditionalMaterialCost
	overhead := direct * (in.OverheadPercent / 100.0)
	base := direct + overhead
	profit := base * (in.ProfitMarginPercent / 100.0)
	price := base + profit

	return Result{
		Breakdown: Breakdown{
			MachineCost:            machineCost,
			LaborCost:              laborCost,
			MaterialCost:           materialCost,
			AdditionalMaterialCost: in.AdditionalMaterialCost,
			DirectCost:             direct,
			Overhead:               overhead,
			BaseCost:               base,
			Profit:                 profit,
		},
		PricePerPiece:  price,
		TotalBatchCost: price * float64(in.BatchSize),
		Shares: Shares{
			Machine:            share(machineCost, price),
			Labor:              share(laborCost, price),
			Material:           share(materialCost, price),
			AdditionalMaterial: share(in.AdditionalMaterialCost, price),
			Overhead:           share(overhead, price),
			Base:               share(base, price),
			Profit:             share(profit, price),
		},
	}
}

// share returns part as a percentage of total, or 0 when total is zero.
func share(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100.0
}
