package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/Simplici0/costcalc/internal/config"
	"github.com/Simplici0/costcalc/internal/export"
	"github.com/Simplici0/costcalc/internal/logger"
	"github.com/Simplici0/costcalc/internal/preset"
	"github.com/Simplici0/costcalc/internal/pricing"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	machineRate float64
	rates       pricing.CostRates
	material    float64
	minutes     float64
	labor       float64
	withLabor   bool
	overhead    float64
	profit      float64
	additional  float64
	batch       int

	quantities   string
	setupMinutes float64
	setupRate    float64
	tiers        string

	presetName string
	saveName   string
	presetDir  string
	format     string

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("mcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Float64Var(&opts.machineRate, "machine-rate", 0, "Machine cost per hour")
	fs.Float64Var(&opts.rates.ElectricityPerHour, "rate-electricity", 0, "Electricity cost per hour")
	fs.Float64Var(&opts.rates.MaintenancePerHour, "rate-maintenance", 0, "Maintenance cost per hour")
	fs.Float64Var(&opts.rates.DepreciationPerHour, "rate-depreciation", 0, "Depreciation cost per hour")
	fs.Float64Var(&opts.rates.FacilityPerHour, "rate-facility", 0, "Facility cost per hour")
	fs.Float64Var(&opts.rates.LaborPerHour, "rate-labor", 0, "Operator labor folded into the machine rate, per hour")
	fs.Float64Var(&opts.rates.OtherPerHour, "rate-other", 0, "Other machine costs per hour")
	fs.Float64Var(&opts.material, "material", 0, "Material cost per unit")
	fs.Float64Var(&opts.minutes, "minutes", 0, "Production time per piece in minutes")
	fs.Float64Var(&opts.labor, "labor", 0, "Labor cost per hour, charged when -include-labor is set")
	fs.BoolVar(&opts.withLabor, "include-labor", false, "Charge labor separately from the machine rate")
	fs.Float64Var(&opts.overhead, "overhead", 0, "Overhead percentage")
	fs.Float64Var(&opts.profit, "profit", 0, "Profit margin percentage")
	fs.Float64Var(&opts.additional, "additional", 0, "Additional material cost per piece")
	fs.IntVar(&opts.batch, "batch", 0, "Batch size")

	fs.StringVar(&opts.quantities, "quantities", "", "Comma separated quantities to price, e.g. 1,10,100")
	fs.Float64Var(&opts.setupMinutes, "setup-minutes", 0, "One-time setup time in minutes")
	fs.Float64Var(&opts.setupRate, "setup-rate", 0, "Setup cost per hour (defaults to the machine rate)")
	fs.StringVar(&opts.tiers, "tiers", "", "Material discount tiers as qty:percent pairs, e.g. 10:5,50:10")

	fs.StringVar(&opts.presetName, "preset", "", "Load inputs from a saved preset")
	fs.StringVar(&opts.saveName, "save", "", "Save the inputs as a preset")
	fs.StringVar(&opts.presetDir, "preset-dir", "", "Preset directory (defaults to PRESET_DIR)")
	fs.StringVar(&opts.format, "format", "table", "Output format: table, csv or txt")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	switch opts.format {
	case "table", "csv", "txt":
	default:
		return nil, errors.Newf("unknown format %q", opts.format)
	}
	return opts, nil
}

func (o *options) usesRateBreakdown() bool {
	for name := range o.set {
		if strings.HasPrefix(name, "rate-") {
			return true
		}
	}
	return false
}

func (o *options) multiQuantity() bool {
	return o.set["quantities"] || o.set["setup-minutes"] || o.set["setup-rate"] || o.set["tiers"]
}

// apply overlays every flag given on the command line onto in.
func (o *options) apply(in pricing.Input) pricing.Input {
	if o.set["machine-rate"] {
		in.MachineCostPerHour = o.machineRate
	}
	if o.set["material"] {
		in.MaterialCostPerUnit = o.material
	}
	if o.set["minutes"] {
		in.ProductionTimeMinutes = o.minutes
	}
	if o.set["labor"] {
		in.LaborCostPerHour = o.labor
	}
	if o.set["include-labor"] {
		in.IncludeLaborSeparately = o.withLabor
	}
	if o.set["overhead"] {
		in.OverheadPercent = o.overhead
	}
	if o.set["profit"] {
		in.ProfitMarginPercent = o.profit
	}
	if o.set["additional"] {
		in.AdditionalMaterialCost = o.additional
	}
	if o.set["batch"] {
		in.BatchSize = o.batch
	}
	return in
}

func parseQuantities(raw string) ([]int, error) {
	var quantities []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		q, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Newf("quantity %q is not a whole number", part)
		}
		quantities = append(quantities, q)
	}
	return quantities, nil
}

func parseTiers(raw string) ([]pricing.DiscountTier, error) {
	tiers := []pricing.DiscountTier{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		qty, pct, ok := strings.Cut(part, ":")
		if !ok {
			return nil, errors.Newf("tier %q must look like quantity:percent", part)
		}
		minQty, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, errors.Newf("tier %q has an invalid quantity", part)
		}
		percent, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil {
			return nil, errors.Newf("tier %q has an invalid percentage", part)
		}
		tiers = append(tiers, pricing.DiscountTier{MinQuantity: minQty, Percent: percent})
	}
	return tiers, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "mcalc: %v\n", err)
		return 2
	}

	cfg := config.Load()
	if opts.presetDir == "" {
		opts.presetDir = cfg.PresetDir
	}

	log, err := logger.New("error")
	if err != nil {
		fmt.Fprintf(stderr, "mcalc: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	loaded, err := config.LoadDefaults(cfg.DefaultsPath)
	if err != nil {
		fmt.Fprintf(stderr, "mcalc: defaults error: %v\n", err)
		return 1
	}
	for _, w := range loaded.Warnings {
		fmt.Fprintf(stderr, "mcalc: defaults warning: %s\n", w)
	}

	presets := preset.NewService(preset.NewOSFileStore(opts.presetDir), log)
	if err := calculate(context.Background(), opts, loaded.Defaults, presets, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "mcalc: %v\n", err)
		return 1
	}
	return 0
}

func calculate(ctx context.Context, opts *options, defaults config.Defaults, presets *preset.Service, stdout, stderr io.Writer) error {
	in := defaults.Input()
	var rates *pricing.CostRates

	if opts.presetName != "" {
		rec, ok := presets.Load(ctx, opts.presetName)
		if !ok {
			return errors.Newf("preset %q not found", opts.presetName)
		}
		snap, err := preset.DecodeSnapshot(rec)
		if err != nil {
			return errors.Wrapf(err, "read preset %q", opts.presetName)
		}
		in = snap.Input(in)
		rates = snap.Rates()
	}

	in = opts.apply(in)
	if opts.usesRateBreakdown() {
		if err := pricing.ValidateRates(opts.rates); err != nil {
			return err
		}
		r := opts.rates
		rates = &r
		in.MachineCostPerHour = pricing.MachineRate(r)
	}
	rates = pricing.ConsistentRates(in.MachineCostPerHour, rates)

	if opts.multiQuantity() {
		if err := priceQuantities(opts, defaults, in, stdout); err != nil {
			return err
		}
	} else {
		if err := pricing.Validate(in); err != nil {
			return err
		}
		res := pricing.Calculate(in)
		if err := pricing.ValidateResult(res); err != nil {
			return err
		}
		if err := renderPrice(stdout, opts.format, in, res, rates); err != nil {
			return err
		}
	}

	if opts.saveName != "" {
		if !presets.Save(ctx, opts.saveName, preset.NewSnapshot(in, rates).Record()) {
			return errors.Newf("could not save preset %q", opts.saveName)
		}
		fmt.Fprintf(stderr, "saved preset %q\n", opts.saveName)
	}
	return nil
}

func priceQuantities(opts *options, defaults config.Defaults, in pricing.Input, stdout io.Writer) error {
	quantities := defaults.Quantities
	if opts.set["quantities"] {
		parsed, err := parseQuantities(opts.quantities)
		if err != nil {
			return err
		}
		quantities = parsed
	}

	tiers := defaults.DiscountTiers
	if opts.set["tiers"] {
		parsed, err := parseTiers(opts.tiers)
		if err != nil {
			return err
		}
		tiers = parsed
	}

	setup := defaults.Setup()
	if opts.set["setup-minutes"] {
		setup.TimeMinutes = opts.setupMinutes
	}
	if opts.set["setup-rate"] {
		rate := opts.setupRate
		setup.CostPerHour = &rate
	}

	if err := pricing.ValidateQuantities(quantities); err != nil {
		return err
	}
	if err := pricing.ValidateSetup(setup); err != nil {
		return err
	}
	if err := pricing.ValidateTiers(tiers); err != nil {
		return err
	}
	check := in
	check.BatchSize = lo.Max(quantities)
	if !check.IncludeLaborSeparately {
		check.LaborCostPerHour = 0
	}
	if err := pricing.Validate(check); err != nil {
		return err
	}

	table := pricing.CalculateQuantities(in, setup, tiers, quantities)
	if err := pricing.ValidateQuantityTable(table); err != nil {
		return err
	}
	return renderQuantities(stdout, opts.format, table)
}

// writeExport writes one of the export renderings selected by format.
func writeExport(w io.Writer, format string, csvData func() ([]byte, error), text func() string) error {
	if format == "txt" {
		_, err := io.WriteString(w, text())
		return err
	}
	data, err := csvData()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func renderPrice(w io.Writer, format string, in pricing.Input, res pricing.Result, rates *pricing.CostRates) error {
	if format == "table" {
		_, err := io.WriteString(w, priceTable(in, res, rates))
		return err
	}
	return writeExport(w, format,
		func() ([]byte, error) { return export.BreakdownCSV(res) },
		func() string { return export.PriceReport(in, res, rates) },
	)
}

func renderQuantities(w io.Writer, format string, table pricing.QuantityTable) error {
	if format == "table" {
		_, err := io.WriteString(w, quantitiesTable(table))
		return err
	}
	return writeExport(w, format,
		func() ([]byte, error) { return export.QuantitiesCSV(table) },
		func() string { return export.QuantitiesReport(table) },
	)
}
