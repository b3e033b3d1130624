package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/costcalc/internal/pricing"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DEFAULTS_PATH", filepath.Join(dir, "missing.toml"))
	t.Setenv("PRESET_DIR", filepath.Join(dir, "presets"))
	return filepath.Join(dir, "presets")
}

func TestParseQuantities(t *testing.T) {
	got, err := parseQuantities(" 1, 10 ,,100")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10, 100}, got)

	_, err = parseQuantities("1,ten")
	assert.Error(t, err)
}

func TestParseTiers(t *testing.T) {
	got, err := parseTiers("10:5, 50:7.5")
	require.NoError(t, err)
	assert.Equal(t, []pricing.DiscountTier{{MinQuantity: 10, Percent: 5}, {MinQuantity: 50, Percent: 7.5}}, got)

	empty, err := parseTiers("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"10", "x:5", "10:y"} {
		_, err := parseTiers(bad)
		assert.Error(t, err, bad)
	}
}

func TestApplyOnlyOverridesGivenFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-material", "0", "-batch", "25"}, io.Discard)
	require.NoError(t, err)

	base := pricing.Input{MachineCostPerHour: 60, MaterialCostPerUnit: 2, BatchSize: 1, OverheadPercent: 20}
	in := opts.apply(base)

	assert.Equal(t, 60.0, in.MachineCostPerHour)
	assert.Equal(t, 0.0, in.MaterialCostPerUnit)
	assert.Equal(t, 25, in.BatchSize)
	assert.Equal(t, 20.0, in.OverheadPercent)
	assert.False(t, opts.multiQuantity())
	assert.False(t, opts.usesRateBreakdown())
}

func TestParseFlags_RejectsUnknownFormat(t *testing.T) {
	_, err := parseFlags([]string{"-format", "pdf"}, io.Discard)
	assert.Error(t, err)
}

func TestRun_PriceCSVAndSave(t *testing.T) {
	dir := isolate(t)

	var out, errOut bytes.Buffer
	code := run([]string{"-machine-rate", "60", "-material", "2", "-minutes", "6", "-format", "csv", "-save", "Part A"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	assert.True(t, strings.HasPrefix(out.String(), "Component,Cost per Piece,Percentage\n"))
	assert.Contains(t, out.String(), "Price per Piece,12.00,100.00%")
	assert.Contains(t, errOut.String(), `saved preset "Part A"`)

	_, err := os.Stat(filepath.Join(dir, "part_a.json"))
	assert.NoError(t, err)
}

func TestRun_QuantitiesFromPreset(t *testing.T) {
	isolate(t)

	var out, errOut bytes.Buffer
	require.Equal(t, 0, run([]string{"-machine-rate", "60", "-material", "2", "-minutes", "6", "-format", "txt", "-save", "bracket"}, &out, &errOut), errOut.String())

	out.Reset()
	code := run([]string{"-preset", "bracket", "-quantities", "1,10", "-setup-minutes", "30", "-format", "csv"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	want := strings.Join([]string{
		"Quantity,Price per Piece,Total Cost,Setup Cost per Piece,Material Discount (%),Discounted Material Cost",
		"1,42.00,42.00,30.00,0.0%,2.00",
		"10,14.85,148.50,3.00,5.0%,1.90",
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())
}

func TestRun_RateBreakdownTable(t *testing.T) {
	isolate(t)

	var out, errOut bytes.Buffer
	code := run([]string{
		"-rate-electricity", "10", "-rate-maintenance", "5", "-rate-depreciation", "25",
		"-rate-facility", "8", "-rate-other", "12",
		"-material", "2", "-minutes", "6",
	}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	assert.Contains(t, out.String(), "Machine rate: 60.00/h")
	assert.Contains(t, out.String(), "Price per Piece")
	assert.Contains(t, out.String(), "12.00")
	assert.NotContains(t, out.String(), "Labor")
}

func TestRun_Failures(t *testing.T) {
	isolate(t)

	var out, errOut bytes.Buffer
	assert.Equal(t, 1, run([]string{"-machine-rate", "60", "-minutes", "0"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "Production time must be greater than zero.")

	errOut.Reset()
	assert.Equal(t, 1, run([]string{"-preset", "nothing", "-minutes", "5"}, &out, &errOut))
	assert.Contains(t, errOut.String(), `preset "nothing" not found`)

	errOut.Reset()
	assert.Equal(t, 1, run([]string{"-minutes", "5", "-tiers", "10:5,10:8"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "defined more than once")

	assert.Equal(t, 2, run([]string{"-no-such-flag"}, &out, &errOut))
}

func TestRun_NonFiniteInputsFailCleanly(t *testing.T) {
	isolate(t)

	cases := map[string]struct {
		args   []string
		reason string
	}{
		"nan minutes": {
			args:   []string{"-machine-rate", "60", "-minutes", "NaN"},
			reason: "Production time must be a finite number.",
		},
		"overflowing price as csv": {
			args:   []string{"-machine-rate", "1e308", "-minutes", "120", "-format", "csv"},
			reason: "Calculated price is too large to represent.",
		},
		"overflowing quantities": {
			args:   []string{"-machine-rate", "1e308", "-minutes", "120", "-quantities", "1,10"},
			reason: "Calculated price for 1 pieces is too large to represent.",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := run(tc.args, &out, &errOut)

			assert.Equal(t, 1, code)
			assert.Empty(t, out.String())
			assert.Contains(t, errOut.String(), tc.reason)
		})
	}
}

func TestRun_MachineRateOverrideDropsPresetBreakdown(t *testing.T) {
	isolate(t)

	var out, errOut bytes.Buffer
	code := run([]string{"-rate-electricity", "10", "-rate-depreciation", "35", "-material", "2", "-minutes", "6", "-save", "shop", "-format", "txt"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "- Total Machine Cost: $45.00\n")

	out.Reset()
	errOut.Reset()
	code = run([]string{"-preset", "shop", "-machine-rate", "100", "-format", "txt"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "- Machine Cost per Hour: $100.00\n")
	assert.NotContains(t, out.String(), "Total Machine Cost")

	out.Reset()
	code = run([]string{"-preset", "shop", "-format", "txt"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "- Total Machine Cost: $45.00\n")
}
