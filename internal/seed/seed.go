package seed

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/Simplici0/costcalc/internal/config"
	"github.com/Simplici0/costcalc/internal/preset"
)

// DefaultPresetName is the preset created on startup from the calculator defaults.
const DefaultPresetName = "default"

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run makes sure the default preset exists in store. It is idempotent: an
// existing default preset keeps its values and only gains keys it lacks.
func Run(ctx context.Context, store preset.Store, defaults config.Defaults) (Stats, error) {
	stats := Stats{}
	want := defaultRecord(defaults)

	current, err := store.Load(ctx, DefaultPresetName)
	switch {
	case errors.Is(err, preset.ErrNotFound):
		if err := store.Save(ctx, DefaultPresetName, want); err != nil {
			return Stats{}, errors.Wrap(err, "insert default preset")
		}
		stats.Inserts++
		return stats, nil
	case err != nil:
		return Stats{}, errors.Wrap(err, "check default preset existence")
	}

	missing := false
	for key, value := range want {
		if _, ok := current[key]; !ok {
			current[key] = value
			missing = true
		}
	}
	if !missing {
		return stats, nil
	}

	if err := store.Save(ctx, DefaultPresetName, current); err != nil {
		return Stats{}, errors.Wrap(err, "update default preset")
	}
	stats.Updates++
	return stats, nil
}

func defaultRecord(d config.Defaults) preset.Record {
	in := d.Input()
	return preset.Snapshot{
		OverheadPercent:        &in.OverheadPercent,
		ProfitMarginPercent:    &in.ProfitMarginPercent,
		AdditionalMaterialCost: &in.AdditionalMaterialCost,
		BatchSize:              &in.BatchSize,
	}.Record()
}
