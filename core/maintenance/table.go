package maintenance

import (
	"fmt"

	"github.com/kilianp07/fleetcare/core/model"
)

// IntervalTable is an immutable lookup of service intervals per vehicle type.
type IntervalTable struct {
	byType   map[model.VehicleType]Interval
	fallback Interval
}

// NewIntervalTable builds the table from configuration.
func NewIntervalTable(cfg IntervalConfig) (IntervalTable, error) {
	t := IntervalTable{byType: make(map[model.VehicleType]Interval, len(cfg.Intervals))}
	for name, iv := range cfg.Intervals {
		vt, err := model.ParseVehicleType(name)
		if err != nil {
			return IntervalTable{}, err
		}
		t.byType[vt] = iv
	}
	fb, err := model.ParseVehicleType(cfg.Fallback)
	if err != nil {
		return IntervalTable{}, fmt.Errorf("fallback: %w", err)
	}
	iv, ok := t.byType[fb]
	if !ok {
		return IntervalTable{}, fmt.Errorf("fallback type %s has no interval", fb)
	}
	t.fallback = iv
	return t, nil
}

// Lookup returns the interval for vt, or the fallback for unknown types.
func (t IntervalTable) Lookup(vt model.VehicleType) Interval {
	if iv, ok := t.byType[vt]; ok {
		return iv
	}
	return t.fallback
}
