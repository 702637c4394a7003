// Package simulator generates a deterministic demo fleet and its fuel log.
package simulator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/kilianp07/fleetcare/core/fleet"
	"github.com/kilianp07/fleetcare/core/model"
)

var types = []model.VehicleType{model.VehicleTruck, model.VehicleVan, model.VehicleCar, model.VehicleBus}

var prefixes = map[model.VehicleType]string{
	model.VehicleTruck: "TRK",
	model.VehicleVan:   "VAN",
	model.VehicleCar:   "CAR",
	model.VehicleBus:   "BUS",
}

// BaseEfficiency is the nominal efficiency of each vehicle type.
var BaseEfficiency = map[model.VehicleType]float64{
	model.VehicleTruck: 25,
	model.VehicleVan:   30,
	model.VehicleCar:   35,
	model.VehicleBus:   18,
}

// Generator produces the same fleet for the same seed and day.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New returns a Generator. cfg is completed with defaults.
func New(cfg Config) (*Generator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// Fleet returns the registry rows with maintenance dates relative to today.
// Statuses are drawn 85/10/5 between active, maintenance and inactive.
func (g *Generator) Fleet(today time.Time) []model.VehicleRecord {
	today = model.Day(today)
	vs := make([]model.VehicleRecord, g.cfg.Vehicles)
	for i := range vs {
		typ := types[g.rng.Intn(len(types))]
		last := today.AddDate(0, 0, -g.between(10, 180))
		vs[i] = model.VehicleRecord{
			ID:                  fmt.Sprintf("%s-%03d", prefixes[typ], i+1),
			Type:                typ,
			Status:              g.status(),
			Mileage:             g.between(15000, 80000),
			ReportedEfficiency:  round(BaseEfficiency[typ]+g.uniform(-3, 5), 1),
			LastMaintenanceDate: last,
			NextMaintenanceDate: last.AddDate(0, 0, g.between(30, 120)),
		}
	}
	return vs
}

// FuelLog returns one row per day over the trailing days for the first
// logged vehicles. Vehicles that are not active log idle rows.
func (g *Generator) FuelLog(vs []model.VehicleRecord, today time.Time) []model.FuelLogEntry {
	today = model.Day(today)
	n := min(g.cfg.LoggedVehicles, len(vs))
	rows := make([]model.FuelLogEntry, 0, n*g.cfg.Days)
	for _, v := range vs[:n] {
		for d := 0; d < g.cfg.Days; d++ {
			day := today.AddDate(0, 0, -d)
			if v.Status != model.StatusActive {
				rows = append(rows, model.NewFuelLogEntry(v.ID, day, 0, 0))
				continue
			}
			dist := g.uniform(100, 400)
			eff := v.ReportedEfficiency + g.uniform(-2, 2)
			rows = append(rows, model.NewFuelLogEntry(v.ID, day, round(dist/eff, 2), round(dist, 1)))
		}
	}
	return rows
}

// Seed writes a generated fleet and fuel log to w.
func (g *Generator) Seed(ctx context.Context, w fleet.Writer, today time.Time) (vehicles, rows int, err error) {
	vs := g.Fleet(today)
	for _, v := range vs {
		if err := w.UpsertVehicle(ctx, v); err != nil {
			return 0, 0, fmt.Errorf("seed vehicle %s: %w", v.ID, err)
		}
	}
	entries := g.FuelLog(vs, today)
	if err := w.AppendFuel(ctx, entries...); err != nil {
		return len(vs), 0, fmt.Errorf("seed fuel log: %w", err)
	}
	return len(vs), len(entries), nil
}

func (g *Generator) status() model.VehicleStatus {
	switch p := g.rng.Float64(); {
	case p < 0.85:
		return model.StatusActive
	case p < 0.95:
		return model.StatusMaintenance
	default:
		return model.StatusInactive
	}
}

// between draws an integer in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
