package features

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleetcare/core/model"
)

// Vector is the per-vehicle feature set for one evaluation date.
type Vector struct {
	Mileage              float64
	DaysSinceMaintenance int
	VehicleTypeCode      int
	Efficiency           EfficiencyStats
}

// Values returns the model inputs in a fixed column order:
// mileage, days since maintenance, vehicle type code.
func (v Vector) Values() []float64 {
	return []float64{v.Mileage, float64(v.DaysSinceMaintenance), float64(v.VehicleTypeCode)}
}

// EfficiencyStats summarises fuel efficiency over the active days of a window.
type EfficiencyStats struct {
	ActiveDays int
	Mean       float64
	StdDev     float64
}

// Available reports whether at least one active day was seen.
func (s EfficiencyStats) Available() bool { return s.ActiveDays > 0 }

// Builder produces feature vectors using a fixed codebook.
type Builder struct {
	codebook Codebook
}

// NewBuilder returns a Builder bound to cb.
func NewBuilder(cb Codebook) Builder {
	return Builder{codebook: cb}
}

// Codebook returns the codebook the builder encodes with.
func (b Builder) Codebook() Codebook { return b.codebook }

// Build derives the feature vector of v at the evaluation date at. When a
// fuel window is given the efficiency statistics are filled in as well.
func (b Builder) Build(v model.VehicleRecord, at time.Time, window []model.FuelLogEntry) (Vector, error) {
	days, err := DaysSinceMaintenance(v, at)
	if err != nil {
		return Vector{}, err
	}
	code, err := b.codebook.Encode(v.Type)
	if err != nil {
		return Vector{}, fmt.Errorf("vehicle %s: %w", v.ID, err)
	}
	vec := Vector{
		Mileage:              float64(v.Mileage),
		DaysSinceMaintenance: days,
		VehicleTypeCode:      code,
	}
	if window != nil {
		vec.Efficiency = RollingEfficiency(window)
	}
	return vec, nil
}

// DaysSinceMaintenance returns whole days between the last maintenance and at.
// A last maintenance date after at yields ErrInvalidDate.
func DaysSinceMaintenance(v model.VehicleRecord, at time.Time) (int, error) {
	days := model.DaysBetween(v.LastMaintenanceDate, at)
	if days < 0 {
		return 0, fmt.Errorf("%w: vehicle %s last maintenance %s is after %s", model.ErrInvalidDate,
			v.ID, v.LastMaintenanceDate.Format(model.DateLayout), at.Format(model.DateLayout))
	}
	return days, nil
}

// RollingEfficiency computes mean and population standard deviation of the
// efficiency over rows with fuel consumed. Idle days carry a 0 sentinel and
// are skipped so they do not drag the average down.
func RollingEfficiency(window []model.FuelLogEntry) EfficiencyStats {
	vals := make([]float64, 0, len(window))
	for _, e := range window {
		if !e.Active() {
			continue
		}
		vals = append(vals, e.FuelEfficiency)
	}
	if len(vals) == 0 {
		return EfficiencyStats{}
	}
	mean, std := stat.PopMeanStdDev(vals, nil)
	return EfficiencyStats{ActiveDays: len(vals), Mean: mean, StdDev: std}
}
