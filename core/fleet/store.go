// Package fleet defines the read and write contracts of the vehicle registry
// and the fuel log, an in-memory implementation, and the fleet-wide reports
// built on top of them.
package fleet

import (
	"context"
	"time"

	"github.com/kilianp07/fleetcare/core/model"
)

// VehicleFilter narrows a registry listing. Zero values disable a criterion.
type VehicleFilter struct {
	Status model.VehicleStatus
	// DueBefore keeps vehicles whose next maintenance is on or before this
	// day. Overdue vehicles match. Results are then ordered by due date.
	DueBefore time.Time
	Limit     int
}

// FuelQuery selects fuel log rows. Since and Until are inclusive days.
type FuelQuery struct {
	VehicleID  string
	Since      time.Time
	Until      time.Time
	ActiveOnly bool
}

// Registry is the read side of the vehicle registry.
type Registry interface {
	// Vehicle returns model.ErrVehicleNotFound for unknown ids.
	Vehicle(ctx context.Context, id string) (model.VehicleRecord, error)
	Vehicles(ctx context.Context, f VehicleFilter) ([]model.VehicleRecord, error)
}

// FuelLog is the read side of the fuel log. Rows are ordered by date then
// vehicle id.
type FuelLog interface {
	Entries(ctx context.Context, q FuelQuery) ([]model.FuelLogEntry, error)
}

// Writer loads registry rows and fuel log rows.
type Writer interface {
	UpsertVehicle(ctx context.Context, v model.VehicleRecord) error
	AppendFuel(ctx context.Context, entries ...model.FuelLogEntry) error
}

// Store bundles the registry, the fuel log and their write side.
type Store interface {
	Registry
	FuelLog
	Writer
}

// Window returns the inclusive query covering the days trailing at.
func Window(at time.Time, days int) FuelQuery {
	end := model.Day(at)
	return FuelQuery{Since: end.AddDate(0, 0, -days), Until: end}
}

// Match reports whether v passes the filter criteria other than Limit.
func (f VehicleFilter) Match(v model.VehicleRecord) bool {
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if !f.DueBefore.IsZero() {
		if v.NextMaintenanceDate.IsZero() || model.Day(v.NextMaintenanceDate).After(model.Day(f.DueBefore)) {
			return false
		}
	}
	return true
}

// Match reports whether e is selected by the query.
func (q FuelQuery) Match(e model.FuelLogEntry) bool {
	if q.VehicleID != "" && e.VehicleID != q.VehicleID {
		return false
	}
	d := model.Day(e.Date)
	if !q.Since.IsZero() && d.Before(model.Day(q.Since)) {
		return false
	}
	if !q.Until.IsZero() && d.After(model.Day(q.Until)) {
		return false
	}
	if q.ActiveOnly && !e.Active() {
		return false
	}
	return true
}
