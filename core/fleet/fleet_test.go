package fleet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetcare/core/model"
)

var today = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

func seeded(t *testing.T) *MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore()
	vehicles := []model.VehicleRecord{
		{ID: "TRK-001", Type: model.VehicleTruck, Status: model.StatusActive, Mileage: 45000, ReportedEfficiency: 28.5,
			LastMaintenanceDate: today.AddDate(0, 0, -80), NextMaintenanceDate: today.AddDate(0, 0, 26)},
		{ID: "VAN-002", Type: model.VehicleVan, Status: model.StatusActive, Mileage: 38000, ReportedEfficiency: 31.5,
			LastMaintenanceDate: today.AddDate(0, 0, -100), NextMaintenanceDate: today.AddDate(0, 0, 5)},
		{ID: "TRK-003", Type: model.VehicleTruck, Status: model.StatusMaintenance, Mileage: 52000, ReportedEfficiency: 27.8,
			LastMaintenanceDate: today.AddDate(0, 0, -120), NextMaintenanceDate: today.AddDate(0, 0, -2)},
		{ID: "CAR-004", Type: model.VehicleCar, Status: model.StatusInactive, Mileage: 28000, ReportedEfficiency: 35.1,
			LastMaintenanceDate: today.AddDate(0, 0, -10), NextMaintenanceDate: today.AddDate(0, 0, 12)},
	}
	for _, v := range vehicles {
		require.NoError(t, s.UpsertVehicle(ctx, v))
	}
	return s
}

func TestMemoryStore_VehicleNotFound(t *testing.T) {
	s := seeded(t)
	_, err := s.Vehicle(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, model.ErrVehicleNotFound))

	v, err := s.Vehicle(context.Background(), "VAN-002")
	require.NoError(t, err)
	assert.Equal(t, 38000, v.Mileage)
}

func TestMemoryStore_UpsertValidates(t *testing.T) {
	s := NewMemoryStore()
	err := s.UpsertVehicle(context.Background(), model.VehicleRecord{ID: "X", Mileage: -1})
	assert.Error(t, err)
}

func TestMemoryStore_Filters(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	all, err := s.Vehicles(ctx, VehicleFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"CAR-004", "TRK-001", "TRK-003", "VAN-002"}, ids(all))

	active, err := s.Vehicles(ctx, VehicleFilter{Status: model.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, []string{"TRK-001", "VAN-002"}, ids(active))

	due, err := s.Vehicles(ctx, VehicleFilter{DueBefore: today.AddDate(0, 0, 14)})
	require.NoError(t, err)
	assert.Equal(t, []string{"TRK-003", "VAN-002", "CAR-004"}, ids(due))

	limited, err := s.Vehicles(ctx, VehicleFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMemoryStore_Entries(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.AppendFuel(ctx,
		model.NewFuelLogEntry("B", today, 10, 300),
		model.NewFuelLogEntry("A", today, 0, 0),
		model.NewFuelLogEntry("A", today.AddDate(0, 0, -1), 12, 300),
		model.NewFuelLogEntry("A", today.AddDate(0, 0, -40), 12, 300),
	))

	rows, err := s.Entries(ctx, Window(today, 30))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, today.AddDate(0, 0, -1), rows[0].Date)
	assert.Equal(t, "A", rows[1].VehicleID)
	assert.Equal(t, "B", rows[2].VehicleID)

	q := Window(today, 30)
	q.VehicleID = "A"
	q.ActiveOnly = true
	rows, err = s.Entries(ctx, q)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 25.0, rows[0].FuelEfficiency, 1e-9)
}

func TestMemoryStore_AppendReplacesSameDay(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.AppendFuel(ctx, model.NewFuelLogEntry("A", today, 10, 100)))
	require.NoError(t, s.AppendFuel(ctx, model.NewFuelLogEntry("A", today.Add(3*time.Hour), 10, 200)))
	rows, _ := s.Entries(ctx, FuelQuery{})
	require.Len(t, rows, 1)
	assert.Equal(t, 200.0, rows[0].DistanceTraveled)

	assert.Error(t, s.AppendFuel(ctx, model.FuelLogEntry{Date: today}))
}

func TestReporter_Summary(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	r := NewReporter(s, s, ReportConfig{})

	sum, err := r.Summary(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.TotalVehicles)
	assert.Equal(t, 2, sum.ActiveVehicles)
	assert.Equal(t, 2, sum.MaintenanceDue)
	assert.Equal(t, "registry", sum.EfficiencySource)
	assert.Equal(t, 30.0, sum.FuelEfficiency)

	require.NoError(t, s.AppendFuel(ctx,
		model.NewFuelLogEntry("TRK-001", today, 0, 0),
		model.NewFuelLogEntry("TRK-001", today.AddDate(0, 0, -1), 10, 280),
		model.NewFuelLogEntry("VAN-002", today.AddDate(0, 0, -2), 10, 300),
	))
	sum, err = r.Summary(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, "fuel_log", sum.EfficiencySource)
	assert.Equal(t, 29.0, sum.FuelEfficiency)
}

func TestReporter_Trends(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.AppendFuel(ctx,
		model.NewFuelLogEntry("A", today, 10, 300),
		model.NewFuelLogEntry("B", today, 0, 0),
		model.NewFuelLogEntry("A", today.AddDate(0, 0, -1), 12, 300),
		model.NewFuelLogEntry("B", today.AddDate(0, 0, -1), 8, 240),
		model.NewFuelLogEntry("A", today.AddDate(0, 0, -9), 8, 240),
	))
	r := NewReporter(s, s, ReportConfig{})
	pts, err := r.Trends(ctx, today, 0)
	require.NoError(t, err)
	require.Len(t, pts, 2)

	assert.Equal(t, today.AddDate(0, 0, -1), pts[0].Date)
	assert.Equal(t, 10.0, pts[0].AvgFuel)
	assert.Equal(t, 27.5, pts[0].AvgEfficiency)
	assert.Equal(t, 2, pts[0].Vehicles)

	assert.Equal(t, today, pts[1].Date)
	assert.Equal(t, 5.0, pts[1].AvgFuel)
	assert.Equal(t, 30.0, pts[1].AvgEfficiency)
}

func TestReporter_DueList(t *testing.T) {
	s := seeded(t)
	r := NewReporter(s, s, ReportConfig{})
	due, err := r.DueList(context.Background(), today, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"TRK-003", "VAN-002", "CAR-004"}, ids(due))

	due, err = r.DueList(context.Background(), today, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"TRK-003", "VAN-002"}, ids(due))
}

func ids(vs []model.VehicleRecord) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}
