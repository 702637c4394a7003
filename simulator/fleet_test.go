package simulator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetcare/core/fleet"
	"github.com/kilianp07/fleetcare/core/model"
)

var today = time.Date(2025, 1, 20, 15, 4, 0, 0, time.UTC)

func TestFleet_Deterministic(t *testing.T) {
	a, err := New(Config{Seed: 7})
	require.NoError(t, err)
	b, err := New(Config{Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, a.Fleet(today), b.Fleet(today))
}

func TestFleet_Shape(t *testing.T) {
	g, err := New(Config{})
	require.NoError(t, err)
	vs := g.Fleet(today)
	require.Len(t, vs, 100)
	assert.Equal(t, "-001", vs[0].ID[3:])

	active := 0
	for _, v := range vs {
		require.NoError(t, v.Validate())
		assert.True(t, strings.HasPrefix(v.ID, prefixes[v.Type]), v.ID)
		assert.GreaterOrEqual(t, v.Mileage, 15000)
		assert.LessOrEqual(t, v.Mileage, 80000)
		base := BaseEfficiency[v.Type]
		assert.GreaterOrEqual(t, v.ReportedEfficiency, base-3)
		assert.LessOrEqual(t, v.ReportedEfficiency, base+5)
		age := model.DaysBetween(v.LastMaintenanceDate, model.Day(today))
		assert.GreaterOrEqual(t, age, 10)
		assert.LessOrEqual(t, age, 180)
		if v.Status == model.StatusActive {
			active++
		}
	}
	assert.InDelta(t, 85, active, 12)
}

func TestFuelLog_Rows(t *testing.T) {
	g, err := New(Config{Vehicles: 10, LoggedVehicles: 4, Days: 5})
	require.NoError(t, err)
	vs := g.Fleet(today)
	rows := g.FuelLog(vs, today)
	require.Len(t, rows, 20)
	for _, r := range rows {
		assert.Equal(t, model.Day(r.Date), r.Date)
		assert.False(t, r.Date.After(model.Day(today)))
		v := find(vs, r.VehicleID)
		if v.Status != model.StatusActive {
			assert.False(t, r.Active())
			continue
		}
		assert.GreaterOrEqual(t, r.DistanceTraveled, 100.0)
		assert.LessOrEqual(t, r.DistanceTraveled, 400.0)
		assert.InDelta(t, v.ReportedEfficiency, r.FuelEfficiency, 2.5)
	}
}

func TestSeed_WritesStore(t *testing.T) {
	g, err := New(Config{Vehicles: 20, LoggedVehicles: 10, Days: 30})
	require.NoError(t, err)
	s := fleet.NewMemoryStore()
	n, rows, err := g.Seed(context.Background(), s, today)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Equal(t, 300, rows)

	all, err := s.Vehicles(context.Background(), fleet.VehicleFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 20)
	entries, err := s.Entries(context.Background(), fleet.FuelQuery{})
	require.NoError(t, err)
	assert.Len(t, entries, 300)
}

func TestConfig_Validate(t *testing.T) {
	_, err := New(Config{Vehicles: 5, LoggedVehicles: 6})
	assert.Error(t, err)
	_, err = New(Config{Days: -1})
	assert.Error(t, err)
}

func find(vs []model.VehicleRecord, id string) model.VehicleRecord {
	for _, v := range vs {
		if v.ID == id {
			return v
		}
	}
	return model.VehicleRecord{}
}
