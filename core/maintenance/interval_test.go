package maintenance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetcare/core/model"
)

var today = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

func defaultInterval(t *testing.T) *IntervalPolicy {
	t.Helper()
	p, err := NewIntervalPolicy(DefaultConfig().Interval)
	require.NoError(t, err)
	return p
}

func TestIntervalPolicy_TruckExample(t *testing.T) {
	p := defaultInterval(t)
	v := model.VehicleRecord{ID: "TRK-001", Type: model.VehicleTruck, Mileage: 45000, LastMaintenanceDate: today.AddDate(0, 0, -90)}
	a, err := p.Assess(v, today)
	require.NoError(t, err)
	assert.Equal(t, PolicyInterval, a.Policy)
	assert.Equal(t, 13500, a.Factors.MilesSinceMaintenance)
	assert.InDelta(t, 2.7, a.Factors.MileageRatio, 1e-9)
	assert.InDelta(t, 1.0, a.Factors.TimeRatio, 1e-9)
	assert.Equal(t, 1.0, a.RiskScore)
	assert.True(t, a.NeedsMaintenance)
	assert.Zero(t, a.DaysUntilMaintenance)
	assert.Zero(t, a.MilesUntilMaintenance)
	assert.Equal(t, today, a.RecommendedDate)
	assert.Equal(t, 45000, a.Factors.Mileage)
}

func TestIntervalPolicy_ThresholdBoundary(t *testing.T) {
	p := defaultInterval(t)
	// Van: 32 days * 150 = 4800 of 6000 miles.
	at := p.Score(model.VehicleVan, 32)
	assert.Equal(t, 0.8, at.RiskScore)
	assert.False(t, at.NeedsMaintenance)
	above := p.Score(model.VehicleVan, 33)
	assert.Greater(t, above.RiskScore, 0.8)
	assert.True(t, above.NeedsMaintenance)

	// Calendar dimension alone when no daily mileage is assumed.
	cfg := DefaultConfig().Interval
	cfg.DailyMiles = 0
	timeOnly, err := NewIntervalPolicy(cfg)
	require.NoError(t, err)
	assert.False(t, timeOnly.Score(model.VehicleTruck, 72).NeedsMaintenance)
	assert.True(t, timeOnly.Score(model.VehicleTruck, 73).NeedsMaintenance)
}

func TestIntervalPolicy_Monotonic(t *testing.T) {
	p := defaultInterval(t)
	for _, vt := range []model.VehicleType{model.VehicleTruck, model.VehicleVan, model.VehicleCar, model.VehicleBus} {
		prev := -1.0
		for d := 0; d <= 400; d++ {
			r := p.Score(vt, d).RiskScore
			assert.GreaterOrEqual(t, r, prev, "%s day %d", vt, d)
			assert.LessOrEqual(t, r, 1.0)
			prev = r
		}
	}
}

func TestIntervalPolicy_MileageDoesNotChangeRisk(t *testing.T) {
	p := defaultInterval(t)
	last := today.AddDate(0, 0, -20)
	prev := -1.0
	for _, m := range []int{0, 1000, 45000, 90000, 500000} {
		a, err := p.Assess(model.VehicleRecord{ID: "v", Type: model.VehicleCar, Mileage: m, LastMaintenanceDate: last}, today)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, a.RiskScore, prev)
		prev = a.RiskScore
	}
}

func TestIntervalPolicy_UnknownTypeFallsBackToTruck(t *testing.T) {
	p := defaultInterval(t)
	assert.Equal(t, p.Score(model.VehicleTruck, 10), p.Score("Tractor", 10))
}

func TestIntervalPolicy_Remaining(t *testing.T) {
	p := defaultInterval(t)
	a := p.Score(model.VehicleCar, 10)
	assert.Equal(t, 170, a.DaysUntilMaintenance)
	assert.Equal(t, 6000, a.MilesUntilMaintenance)
	assert.InDelta(t, 0.2, a.RiskScore, 1e-9)
	assert.False(t, a.NeedsMaintenance)
}

func TestIntervalPolicy_FutureLastMaintenance(t *testing.T) {
	p := defaultInterval(t)
	_, err := p.Assess(model.VehicleRecord{ID: "v", Type: model.VehicleBus, LastMaintenanceDate: today.AddDate(0, 0, 3)}, today)
	assert.True(t, errors.Is(err, model.ErrInvalidDate))
}

func TestNewIntervalTable_Errors(t *testing.T) {
	_, err := NewIntervalTable(IntervalConfig{Intervals: map[string]Interval{"plane": {1, 1}}, Fallback: "truck"})
	assert.Error(t, err)
	_, err = NewIntervalTable(IntervalConfig{Intervals: map[string]Interval{"van": {1, 1}}, Fallback: "truck"})
	assert.Error(t, err)
}
