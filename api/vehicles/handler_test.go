package vehicles

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetcare/core/fleet"
	"github.com/kilianp07/fleetcare/core/model"
	"github.com/kilianp07/fleetcare/core/prediction"
)

var today = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

func newRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	ctx := context.Background()
	s := fleet.NewMemoryStore()
	for _, v := range []model.VehicleRecord{
		{ID: "TRK-001", Type: model.VehicleTruck, Status: model.StatusActive, Mileage: 45000, ReportedEfficiency: 28.5,
			LastMaintenanceDate: today.AddDate(0, 0, -90), NextMaintenanceDate: today.AddDate(0, 0, 26)},
		{ID: "VAN-002", Type: model.VehicleVan, Status: model.StatusActive, Mileage: 50000, ReportedEfficiency: 31.5,
			LastMaintenanceDate: today.AddDate(0, 0, -100), NextMaintenanceDate: today.AddDate(0, 0, 15)},
		{ID: "TRK-003", Type: model.VehicleTruck, Status: model.StatusMaintenance, Mileage: 52000, ReportedEfficiency: 27.8,
			LastMaintenanceDate: today.AddDate(0, 0, -120), NextMaintenanceDate: today.AddDate(0, 0, -2)},
	} {
		require.NoError(t, s.UpsertVehicle(ctx, v))
	}
	eng, err := prediction.NewEngine(prediction.Config{}, s, s, nil, nil, nil)
	require.NoError(t, err)
	if opts.Now == nil {
		opts.Now = func() time.Time { return today }
	}
	r := chi.NewRouter()
	NewHandler(s, eng, opts).Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestList(t *testing.T) {
	h := newRouter(t, Options{})
	rr := do(t, h, http.MethodGet, "/api/vehicles", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []vehicleView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, "TRK-001", out[0].ID)
	assert.Equal(t, "2025-02-15", out[0].NextMaintenance)

	rr = do(t, h, http.MethodGet, "/api/vehicles?status=active&limit=1", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "active", out[0].Status)

	rr = do(t, h, http.MethodGet, "/api/vehicles?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGet_NotFound(t *testing.T) {
	h := newRouter(t, Options{})
	rr := do(t, h, http.MethodGet, "/api/vehicles/NOPE-999", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/vehicles/VAN-002", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMaintenance(t *testing.T) {
	h := newRouter(t, Options{})
	rr := do(t, h, http.MethodGet, "/api/vehicles/TRK-001/maintenance", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var ev evaluationView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ev))
	assert.Equal(t, "interval", ev.Policy)
	assert.True(t, ev.NeedsMaintenance)
	assert.Equal(t, 1.0, ev.RiskScore)
	assert.Equal(t, "2025-01-20", ev.RecommendedDate)
	assert.Equal(t, 90, ev.RiskFactors.DaysSinceMaintenance)
	assert.Nil(t, ev.PredictedEfficiency)

	rr = do(t, h, http.MethodGet, "/api/vehicles/VAN-002/maintenance?policy=schedule", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ev))
	assert.Equal(t, "schedule", ev.Policy)
	assert.Equal(t, 0.7, ev.RiskScore)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/vehicles/TRK-001/maintenance?policy=hybrid", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/vehicles/TRK-001/maintenance?date=20-01-2025", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodGet, "/api/vehicles/TRK-001/maintenance?date=2024-10-01", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/vehicles/NOPE/maintenance", "").Code)
}

func TestPredict(t *testing.T) {
	h := newRouter(t, Options{})
	rr := do(t, h, http.MethodPost, "/api/predict-maintenance", `{"vehicle_id":"TRK-003"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var out predictResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.True(t, out.NeedsMaintenance)
	assert.Equal(t, 0.95, out.Probability)
	assert.Equal(t, "2025-01-27", out.RecommendedDate)
	require.NotNil(t, out.RiskFactors)
	assert.Equal(t, -2, out.RiskFactors.DaysUntilScheduled)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/predict-maintenance", `{"vehicle_id":"NOPE-999"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/predict-maintenance", `{}`).Code)
}

func TestPredict_Placeholder(t *testing.T) {
	h := newRouter(t, Options{PlaceholderUnknown: true, Seed: 1})
	rr := do(t, h, http.MethodPost, "/api/predict-maintenance", `{"vehicle_id":"NOPE-999"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var out predictResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.True(t, out.Placeholder)
	assert.Equal(t, "NOPE-999", out.VehicleID)
	assert.GreaterOrEqual(t, out.Probability, 0.3)
	assert.LessOrEqual(t, out.Probability, 0.9)
	assert.Nil(t, out.RiskFactors)
}

func TestAlerts(t *testing.T) {
	h := newRouter(t, Options{})
	rr := do(t, h, http.MethodGet, "/api/maintenance-alerts", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []alertView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "TRK-003", out[0].VehicleID)
	assert.Equal(t, -2, out[0].DaysUntil)

	rr = do(t, h, http.MethodGet, "/api/maintenance-alerts?within_days=30", "")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, []string{"TRK-003", "VAN-002", "TRK-001"}, []string{out[0].VehicleID, out[1].VehicleID, out[2].VehicleID})
}
