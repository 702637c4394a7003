package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetcare/config"
	"github.com/kilianp07/fleetcare/core/factory"
	"github.com/kilianp07/fleetcare/core/fleet"
	"github.com/kilianp07/fleetcare/simulator"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	cfg.Alerts.Enabled = true
	cfg.SetDefaults()
	return cfg
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	gen, err := simulator.New(simulator.Config{Seed: 1})
	require.NoError(t, err)
	_, _, err = gen.Seed(context.Background(), svc.Store, time.Now())
	require.NoError(t, err)
	return svc
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestNew_RejectsNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNew_UnknownSink(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "carrier-pigeon"}}
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestService_Health(t *testing.T) {
	svc := newTestService(t)
	var body struct {
		Status string            `json:"status"`
		Models map[string]string `json:"models"`
	}
	require.Equal(t, http.StatusOK, get(t, svc.Handler(), "/health", &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "not_trained", body.Models["anomaly"])

	_, err := svc.Train(context.Background())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, get(t, svc.Handler(), "/health", &body))
	assert.Equal(t, "trained", body.Models["anomaly"])
	assert.Equal(t, "trained", body.Models["efficiency"])
}

func TestService_Routes(t *testing.T) {
	svc := newTestService(t)
	h := svc.Handler()

	var list []map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/api/vehicles", &list))
	assert.Len(t, list, 20)

	var summary map[string]any
	require.Equal(t, http.StatusOK, get(t, h, "/api/fleet-summary", &summary))
	assert.EqualValues(t, 100, summary["total_vehicles"])

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/vehicles/NOPE/maintenance", nil))
	assert.Equal(t, http.StatusOK, get(t, h, "/metrics", nil))
}

func TestService_ScoreAfterTraining(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Train(context.Background())
	require.NoError(t, err)

	vs, err := svc.Store.Vehicles(context.Background(), fleet.VehicleFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, vs, 1)
	ev, err := svc.Engine.ScoreVehicle(context.Background(), vs[0].ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, vs[0].ID, ev.VehicleID)
	assert.GreaterOrEqual(t, ev.RiskScore, 0.0)
}

func TestService_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Address = "127.0.0.1:0"
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
