package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `http:
  address: ":9000"
  placeholder_unknown: true
store:
  driver: "sqlite"
  path: "/tmp/fleet.db"
engine:
  default_policy: "schedule"
  window_days: 21
  retrain_interval_minutes: 60
  maintenance:
    interval:
      intervals:
        truck:
          miles: 6000
          days: 100
  anomaly:
    contamination: 0.05
metrics:
  sinks:
    - type: "nop"
alerts:
  enabled: true
  dedup_minutes: 60
  publisher:
    type: "mqtt"
    conf:
      broker: "tcp://localhost:1883"
      qos: 1
sentry:
  dsn: ""
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTP.Address)
	assert.True(t, cfg.HTTP.PlaceholderUnknown)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "schedule", cfg.Engine.DefaultPolicy)
	assert.Equal(t, 21, cfg.Engine.WindowDays)
	assert.Equal(t, 60, cfg.Engine.RetrainIntervalMinutes)
	assert.Equal(t, 6000, cfg.Engine.Maintenance.Interval.Intervals["truck"].Miles)
	assert.Equal(t, 4000, cfg.Engine.Maintenance.Interval.Intervals["bus"].Miles)
	assert.Equal(t, 0.05, cfg.Engine.Anomaly.Contamination)
	assert.Equal(t, 100, cfg.Engine.Anomaly.Trees)
	assert.Equal(t, 7, cfg.Reports.TrendDays)
	require.Len(t, cfg.Metrics.Sinks, 1)
	assert.Equal(t, "nop", cfg.Metrics.Sinks[0].Type)
	assert.Equal(t, "mqtt", cfg.Alerts.Publisher.Type)
	assert.Equal(t, "tcp://localhost:1883", cfg.Alerts.Publisher.Conf["broker"])
	assert.Equal(t, "memory", cfg.Alerts.Deduper)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("K_HTTP__ADDRESS", ":7070")
	t.Setenv("K_STORE__DRIVER", "memory")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Address)
	assert.Equal(t, "interval", cfg.Engine.DefaultPolicy)
	assert.Equal(t, "prometheus", cfg.Metrics.Sinks[0].Type)
	assert.Equal(t, "memory", cfg.Alerts.Publisher.Type)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("engine:\n  default_policy: hybrid\n"), 0o644))
	_, err := Load(bad)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "config.toml"))
	assert.Error(t, err)

	lvl := filepath.Join(dir, "lvl.json")
	require.NoError(t, os.WriteFile(lvl, []byte(`{"logging":{"level":"loud"}}`), 0o644))
	_, err = Load(lvl)
	assert.Error(t, err)

	eff := filepath.Join(dir, "eff.yaml")
	require.NoError(t, os.WriteFile(eff, []byte("engine:\n  efficiency:\n    min_rows: -3\n"), 0o644))
	_, err = Load(eff)
	assert.Error(t, err)

	sink := filepath.Join(dir, "sink.yaml")
	require.NoError(t, os.WriteFile(sink, []byte("metrics:\n  sinks:\n    - conf:\n        namespace: x\n"), 0o644))
	_, err = Load(sink)
	assert.Error(t, err)
}
