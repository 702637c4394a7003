package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOptions(Options{Component: "engine", Level: "debug", Out: &buf})
	l.With("vehicle_id", "TRK-001").Debugw("scored", map[string]any{"risk": 0.5})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "engine", line["component"])
	assert.Equal(t, "TRK-001", line["vehicle_id"])
	assert.Equal(t, 0.5, line["risk"])
	assert.Equal(t, "debug", line["level"])
}

func TestZerologLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOptions(Options{Component: "engine", Level: "warn", Out: &buf})
	l.Infof("hidden")
	l.Warnf("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Equal(t, 1, strings.Count(buf.String(), "shown"))

	buf.Reset()
	NewWithOptions(Options{Level: "bogus", Out: &buf}).Debugf("dropped")
	assert.Empty(t, buf.String())
}
