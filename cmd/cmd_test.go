package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSeedAndExport(t *testing.T) {
	t.Setenv("K_STORE__DRIVER", "sqlite")
	t.Setenv("K_STORE__PATH", filepath.Join(t.TempDir(), "fleet.db"))

	out, err := execute(t, "seed", "--vehicles", "12", "--logged", "6", "--days", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 12 vehicles and 18 fuel rows into sqlite")

	out, err = execute(t, "alerts", "--format", "csv", "--within-days", "400")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "vehicle_id,type,status,mileage,next_maintenance", lines[0])
	assert.Len(t, lines, 13)
}

func TestSeedRejectsMemoryStore(t *testing.T) {
	t.Setenv("K_STORE__DRIVER", "memory")
	_, err := execute(t, "seed")
	assert.Error(t, err)
}

func TestScoreRejectsBadDate(t *testing.T) {
	_, err := execute(t, "score", "TRK-001", "--date", "20-01-2025")
	assert.Error(t, err)
	scoreDate = ""
}
