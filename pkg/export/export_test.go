package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetcare/core/model"
)

var day = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteDueListCSV(t *testing.T) {
	var buf bytes.Buffer
	vs := []model.VehicleRecord{
		{ID: "TRK-001", Type: model.VehicleTruck, Status: model.StatusActive, Mileage: 45000, NextMaintenanceDate: day},
		{ID: "VAN-002", Type: model.VehicleVan, Status: model.StatusMaintenance, Mileage: 38000},
	}
	require.NoError(t, WriteDueList(&buf, FormatCSV, vs))
	want := "vehicle_id,type,status,mileage,next_maintenance\n" +
		"TRK-001,Truck,active,45000,2025-01-20\n" +
		"VAN-002,Van,maintenance,38000,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteAnomalies(t *testing.T) {
	res := []model.AnomalyResult{{VehicleID: "BUS-007", Date: day, Score: -0.61234, Severity: model.SeverityHigh}}

	var buf bytes.Buffer
	require.NoError(t, WriteAnomalies(&buf, FormatCSV, res))
	assert.Equal(t, "vehicle_id,date,score,severity\nBUS-007,2025-01-20,-0.6123,high\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteAnomalies(&buf, FormatJSON, res))
	var got []model.AnomalyResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, res, got)
}
