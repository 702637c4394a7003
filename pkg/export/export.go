// Package export writes maintenance due lists and anomaly reports as JSON or
// CSV for offline use.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/fleetcare/core/model"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat matches s case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// WriteDueList writes vehicles due for maintenance.
func WriteDueList(w io.Writer, f Format, vs []model.VehicleRecord) error {
	if f == FormatJSON {
		return json.NewEncoder(w).Encode(vs)
	}
	rows := make([][]string, len(vs))
	for i, v := range vs {
		rows[i] = []string{
			v.ID,
			string(v.Type),
			string(v.Status),
			strconv.Itoa(v.Mileage),
			formatDay(v),
		}
	}
	return writeCSV(w, []string{"vehicle_id", "type", "status", "mileage", "next_maintenance"}, rows)
}

// WriteAnomalies writes anomaly results.
func WriteAnomalies(w io.Writer, f Format, res []model.AnomalyResult) error {
	if f == FormatJSON {
		return json.NewEncoder(w).Encode(res)
	}
	rows := make([][]string, len(res))
	for i, r := range res {
		rows[i] = []string{
			r.VehicleID,
			r.Date.Format(model.DateLayout),
			strconv.FormatFloat(r.Score, 'f', 4, 64),
			string(r.Severity),
		}
	}
	return writeCSV(w, []string{"vehicle_id", "date", "score", "severity"}, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func formatDay(v model.VehicleRecord) string {
	if v.NextMaintenanceDate.IsZero() {
		return ""
	}
	return v.NextMaintenanceDate.Format(model.DateLayout)
}
