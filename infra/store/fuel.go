package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/kilianp07/fleetcare/core/fleet"
	"github.com/kilianp07/fleetcare/core/model"
)

// AppendFuel writes entries in one transaction. A row for an existing
// vehicle and day replaces it.
func (db *DB) AppendFuel(ctx context.Context, entries ...model.FuelLogEntry) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fuel append: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, db.Q(`INSERT INTO fuel_data
		(vehicle_id, date, fuel_consumed, distance_traveled, fuel_efficiency)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (vehicle_id, date) DO UPDATE SET
			fuel_consumed = excluded.fuel_consumed,
			distance_traveled = excluded.distance_traveled,
			fuel_efficiency = excluded.fuel_efficiency`))
	if err != nil {
		return fmt.Errorf("prepare fuel append: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if e.VehicleID == "" {
			return fmt.Errorf("fuel entry on %s: empty vehicle id", e.Date.Format(model.DateLayout))
		}
		if _, err := stmt.ExecContext(ctx, e.VehicleID, formatDay(e.Date), e.FuelConsumed, e.DistanceTraveled, e.FuelEfficiency); err != nil {
			return fmt.Errorf("append fuel %s %s: %w", e.VehicleID, formatDay(e.Date), err)
		}
	}
	return tx.Commit()
}

func (db *DB) Entries(ctx context.Context, q fleet.FuelQuery) ([]model.FuelLogEntry, error) {
	var where []string
	var args []any
	if q.VehicleID != "" {
		where = append(where, "vehicle_id = ?")
		args = append(args, q.VehicleID)
	}
	if !q.Since.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, formatDay(q.Since))
	}
	if !q.Until.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, formatDay(q.Until))
	}
	if q.ActiveOnly {
		where = append(where, "fuel_consumed > 0")
	}
	query := `SELECT vehicle_id, date, fuel_consumed, distance_traveled, fuel_efficiency FROM fuel_data`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, vehicle_id"

	rows, err := db.QueryContext(ctx, db.Q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query fuel log: %w", err)
	}
	defer rows.Close()
	res := make([]model.FuelLogEntry, 0)
	for rows.Next() {
		var e model.FuelLogEntry
		var day string
		if err := rows.Scan(&e.VehicleID, &day, &e.FuelConsumed, &e.DistanceTraveled, &e.FuelEfficiency); err != nil {
			return nil, err
		}
		if e.Date, err = model.ParseDate(day); err != nil {
			return nil, fmt.Errorf("fuel row %s: %w", e.VehicleID, err)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
