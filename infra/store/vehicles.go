package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/fleetcare/core/fleet"
	"github.com/kilianp07/fleetcare/core/model"
)

const vehicleSelectCols = `vehicle_id, type, status, mileage, fuel_efficiency, last_maintenance, next_maintenance`

func scanVehicle(row interface{ Scan(...any) error }) (model.VehicleRecord, error) {
	var v model.VehicleRecord
	var typ, status, last, next string
	if err := row.Scan(&v.ID, &typ, &status, &v.Mileage, &v.ReportedEfficiency, &last, &next); err != nil {
		return model.VehicleRecord{}, err
	}
	v.Type = model.VehicleType(typ)
	v.Status = model.VehicleStatus(status)
	var err error
	if v.LastMaintenanceDate, err = parseDay(last); err != nil {
		return model.VehicleRecord{}, fmt.Errorf("vehicle %s last_maintenance: %w", v.ID, err)
	}
	if v.NextMaintenanceDate, err = parseDay(next); err != nil {
		return model.VehicleRecord{}, fmt.Errorf("vehicle %s next_maintenance: %w", v.ID, err)
	}
	return v, nil
}

func (db *DB) UpsertVehicle(ctx context.Context, v model.VehicleRecord) error {
	if err := v.Validate(); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, db.Q(`INSERT INTO vehicles (`+vehicleSelectCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (vehicle_id) DO UPDATE SET
			type = excluded.type,
			status = excluded.status,
			mileage = excluded.mileage,
			fuel_efficiency = excluded.fuel_efficiency,
			last_maintenance = excluded.last_maintenance,
			next_maintenance = excluded.next_maintenance`),
		v.ID, string(v.Type), string(v.Status), v.Mileage, v.ReportedEfficiency,
		formatDay(v.LastMaintenanceDate), formatDay(v.NextMaintenanceDate))
	if err != nil {
		return fmt.Errorf("upsert vehicle %s: %w", v.ID, err)
	}
	return nil
}

func (db *DB) Vehicle(ctx context.Context, id string) (model.VehicleRecord, error) {
	row := db.QueryRowContext(ctx, db.Q(`SELECT `+vehicleSelectCols+` FROM vehicles WHERE vehicle_id = ?`), id)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.VehicleRecord{}, fmt.Errorf("%w: %s", model.ErrVehicleNotFound, id)
	}
	if err != nil {
		return model.VehicleRecord{}, fmt.Errorf("get vehicle %s: %w", id, err)
	}
	return v, nil
}

func (db *DB) Vehicles(ctx context.Context, f fleet.VehicleFilter) ([]model.VehicleRecord, error) {
	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	order := "vehicle_id"
	if !f.DueBefore.IsZero() {
		where = append(where, "next_maintenance <> ''", "next_maintenance <= ?")
		args = append(args, formatDay(f.DueBefore))
		order = "next_maintenance, vehicle_id"
	}
	q := `SELECT ` + vehicleSelectCols + ` FROM vehicles`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + order
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.QueryContext(ctx, db.Q(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()
	res := make([]model.VehicleRecord, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return model.Day(t).Format(model.DateLayout)
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return model.ParseDate(s)
}
