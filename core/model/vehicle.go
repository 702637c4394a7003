package model

import (
	"fmt"
	"strings"
	"time"
)

// VehicleType is the fleet category of a vehicle.
type VehicleType string

const (
	VehicleTruck VehicleType = "Truck"
	VehicleVan   VehicleType = "Van"
	VehicleCar   VehicleType = "Car"
	VehicleBus   VehicleType = "Bus"
)

// ParseVehicleType matches s case-insensitively against the known types.
func ParseVehicleType(s string) (VehicleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "truck":
		return VehicleTruck, nil
	case "van":
		return VehicleVan, nil
	case "car":
		return VehicleCar, nil
	case "bus":
		return VehicleBus, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVehicleType, s)
}

// VehicleStatus is the operational state reported by fleet operations.
type VehicleStatus string

const (
	StatusActive      VehicleStatus = "active"
	StatusMaintenance VehicleStatus = "maintenance"
	StatusInactive    VehicleStatus = "inactive"
)

// VehicleRecord is one row of the vehicle registry. The engine treats it as
// read-only input; mileage and maintenance dates are owned upstream.
type VehicleRecord struct {
	ID                  string        `json:"vehicle_id"`
	Type                VehicleType   `json:"type"`
	Status              VehicleStatus `json:"status"`
	Mileage             int           `json:"mileage"`
	ReportedEfficiency  float64       `json:"fuel_efficiency"`
	LastMaintenanceDate time.Time     `json:"last_maintenance"`
	NextMaintenanceDate time.Time     `json:"next_maintenance"`
}

// Validate checks the invariants the registry is expected to hold.
func (v VehicleRecord) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id is required")
	}
	if v.Mileage < 0 {
		return fmt.Errorf("vehicle %s: mileage must be non-negative", v.ID)
	}
	if !v.NextMaintenanceDate.IsZero() && v.NextMaintenanceDate.Before(v.LastMaintenanceDate) {
		return fmt.Errorf("vehicle %s: next maintenance before last maintenance", v.ID)
	}
	return nil
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
// The result is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// DateLayout is the calendar date format used by the registry and the API.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return t, nil
}
