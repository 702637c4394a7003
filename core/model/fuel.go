package model

import "time"

// FuelLogEntry is the fuel and distance record of one vehicle for one day.
// FuelEfficiency is distance/fuel, or 0 on days without activity.
type FuelLogEntry struct {
	VehicleID        string    `json:"vehicle_id"`
	Date             time.Time `json:"date"`
	FuelConsumed     float64   `json:"fuel_consumed"`
	DistanceTraveled float64   `json:"distance_traveled"`
	FuelEfficiency   float64   `json:"fuel_efficiency"`
}

// NewFuelLogEntry derives the efficiency from fuel and distance.
func NewFuelLogEntry(vehicleID string, date time.Time, fuel, distance float64) FuelLogEntry {
	e := FuelLogEntry{
		VehicleID:        vehicleID,
		Date:             Day(date),
		FuelConsumed:     fuel,
		DistanceTraveled: distance,
	}
	if fuel > 0 {
		e.FuelEfficiency = distance / fuel
	}
	return e
}

// Active reports whether the vehicle consumed fuel that day.
func (e FuelLogEntry) Active() bool { return e.FuelConsumed > 0 }
