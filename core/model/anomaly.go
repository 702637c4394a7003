package model

import "time"

// Severity grades a detected anomaly.
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AnomalyResult flags one fuel log row whose consumption pattern deviates
// from the fleet. Score is signed; more negative means more anomalous.
type AnomalyResult struct {
	VehicleID string    `json:"vehicle_id"`
	Date      time.Time `json:"date"`
	Score     float64   `json:"anomaly_score"`
	Severity  Severity  `json:"severity"`
}
