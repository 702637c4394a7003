package metrics

import (
	"time"

	"github.com/kilianp07/fleetcare/core/model"
)

// AssessmentEvent is one maintenance evaluation of a vehicle.
type AssessmentEvent struct {
	VehicleID        string
	VehicleType      model.VehicleType
	Policy           string
	NeedsMaintenance bool
	RiskScore        float64
	// PredictedEfficiency is nil while the estimator is untrained.
	PredictedEfficiency *float64
	Time                time.Time
}

// MetricsSink records maintenance assessments for observability purposes.
type MetricsSink interface {
	RecordAssessment(ev AssessmentEvent) error
}

// TrainingEvent captures the outcome of one model training pass.
type TrainingEvent struct {
	Outcome  model.TrainingOutcome
	Duration time.Duration
	Time     time.Time
}

// TrainingRecorder records training passes.
type TrainingRecorder interface {
	RecordTraining(ev TrainingEvent) error
}

// AnomalyScanEvent summarises one fleet anomaly scan.
type AnomalyScanEvent struct {
	WindowDays int
	Scanned    int
	Results    []model.AnomalyResult
	Time       time.Time
}

// AnomalyRecorder records anomaly scans.
type AnomalyRecorder interface {
	RecordAnomalyScan(ev AnomalyScanEvent) error
}

// AlertEvent records an alert leaving the engine.
type AlertEvent struct {
	VehicleID  string
	Kind       string
	Suppressed bool
	Time       time.Time
}

// AlertRecorder records published and deduplicated alerts.
type AlertRecorder interface {
	RecordAlert(ev AlertEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordAssessment(AssessmentEvent) error   { return nil }
func (NopSink) RecordTraining(TrainingEvent) error       { return nil }
func (NopSink) RecordAnomalyScan(AnomalyScanEvent) error { return nil }
func (NopSink) RecordAlert(AlertEvent) error             { return nil }
