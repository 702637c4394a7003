// Package alerts turns engine findings into notifications. A Notifier
// suppresses repeats per vehicle and kind for a configurable period and
// hands the rest to a Publisher.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/fleetcare/core/factory"
	"github.com/kilianp07/fleetcare/core/model"
)

// Kind classifies an alert.
type Kind string

const (
	KindMaintenanceDue Kind = "maintenance_due"
	KindFuelAnomaly    Kind = "fuel_anomaly"
)

// Alert is the payload published for one finding.
type Alert struct {
	ID              string         `json:"id"`
	VehicleID       string         `json:"vehicle_id"`
	Kind            Kind           `json:"kind"`
	Severity        model.Severity `json:"severity,omitempty"`
	Score           float64        `json:"score"`
	RecommendedDate string         `json:"recommended_date,omitempty"`
	Message         string         `json:"message"`
	CreatedAt       time.Time      `json:"created_at"`
}

// New returns an alert with a fresh id.
func New(vehicleID string, kind Kind, at time.Time) Alert {
	return Alert{ID: uuid.NewString(), VehicleID: vehicleID, Kind: kind, CreatedAt: at}
}

// Key identifies the alert for deduplication.
func (a Alert) Key() string {
	return fmt.Sprintf("alert:%s:%s", a.VehicleID, a.Kind)
}

// Publisher delivers alerts to the outside world.
type Publisher interface {
	Publish(ctx context.Context, a Alert) error
}

// Deduper remembers which keys were recently alerted.
type Deduper interface {
	// Claim records key for ttl and reports whether it was free.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

var publisherRegistry = factory.NewRegistry[Publisher]()

// RegisterPublisher adds a publisher factory identified by name.
func RegisterPublisher(name string, f factory.Factory[Publisher]) error {
	return publisherRegistry.Register(name, f)
}

// NewPublisher creates the Publisher described by cfg.
func NewPublisher(cfg factory.ModuleConfig) (Publisher, error) {
	return publisherRegistry.Create(cfg)
}
