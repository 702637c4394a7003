package prediction

import (
	"fmt"

	"github.com/kilianp07/fleetcare/core/anomaly"
	"github.com/kilianp07/fleetcare/core/efficiency"
	"github.com/kilianp07/fleetcare/core/maintenance"
)

// Config groups the engine settings.
type Config struct {
	// DefaultPolicy is used by ScoreVehicle. Empty selects "interval".
	DefaultPolicy string `json:"default_policy"`
	// WindowDays is the trailing fuel window used for training, observed
	// efficiency and anomaly scans when callers pass 0.
	WindowDays int `json:"window_days"`
	// RetrainIntervalMinutes enables periodic retraining when positive.
	RetrainIntervalMinutes int                `json:"retrain_interval_minutes"`
	Maintenance            maintenance.Config `json:"maintenance"`
	Efficiency             efficiency.Config  `json:"efficiency"`
	Anomaly                anomaly.Config     `json:"anomaly"`
}

// SetDefaults applies a 30 day window and the defaults of every model.
func (c *Config) SetDefaults() {
	if c.DefaultPolicy == "" {
		c.DefaultPolicy = string(maintenance.PolicyInterval)
	}
	if c.WindowDays == 0 {
		c.WindowDays = 30
	}
	c.Maintenance.SetDefaults()
	c.Efficiency.SetDefaults()
	c.Anomaly.SetDefaults()
}

// Validate checks the engine settings and those of every model.
func (c Config) Validate() error {
	if _, err := maintenance.ParsePolicyName(c.DefaultPolicy); err != nil {
		return err
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("engine: window_days must be positive")
	}
	if c.RetrainIntervalMinutes < 0 {
		return fmt.Errorf("engine: retrain_interval_minutes must be non-negative")
	}
	if err := c.Maintenance.Validate(); err != nil {
		return err
	}
	if err := c.Efficiency.Validate(); err != nil {
		return err
	}
	return c.Anomaly.Validate()
}
