package config

import (
	"fmt"

	"github.com/kilianp07/fleetcare/core/alerts"
	"github.com/kilianp07/fleetcare/core/factory"
	"github.com/kilianp07/fleetcare/infra/redis"
)

// AlertsConfig selects the alert publisher and the dedup backend.
type AlertsConfig struct {
	Enabled      bool   `json:"enabled"`
	DedupMinutes int    `json:"dedup_minutes"`
	Deduper      string `json:"deduper"`
	MinSeverity  string `json:"min_severity"`
	// Publisher is built through the alerts publisher registry
	// ("memory", "mqtt" or "redis").
	Publisher factory.ModuleConfig `json:"publisher"`
	// Redis is used by the "redis" deduper.
	Redis redis.Config `json:"redis"`
}

// Notifier returns the notifier settings.
func (c AlertsConfig) Notifier() alerts.Config {
	return alerts.Config{Enabled: c.Enabled, DedupMinutes: c.DedupMinutes, Deduper: c.Deduper, MinSeverity: c.MinSeverity}
}

// SetDefaults applies the notifier defaults and the memory publisher.
func (c *AlertsConfig) SetDefaults() {
	n := c.Notifier()
	n.SetDefaults()
	c.DedupMinutes, c.Deduper, c.MinSeverity = n.DedupMinutes, n.Deduper, n.MinSeverity
	if c.Publisher.Type == "" {
		c.Publisher.Type = "memory"
	}
	c.Redis.SetDefaults()
}

// Validate checks the notifier settings.
func (c AlertsConfig) Validate() error {
	if err := c.Notifier().Validate(); err != nil {
		return err
	}
	if c.Enabled && c.Deduper == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("alerts: redis deduper requires redis.addr")
	}
	return nil
}
