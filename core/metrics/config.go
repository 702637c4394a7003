package metrics

import (
	"fmt"

	"github.com/kilianp07/fleetcare/core/factory"
)

// Config lists the sinks assessments, training passes, anomaly scans and
// alerts are recorded to. Types are "nop", "prometheus" and "influx".
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// Validate rejects sinks without a type.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink %d has no type", i)
		}
	}
	return nil
}
