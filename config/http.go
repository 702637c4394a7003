package config

import "fmt"

// HTTPConfig defines the API server settings.
type HTTPConfig struct {
	Address string `json:"address"`
	// PlaceholderUnknown answers predict-maintenance for unknown vehicles
	// with a random placeholder instead of 404.
	PlaceholderUnknown  bool `json:"placeholder_unknown"`
	ReadTimeoutSeconds  int  `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int  `json:"write_timeout_seconds"`
}

// SetDefaults listens on :8000 with 10 second timeouts.
func (c *HTTPConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8000"
	}
	if c.ReadTimeoutSeconds == 0 {
		c.ReadTimeoutSeconds = 10
	}
	if c.WriteTimeoutSeconds == 0 {
		c.WriteTimeoutSeconds = 30
	}
}

// Validate checks mandatory fields.
func (c HTTPConfig) Validate() error {
	if c.ReadTimeoutSeconds < 0 || c.WriteTimeoutSeconds < 0 {
		return fmt.Errorf("http: timeouts must be positive")
	}
	return nil
}
