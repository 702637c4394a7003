package simulator

import "fmt"

// Config holds parameters for the seed generator.
type Config struct {
	Vehicles int `json:"vehicles"`
	// LoggedVehicles receive fuel rows; the first ones of the fleet are used.
	LoggedVehicles int   `json:"logged_vehicles"`
	Days           int   `json:"days"`
	Seed           int64 `json:"seed"`
}

// SetDefaults generates 100 vehicles with 30 days of fuel rows for the
// first 50.
func (c *Config) SetDefaults() {
	if c.Vehicles == 0 {
		c.Vehicles = 100
	}
	if c.LoggedVehicles == 0 {
		c.LoggedVehicles = 50
	}
	if c.Days == 0 {
		c.Days = 30
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
}

// Validate checks the sizes.
func (c Config) Validate() error {
	if c.Vehicles <= 0 {
		return fmt.Errorf("simulator: vehicles must be positive")
	}
	if c.LoggedVehicles < 0 || c.LoggedVehicles > c.Vehicles {
		return fmt.Errorf("simulator: logged_vehicles must be between 0 and %d", c.Vehicles)
	}
	if c.Days < 0 {
		return fmt.Errorf("simulator: days must be non-negative")
	}
	return nil
}
