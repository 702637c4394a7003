package maintenance

import (
	"fmt"

	"github.com/kilianp07/fleetcare/core/model"
)

// Interval is a service interval expressed in miles and days.
type Interval struct {
	Miles int `json:"miles"`
	Days  int `json:"days"`
}

// IntervalConfig configures the interval policy.
type IntervalConfig struct {
	// Intervals is keyed by vehicle type name (case-insensitive).
	Intervals map[string]Interval `json:"intervals"`
	// Fallback names the type whose interval applies to unknown types.
	Fallback string `json:"fallback"`
	// DailyMiles estimates miles driven per day since the last service.
	DailyMiles int `json:"daily_miles"`
	// Threshold is the risk above which maintenance is needed.
	Threshold float64 `json:"threshold"`
}

// ScheduleConfig configures the schedule policy.
type ScheduleConfig struct {
	MileageNorm   float64 `json:"mileage_norm"`
	MileageWeight float64 `json:"mileage_weight"`
	RecencyWeight float64 `json:"recency_weight"`
	HorizonDays   int     `json:"horizon_days"`
	Threshold     float64 `json:"threshold"`
	DueSoonDays   int     `json:"due_soon_days"`
	MinLeadDays   int     `json:"min_lead_days"`
}

// Config groups the settings of both policies.
type Config struct {
	Interval IntervalConfig `json:"interval"`
	Schedule ScheduleConfig `json:"schedule"`
}

// DefaultConfig returns the stock service intervals and thresholds.
func DefaultConfig() Config {
	return Config{
		Interval: IntervalConfig{
			Intervals: map[string]Interval{
				"truck": {Miles: 5000, Days: 90},
				"van":   {Miles: 6000, Days: 120},
				"car":   {Miles: 7500, Days: 180},
				"bus":   {Miles: 4000, Days: 60},
			},
			Fallback:   "truck",
			DailyMiles: 150,
			Threshold:  0.8,
		},
		Schedule: ScheduleConfig{
			MileageNorm:   50000,
			MileageWeight: 0.4,
			RecencyWeight: 0.6,
			HorizonDays:   30,
			Threshold:     0.7,
			DueSoonDays:   7,
			MinLeadDays:   7,
		},
	}
}

// SetDefaults fills zero values from DefaultConfig. Interval entries missing
// from the map are added; configured entries win.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.Interval.Intervals == nil {
		c.Interval.Intervals = map[string]Interval{}
	}
	for k, v := range d.Interval.Intervals {
		if _, ok := c.Interval.Intervals[k]; !ok {
			c.Interval.Intervals[k] = v
		}
	}
	if c.Interval.Fallback == "" {
		c.Interval.Fallback = d.Interval.Fallback
	}
	if c.Interval.DailyMiles == 0 {
		c.Interval.DailyMiles = d.Interval.DailyMiles
	}
	if c.Interval.Threshold == 0 {
		c.Interval.Threshold = d.Interval.Threshold
	}
	s := &c.Schedule
	if s.MileageNorm == 0 {
		s.MileageNorm = d.Schedule.MileageNorm
	}
	if s.MileageWeight == 0 && s.RecencyWeight == 0 {
		s.MileageWeight = d.Schedule.MileageWeight
		s.RecencyWeight = d.Schedule.RecencyWeight
	}
	if s.HorizonDays == 0 {
		s.HorizonDays = d.Schedule.HorizonDays
	}
	if s.Threshold == 0 {
		s.Threshold = d.Schedule.Threshold
	}
	if s.DueSoonDays == 0 {
		s.DueSoonDays = d.Schedule.DueSoonDays
	}
	if s.MinLeadDays == 0 {
		s.MinLeadDays = d.Schedule.MinLeadDays
	}
}

// Validate checks that intervals are positive and names are known types.
func (c Config) Validate() error {
	for name, iv := range c.Interval.Intervals {
		if _, err := model.ParseVehicleType(name); err != nil {
			return fmt.Errorf("interval table: %w", err)
		}
		if iv.Miles <= 0 || iv.Days <= 0 {
			return fmt.Errorf("interval table: %s interval must be positive", name)
		}
	}
	if _, err := model.ParseVehicleType(c.Interval.Fallback); err != nil {
		return fmt.Errorf("interval fallback: %w", err)
	}
	if c.Interval.DailyMiles < 0 {
		return fmt.Errorf("daily_miles must be non-negative")
	}
	if c.Schedule.MileageNorm <= 0 {
		return fmt.Errorf("schedule mileage_norm must be positive")
	}
	if c.Schedule.HorizonDays <= 0 {
		return fmt.Errorf("schedule horizon_days must be positive")
	}
	return nil
}
