package fleet

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleetcare/core/model"
)

// ReportConfig sets the horizons of the fleet reports.
type ReportConfig struct {
	// EfficiencyDays is the trailing window of the summary efficiency.
	EfficiencyDays int `json:"efficiency_days"`
	// SummaryDueDays counts vehicles due within this many days.
	SummaryDueDays int `json:"summary_due_days"`
	// AlertDays is the default horizon of the due list.
	AlertDays int `json:"alert_days"`
	// TrendDays is the default length of the fuel trend.
	TrendDays int `json:"trend_days"`
}

// SetDefaults applies 7 days for the summary and trend, 14 for the due list.
func (c *ReportConfig) SetDefaults() {
	if c.EfficiencyDays == 0 {
		c.EfficiencyDays = 7
	}
	if c.SummaryDueDays == 0 {
		c.SummaryDueDays = 7
	}
	if c.AlertDays == 0 {
		c.AlertDays = 14
	}
	if c.TrendDays == 0 {
		c.TrendDays = 7
	}
}

// Summary is the fleet overview.
type Summary struct {
	TotalVehicles  int     `json:"total_vehicles"`
	ActiveVehicles int     `json:"active_vehicles"`
	FuelEfficiency float64 `json:"fuel_efficiency"`
	// EfficiencySource is "fuel_log" or "registry" when no active fuel
	// rows fall in the window.
	EfficiencySource string    `json:"efficiency_source"`
	MaintenanceDue   int       `json:"maintenance_due"`
	AsOf             time.Time `json:"as_of"`
}

// TrendPoint aggregates one day of the fuel log.
type TrendPoint struct {
	Date          time.Time `json:"date"`
	AvgFuel       float64   `json:"avg_fuel"`
	AvgEfficiency float64   `json:"avg_efficiency"`
	Vehicles      int       `json:"vehicles"`
}

// Reporter builds fleet-wide reports from the registry and the fuel log.
type Reporter struct {
	reg Registry
	log FuelLog
	cfg ReportConfig
}

// NewReporter returns a Reporter over reg and log.
func NewReporter(reg Registry, log FuelLog, cfg ReportConfig) *Reporter {
	cfg.SetDefaults()
	return &Reporter{reg: reg, log: log, cfg: cfg}
}

// Config returns the effective report configuration.
func (r *Reporter) Config() ReportConfig { return r.cfg }

// Summary counts vehicles and averages the efficiency of active fuel rows
// over the trailing window.
func (r *Reporter) Summary(ctx context.Context, at time.Time) (Summary, error) {
	all, err := r.reg.Vehicles(ctx, VehicleFilter{})
	if err != nil {
		return Summary{}, err
	}
	s := Summary{TotalVehicles: len(all), AsOf: model.Day(at)}
	due := model.Day(at).AddDate(0, 0, r.cfg.SummaryDueDays)
	var reported []float64
	for _, v := range all {
		if v.Status == model.StatusActive {
			s.ActiveVehicles++
			reported = append(reported, v.ReportedEfficiency)
		}
		if !v.NextMaintenanceDate.IsZero() && !model.Day(v.NextMaintenanceDate).After(due) {
			s.MaintenanceDue++
		}
	}

	q := Window(at, r.cfg.EfficiencyDays)
	q.ActiveOnly = true
	rows, err := r.log.Entries(ctx, q)
	if err != nil {
		return Summary{}, err
	}
	switch {
	case len(rows) > 0:
		eff := make([]float64, len(rows))
		for i, e := range rows {
			eff[i] = e.FuelEfficiency
		}
		s.FuelEfficiency = round1(stat.Mean(eff, nil))
		s.EfficiencySource = "fuel_log"
	case len(reported) > 0:
		s.FuelEfficiency = round1(stat.Mean(reported, nil))
		s.EfficiencySource = "registry"
	}
	return s, nil
}

// Trends returns one point per logged day over the trailing days, oldest
// first. Fuel is averaged over every row; efficiency over active rows only.
func (r *Reporter) Trends(ctx context.Context, at time.Time, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = r.cfg.TrendDays
	}
	rows, err := r.log.Entries(ctx, Window(at, days))
	if err != nil {
		return nil, err
	}
	points := make([]TrendPoint, 0, days+1)
	var fuel, eff []float64
	flush := func(d time.Time, n int) {
		p := TrendPoint{Date: d, AvgFuel: round1(stat.Mean(fuel, nil)), Vehicles: n}
		if len(eff) > 0 {
			p.AvgEfficiency = round1(stat.Mean(eff, nil))
		}
		points = append(points, p)
	}
	var cur time.Time
	n := 0
	for _, e := range rows {
		if !e.Date.Equal(cur) && n > 0 {
			flush(cur, n)
			fuel, eff, n = fuel[:0], eff[:0], 0
		}
		cur = e.Date
		n++
		fuel = append(fuel, e.FuelConsumed)
		if e.Active() {
			eff = append(eff, e.FuelEfficiency)
		}
	}
	if n > 0 {
		flush(cur, n)
	}
	return points, nil
}

// DueList returns vehicles whose next maintenance falls within days of at,
// overdue ones included, soonest first.
func (r *Reporter) DueList(ctx context.Context, at time.Time, days int) ([]model.VehicleRecord, error) {
	if days <= 0 {
		days = r.cfg.AlertDays
	}
	return r.reg.Vehicles(ctx, VehicleFilter{DueBefore: model.Day(at).AddDate(0, 0, days)})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
