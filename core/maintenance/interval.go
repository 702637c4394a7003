package maintenance

import (
	"math"
	"time"

	"github.com/kilianp07/fleetcare/core/features"
	"github.com/kilianp07/fleetcare/core/model"
)

// IntervalPolicy compares the estimated distance and the elapsed time since
// the last service against the per-type interval. Whichever dimension is
// further along drives the risk.
type IntervalPolicy struct {
	table      IntervalTable
	dailyMiles int
	threshold  float64
}

// NewIntervalPolicy builds the policy from configuration.
func NewIntervalPolicy(cfg IntervalConfig) (*IntervalPolicy, error) {
	table, err := NewIntervalTable(cfg)
	if err != nil {
		return nil, err
	}
	return &IntervalPolicy{table: table, dailyMiles: cfg.DailyMiles, threshold: cfg.Threshold}, nil
}

// Name implements Policy.
func (p *IntervalPolicy) Name() PolicyName { return PolicyInterval }

// Assess implements Policy. A last maintenance date after at is rejected
// with model.ErrInvalidDate.
func (p *IntervalPolicy) Assess(v model.VehicleRecord, at time.Time) (Assessment, error) {
	days, err := features.DaysSinceMaintenance(v, at)
	if err != nil {
		return Assessment{}, err
	}
	a := p.Score(v.Type, days)
	a.Factors.Mileage = v.Mileage
	a.RecommendedDate = model.Day(at).AddDate(0, 0, a.DaysUntilMaintenance)
	return a, nil
}

// Score computes the assessment from the vehicle type and the days elapsed
// since the last service. RecommendedDate is left unset.
func (p *IntervalPolicy) Score(vt model.VehicleType, daysSince int) Assessment {
	iv := p.table.Lookup(vt)
	milesSince := daysSince * p.dailyMiles
	mileageRatio := float64(milesSince) / float64(iv.Miles)
	timeRatio := float64(daysSince) / float64(iv.Days)
	risk := math.Min(math.Max(mileageRatio, timeRatio), 1.0)
	return Assessment{
		Policy:                PolicyInterval,
		NeedsMaintenance:      risk > p.threshold,
		RiskScore:             risk,
		DaysUntilMaintenance:  max(0, iv.Days-daysSince),
		MilesUntilMaintenance: max(0, iv.Miles-milesSince),
		Factors: RiskFactors{
			DaysSinceMaintenance:  daysSince,
			MilesSinceMaintenance: milesSince,
			MileageRatio:          mileageRatio,
			TimeRatio:             timeRatio,
		},
	}
}
