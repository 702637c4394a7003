package maintenance

import (
	"math"
	"time"

	"github.com/kilianp07/fleetcare/core/model"
)

// SchedulePolicy blends the odometer reading with the proximity of the
// scheduled service date. A service due within DueSoonDays always needs
// maintenance regardless of the blended risk.
type SchedulePolicy struct {
	cfg ScheduleConfig
}

// NewSchedulePolicy returns the policy for cfg.
func NewSchedulePolicy(cfg ScheduleConfig) *SchedulePolicy {
	return &SchedulePolicy{cfg: cfg}
}

// Name implements Policy.
func (p *SchedulePolicy) Name() PolicyName { return PolicySchedule }

// Assess implements Policy. It never fails. A vehicle without a scheduled
// service is scored on its odometer alone.
func (p *SchedulePolicy) Assess(v model.VehicleRecord, at time.Time) (Assessment, error) {
	if v.NextMaintenanceDate.IsZero() {
		a := p.Score(v.Mileage, p.cfg.HorizonDays)
		a.DaysUntilMaintenance = 0
		a.Factors.DaysUntilScheduled = 0
		a.RecommendedDate = model.Day(at).AddDate(0, 0, p.leadDays(a.RiskScore))
		return a, nil
	}
	daysUntil := model.DaysBetween(at, v.NextMaintenanceDate)
	a := p.Score(v.Mileage, daysUntil)
	a.RecommendedDate = model.Day(at).AddDate(0, 0, p.leadDays(a.RiskScore))
	return a, nil
}

// Score computes the assessment from the odometer reading and the number of
// days until the scheduled service (negative when overdue).
func (p *SchedulePolicy) Score(mileage, daysUntil int) Assessment {
	c := p.cfg
	mileageFactor := math.Min(float64(mileage)/c.MileageNorm, 1.0)
	horizon := float64(c.HorizonDays)
	timeFactor := math.Max(0, (horizon-float64(daysUntil))/horizon)
	// Conversions keep each product rounded (no fused multiply-add) so the
	// threshold comparison is identical on every platform.
	risk := float64(c.MileageWeight*mileageFactor) + float64(c.RecencyWeight*timeFactor)
	needs := risk > c.Threshold || daysUntil <= c.DueSoonDays
	return Assessment{
		Policy:               PolicySchedule,
		NeedsMaintenance:     needs,
		RiskScore:            math.Min(risk, 1.0),
		DaysUntilMaintenance: max(0, daysUntil),
		Factors: RiskFactors{
			Mileage:            mileage,
			DaysUntilScheduled: daysUntil,
			MileageFactor:      mileageFactor,
			TimeFactor:         timeFactor,
		},
	}
}

// leadDays maps the risk to the number of days until the recommended service.
func (p *SchedulePolicy) leadDays(risk float64) int {
	horizon := p.cfg.HorizonDays
	return max(p.cfg.MinLeadDays, horizon-int(math.Round(risk*float64(horizon))))
}
