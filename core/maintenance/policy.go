package maintenance

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/fleetcare/core/model"
)

// PolicyName identifies a scoring policy.
type PolicyName string

const (
	PolicyInterval PolicyName = "interval"
	PolicySchedule PolicyName = "schedule"
)

// ErrUnknownPolicy is returned for policy names other than interval and
// schedule.
var ErrUnknownPolicy = errors.New("unknown maintenance policy")

// ParsePolicyName validates a policy name. Empty selects the interval policy.
func ParsePolicyName(s string) (PolicyName, error) {
	switch PolicyName(s) {
	case "", PolicyInterval:
		return PolicyInterval, nil
	case PolicySchedule:
		return PolicySchedule, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownPolicy, s)
}

// RiskFactors lists the inputs that drove an assessment. Fields not used by
// a policy are left zero and omitted from JSON.
type RiskFactors struct {
	Mileage               int     `json:"mileage"`
	DaysSinceMaintenance  int     `json:"days_since_maintenance,omitempty"`
	MilesSinceMaintenance int     `json:"miles_since_maintenance,omitempty"`
	MileageRatio          float64 `json:"mileage_ratio,omitempty"`
	TimeRatio             float64 `json:"time_ratio,omitempty"`
	DaysUntilScheduled    int     `json:"days_until_scheduled,omitempty"`
	MileageFactor         float64 `json:"mileage_factor,omitempty"`
	TimeFactor            float64 `json:"time_factor,omitempty"`
}

// Assessment is the verdict of a policy for one vehicle.
type Assessment struct {
	Policy                PolicyName  `json:"policy"`
	NeedsMaintenance      bool        `json:"needs_maintenance"`
	RiskScore             float64     `json:"risk_score"`
	DaysUntilMaintenance  int         `json:"days_until_maintenance"`
	MilesUntilMaintenance int         `json:"miles_until_maintenance"`
	RecommendedDate       time.Time   `json:"recommended_date"`
	Factors               RiskFactors `json:"risk_factors"`
}

// Policy scores the maintenance need of a vehicle at an evaluation date.
type Policy interface {
	Name() PolicyName
	Assess(v model.VehicleRecord, at time.Time) (Assessment, error)
}

// NewPolicies builds both policies from cfg, keyed by name.
func NewPolicies(cfg Config) (map[PolicyName]Policy, error) {
	ip, err := NewIntervalPolicy(cfg.Interval)
	if err != nil {
		return nil, err
	}
	return map[PolicyName]Policy{
		PolicyInterval: ip,
		PolicySchedule: NewSchedulePolicy(cfg.Schedule),
	}, nil
}
