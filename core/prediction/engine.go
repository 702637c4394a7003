package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/fleetcare/core/alerts"
	"github.com/kilianp07/fleetcare/core/anomaly"
	"github.com/kilianp07/fleetcare/core/efficiency"
	"github.com/kilianp07/fleetcare/core/features"
	"github.com/kilianp07/fleetcare/core/fleet"
	"github.com/kilianp07/fleetcare/core/logger"
	"github.com/kilianp07/fleetcare/core/maintenance"
	"github.com/kilianp07/fleetcare/core/metrics"
	"github.com/kilianp07/fleetcare/core/model"
)

// Evaluation is the engine's answer for one vehicle. The rule-based
// assessment is always present; the learned efficiency figures are nil when
// unavailable.
type Evaluation struct {
	VehicleID string `json:"vehicle_id"`
	maintenance.Assessment
	PredictedEfficiency *float64  `json:"predicted_efficiency,omitempty"`
	ObservedEfficiency  *float64  `json:"observed_efficiency,omitempty"`
	EvaluatedAt         time.Time `json:"evaluated_at"`
}

// TrainingReport holds the outcome of both learned models.
type TrainingReport struct {
	Efficiency model.TrainingOutcome `json:"efficiency"`
	Anomaly    model.TrainingOutcome `json:"anomaly"`
}

// Engine combines the maintenance policies with the learned models.
type Engine struct {
	reg      fleet.Registry
	fuel     fleet.FuelLog
	builder  features.Builder
	policies map[maintenance.PolicyName]maintenance.Policy
	policy   maintenance.PolicyName
	window   int

	estimator *efficiency.Estimator
	detector  *anomaly.Detector

	sink     metrics.MetricsSink
	logger   logger.Logger
	notifier *alerts.Notifier
	now      func() time.Time
}

// NewEngine builds an engine over the registry and the fuel log. sink, log
// and notifier may be nil.
func NewEngine(cfg Config, reg fleet.Registry, fuel fleet.FuelLog, sink metrics.MetricsSink, log logger.Logger, notifier *alerts.Notifier) (*Engine, error) {
	if reg == nil || fuel == nil {
		return nil, fmt.Errorf("prediction: nil registry or fuel log provided to NewEngine")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policies, err := maintenance.NewPolicies(cfg.Maintenance)
	if err != nil {
		return nil, err
	}
	policy, _ := maintenance.ParsePolicyName(cfg.DefaultPolicy)
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	builder := features.NewBuilder(features.DefaultCodebook)
	return &Engine{
		reg:       reg,
		fuel:      fuel,
		builder:   builder,
		policies:  policies,
		policy:    policy,
		window:    cfg.WindowDays,
		estimator: efficiency.New(cfg.Efficiency, builder),
		detector:  anomaly.New(cfg.Anomaly),
		sink:      sink,
		logger:    log,
		notifier:  notifier,
		now:       time.Now,
	}, nil
}

// DefaultPolicy returns the policy used by ScoreVehicle.
func (e *Engine) DefaultPolicy() maintenance.PolicyName { return e.policy }

// ScoreVehicle evaluates the vehicle with the default policy.
func (e *Engine) ScoreVehicle(ctx context.Context, id string, at time.Time) (Evaluation, error) {
	return e.ScoreVehicleWith(ctx, e.policy, id, at)
}

// ScoreVehicleWith evaluates the vehicle with the named policy at the
// evaluation date at. Unknown vehicles yield model.ErrVehicleNotFound.
func (e *Engine) ScoreVehicleWith(ctx context.Context, name maintenance.PolicyName, id string, at time.Time) (Evaluation, error) {
	p, ok := e.policies[name]
	if !ok {
		return Evaluation{}, fmt.Errorf("%w %q", maintenance.ErrUnknownPolicy, name)
	}
	v, err := e.reg.Vehicle(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	a, err := p.Assess(v, at)
	if err != nil {
		return Evaluation{}, err
	}
	ev := Evaluation{VehicleID: v.ID, Assessment: a, EvaluatedAt: model.Day(at)}

	est, err := e.estimator.Predict(v, at)
	switch {
	case err != nil:
		e.logger.Debugf("efficiency estimate for %s unavailable: %v", v.ID, err)
	case est.Available:
		ev.PredictedEfficiency = &est.Efficiency
	}

	q := fleet.Window(at, e.window)
	q.VehicleID = v.ID
	rows, err := e.fuel.Entries(ctx, q)
	if err != nil {
		return Evaluation{}, fmt.Errorf("fuel window of %s: %w", v.ID, err)
	}
	if st := features.RollingEfficiency(rows); st.Available() {
		obs := round2(st.Mean)
		ev.ObservedEfficiency = &obs
	}

	if err := e.sink.RecordAssessment(metrics.AssessmentEvent{
		VehicleID:           v.ID,
		VehicleType:         v.Type,
		Policy:              string(a.Policy),
		NeedsMaintenance:    a.NeedsMaintenance,
		RiskScore:           a.RiskScore,
		PredictedEfficiency: ev.PredictedEfficiency,
		Time:                at,
	}); err != nil {
		e.logger.Errorf("assessment metrics error: %v", err)
	}
	if a.NeedsMaintenance {
		al := alerts.New(v.ID, alerts.KindMaintenanceDue, e.now())
		al.Score = a.RiskScore
		al.RecommendedDate = a.RecommendedDate.Format(model.DateLayout)
		al.Message = fmt.Sprintf("%s maintenance recommended by %s (risk %.2f)", v.Type, al.RecommendedDate, a.RiskScore)
		e.notify(ctx, al)
	}
	return ev, nil
}

// TrainModels retrains both learned models on the trailing window. Soft
// failures are reported in the outcomes; only store errors are returned.
func (e *Engine) TrainModels(ctx context.Context, windowDays int) (TrainingReport, error) {
	if windowDays <= 0 {
		windowDays = e.window
	}
	at := e.now()
	vehicles, err := e.reg.Vehicles(ctx, fleet.VehicleFilter{})
	if err != nil {
		return TrainingReport{}, fmt.Errorf("list vehicles: %w", err)
	}
	rows, err := e.fuel.Entries(ctx, fleet.Window(at, windowDays))
	if err != nil {
		return TrainingReport{}, fmt.Errorf("fuel window: %w", err)
	}

	byVehicle := make(map[string][]model.FuelLogEntry)
	for _, r := range rows {
		byVehicle[r.VehicleID] = append(byVehicle[r.VehicleID], r)
	}
	obs := make([]efficiency.Observation, 0, len(vehicles))
	for _, v := range vehicles {
		st := features.RollingEfficiency(byVehicle[v.ID])
		if !st.Available() {
			continue
		}
		obs = append(obs, efficiency.Observation{Vehicle: v, AvgEfficiency: st.Mean})
	}

	var rep TrainingReport
	start := time.Now()
	rep.Efficiency = e.estimator.Train(obs, at)
	e.recordTraining(rep.Efficiency, time.Since(start), at)

	start = time.Now()
	rep.Anomaly = e.detector.Train(rows, at)
	e.recordTraining(rep.Anomaly, time.Since(start), at)
	return rep, nil
}

// DetectFleetAnomalies scores the active fuel rows of the trailing window
// and returns the outliers. Idle days are never scanned. The result is empty while the detector is untrained.
func (e *Engine) DetectFleetAnomalies(ctx context.Context, windowDays int) ([]model.AnomalyResult, error) {
	if windowDays <= 0 {
		windowDays = e.window
	}
	at := e.now()
	q := fleet.Window(at, windowDays)
	q.ActiveOnly = true
	rows, err := e.fuel.Entries(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fuel window: %w", err)
	}
	results := e.detector.Detect(rows)

	if ar, ok := e.sink.(metrics.AnomalyRecorder); ok {
		if err := ar.RecordAnomalyScan(metrics.AnomalyScanEvent{WindowDays: windowDays, Scanned: len(rows), Results: results, Time: at}); err != nil {
			e.logger.Errorf("anomaly metrics error: %v", err)
		}
	}
	if len(results) > 0 {
		e.logger.Infof("%d fuel anomalies in %d rows over %d days", len(results), len(rows), windowDays)
	}
	for _, r := range results {
		al := alerts.New(r.VehicleID, alerts.KindFuelAnomaly, e.now())
		al.Severity = r.Severity
		al.Score = r.Score
		al.Message = fmt.Sprintf("%s fuel consumption anomaly on %s (score %.3f)", r.Severity, r.Date.Format(model.DateLayout), r.Score)
		e.notify(ctx, al)
	}
	return results, nil
}

// ModelStatus returns the last training outcome of both models.
func (e *Engine) ModelStatus() TrainingReport {
	return TrainingReport{Efficiency: e.estimator.LastOutcome(), Anomaly: e.detector.LastOutcome()}
}

func (e *Engine) recordTraining(out model.TrainingOutcome, d time.Duration, at time.Time) {
	switch {
	case out.OK():
		e.logger.Infof("%s model trained on %d rows", out.Model, out.Rows)
	case errors.Is(out.Err, model.ErrInsufficientData):
		e.logger.Warnf("%s model not trained: %v", out.Model, out.Err)
	default:
		e.logger.Errorf("%s model training failed: %v", out.Model, out.Err)
	}
	tr, ok := e.sink.(metrics.TrainingRecorder)
	if !ok {
		return
	}
	if err := tr.RecordTraining(metrics.TrainingEvent{Outcome: out, Duration: d, Time: at}); err != nil {
		e.logger.Errorf("training metrics error: %v", err)
	}
}

func (e *Engine) notify(ctx context.Context, a alerts.Alert) {
	if e.notifier == nil {
		return
	}
	if _, err := e.notifier.Notify(ctx, a); err != nil {
		e.logger.Errorf("alert for %s: %v", a.VehicleID, err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
