package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/fleetcare/core/metrics"
	"github.com/kilianp07/fleetcare/core/model"
)

// PromSink records engine events in Prometheus metrics.
type PromSink struct {
	assessments *prometheus.CounterVec
	risk        *prometheus.HistogramVec
	trainings   *prometheus.CounterVec
	trainTime   *prometheus.HistogramVec
	trained     *prometheus.GaugeVec
	anomalies   *prometheus.CounterVec
	scanned     prometheus.Gauge
	alerts      *prometheus.CounterVec
}

// NewPromSink registers the engine metrics on the default Prometheus registerer.
// They are exposed by the service on /metrics.
func NewPromSink(namespace string) (*PromSink, error) {
	return NewPromSinkWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// register adds c to reg, reusing the collector already registered under
// the same descriptor.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(namespace string, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "fleetcare"
	}
	s := &PromSink{}
	var err error
	if s.assessments, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "maintenance_assessments_total",
		Help:      "Maintenance assessments by policy, vehicle type and verdict",
	}, []string{"policy", "vehicle_type", "needs_maintenance"})); err != nil {
		return nil, err
	}
	if s.risk, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "maintenance_risk_score",
		Help:      "Distribution of maintenance risk scores",
		Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
	}, []string{"policy"})); err != nil {
		return nil, err
	}
	if s.trainings, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_trainings_total",
		Help:      "Training passes by model and outcome",
	}, []string{"model", "state"})); err != nil {
		return nil, err
	}
	if s.trainTime, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_training_duration_seconds",
		Help:      "Duration of training passes",
		Buckets:   prometheus.DefBuckets,
	}, []string{"model"})); err != nil {
		return nil, err
	}
	if s.trained, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_trained",
		Help:      "1 when the model is available for inference",
	}, []string{"model"})); err != nil {
		return nil, err
	}
	if s.anomalies, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fuel_anomalies_total",
		Help:      "Fuel anomalies detected by severity",
	}, []string{"severity"})); err != nil {
		return nil, err
	}
	if s.scanned, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "anomaly_scan_rows",
		Help:      "Fuel log rows scored by the last anomaly scan",
	})); err != nil {
		return nil, err
	}
	if s.alerts, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_total",
		Help:      "Alerts by kind, suppressed ones included",
	}, []string{"kind", "suppressed"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordAssessment counts the verdict and observes the risk score.
func (s *PromSink) RecordAssessment(ev coremetrics.AssessmentEvent) error {
	s.assessments.WithLabelValues(ev.Policy, string(ev.VehicleType), strconv.FormatBool(ev.NeedsMaintenance)).Inc()
	s.risk.WithLabelValues(ev.Policy).Observe(ev.RiskScore)
	return nil
}

// RecordTraining counts the pass and tracks whether a model is available.
func (s *PromSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	o := ev.Outcome
	s.trainings.WithLabelValues(o.Model, o.State.String()).Inc()
	s.trainTime.WithLabelValues(o.Model).Observe(ev.Duration.Seconds())
	if o.State == model.Trained {
		s.trained.WithLabelValues(o.Model).Set(1)
	}
	return nil
}

// RecordAnomalyScan counts detected anomalies by severity.
func (s *PromSink) RecordAnomalyScan(ev coremetrics.AnomalyScanEvent) error {
	for _, r := range ev.Results {
		s.anomalies.WithLabelValues(string(r.Severity)).Inc()
	}
	s.scanned.Set(float64(ev.Scanned))
	return nil
}

// RecordAlert counts alerts.
func (s *PromSink) RecordAlert(ev coremetrics.AlertEvent) error {
	s.alerts.WithLabelValues(ev.Kind, strconv.FormatBool(ev.Suppressed)).Inc()
	return nil
}
