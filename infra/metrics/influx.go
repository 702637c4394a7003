package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/fleetcare/core/metrics"
	"github.com/kilianp07/fleetcare/core/model"
	"github.com/kilianp07/fleetcare/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket receiving engine events.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes engine events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordAssessment writes one maintenance_assessment point.
func (s *InfluxSink) RecordAssessment(ev coremetrics.AssessmentEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("maintenance_assessment").
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("vehicle_type", string(ev.VehicleType)).
		AddTag("policy", ev.Policy).
		AddField("risk_score", round3(ev.RiskScore)).
		AddField("needs_maintenance", ev.NeedsMaintenance)
	if ev.PredictedEfficiency != nil {
		p = p.AddField("predicted_efficiency", round3(*ev.PredictedEfficiency))
	}
	p = p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTraining writes one model_training point.
func (s *InfluxSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	o := ev.Outcome
	p := write.NewPointWithMeasurement("model_training").
		AddTag("model", o.Model).
		AddTag("state", o.State.String()).
		AddField("rows", o.Rows).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000))
	if o.RunID != "" {
		p = p.AddField("run_id", o.RunID)
	}
	if r := o.Reason(); r != "" {
		p = p.AddField("reason", r)
	}
	p = p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAnomalyScan writes the scan summary followed by one fuel_anomaly
// point per result, in a single request.
func (s *InfluxSink) RecordAnomalyScan(ev coremetrics.AnomalyScanEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(ev.Results)+1)
	points = append(points, write.NewPointWithMeasurement("anomaly_scan").
		AddTag("window_days", strconv.Itoa(ev.WindowDays)).
		AddField("scanned", ev.Scanned).
		AddField("anomalies", len(ev.Results)).
		SetTime(ev.Time))
	for _, r := range ev.Results {
		points = append(points, anomalyPoint(r))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

func anomalyPoint(r model.AnomalyResult) *write.Point {
	return write.NewPointWithMeasurement("fuel_anomaly").
		AddTag("vehicle_id", r.VehicleID).
		AddTag("severity", string(r.Severity)).
		AddField("anomaly_score", round3(r.Score)).
		SetTime(r.Date)
}

// RecordAlert writes one alert point.
func (s *InfluxSink) RecordAlert(ev coremetrics.AlertEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("alert").
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("kind", ev.Kind).
		AddField("suppressed", ev.Suppressed).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
