package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/fleetcare/core/logger"
	"github.com/kilianp07/fleetcare/core/metrics"
	"github.com/kilianp07/fleetcare/core/model"
	"github.com/kilianp07/fleetcare/core/monitoring"
)

// Config controls alerting.
type Config struct {
	Enabled bool `json:"enabled"`
	// DedupMinutes suppresses repeats of the same vehicle and kind.
	DedupMinutes int `json:"dedup_minutes"`
	// Deduper is "memory" or "redis".
	Deduper string `json:"deduper"`
	// MinSeverity drops anomalies below it; "medium" keeps all.
	MinSeverity string `json:"min_severity"`
}

// SetDefaults applies a one day suppression window kept in memory.
func (c *Config) SetDefaults() {
	if c.DedupMinutes == 0 {
		c.DedupMinutes = 24 * 60
	}
	if c.Deduper == "" {
		c.Deduper = "memory"
	}
	if c.MinSeverity == "" {
		c.MinSeverity = "medium"
	}
}

// Validate checks the deduper and severity names.
func (c Config) Validate() error {
	switch c.Deduper {
	case "memory", "redis":
	default:
		return fmt.Errorf("alerts: unknown deduper %q", c.Deduper)
	}
	switch c.MinSeverity {
	case "medium", "high":
	default:
		return fmt.Errorf("alerts: unknown min_severity %q", c.MinSeverity)
	}
	if c.DedupMinutes < 0 {
		return fmt.Errorf("alerts: dedup_minutes must be positive")
	}
	return nil
}

// Notifier deduplicates and publishes alerts.
type Notifier struct {
	pub   Publisher
	dedup Deduper
	ttl   time.Duration
	high  bool
	sink  metrics.MetricsSink
	log   logger.Logger
}

// NewNotifier wires a Notifier. A nil deduper disables suppression.
func NewNotifier(pub Publisher, dedup Deduper, cfg Config, sink metrics.MetricsSink, log logger.Logger) *Notifier {
	cfg.SetDefaults()
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Notifier{
		pub:   pub,
		dedup: dedup,
		ttl:   time.Duration(cfg.DedupMinutes) * time.Minute,
		high:  cfg.MinSeverity == "high",
		sink:  sink,
		log:   log,
	}
}

// Notify publishes a unless the same vehicle and kind were alerted within
// the suppression window. It reports whether the alert went out. A failing
// deduper does not block the alert.
func (n *Notifier) Notify(ctx context.Context, a Alert) (bool, error) {
	if n.high && a.Kind == KindFuelAnomaly && a.Severity != model.SeverityHigh {
		return false, nil
	}
	if n.dedup != nil {
		fresh, err := n.dedup.Claim(ctx, a.Key(), n.ttl)
		if err != nil {
			n.log.Warnf("alert dedup for %s failed: %v", a.Key(), err)
			fresh = true
		}
		if !fresh {
			n.record(a, true)
			n.log.Debugw("alert suppressed", map[string]any{"vehicle_id": a.VehicleID, "kind": string(a.Kind)})
			return false, nil
		}
	}
	if err := n.pub.Publish(ctx, a); err != nil {
		monitoring.CaptureException(err, map[string]string{"module": "alerts", "vehicle_id": a.VehicleID})
		return false, fmt.Errorf("publish %s alert for %s: %w", a.Kind, a.VehicleID, err)
	}
	n.record(a, false)
	n.log.Infof("alert %s sent for %s", a.Kind, a.VehicleID)
	return true, nil
}

func (n *Notifier) record(a Alert, suppressed bool) {
	rec, ok := n.sink.(metrics.AlertRecorder)
	if !ok {
		return
	}
	if err := rec.RecordAlert(metrics.AlertEvent{VehicleID: a.VehicleID, Kind: string(a.Kind), Suppressed: suppressed, Time: a.CreatedAt}); err != nil {
		n.log.Warnf("record alert: %v", err)
	}
}
