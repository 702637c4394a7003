// Package metrics defines the sinks recording what the engine decides:
// maintenance assessments, training passes, anomaly scans and alerts.
// MetricsSink is the mandatory interface; the other recorders are optional
// and discovered by type assertion. Sinks are built from configuration by
// name through the factory registry and combined with NewMultiSink when
// several are configured.
package metrics
