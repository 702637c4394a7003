package metrics

// MultiSink fans events out to several sinks. Optional recorders are only
// invoked on the sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssessment forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordAssessment(ev AssessmentEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssessment(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTraining forwards training events.
func (m *MultiSink) RecordTraining(ev TrainingEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TrainingRecorder); ok {
			if err := rec.RecordTraining(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAnomalyScan forwards anomaly scans.
func (m *MultiSink) RecordAnomalyScan(ev AnomalyScanEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AnomalyRecorder); ok {
			if err := rec.RecordAnomalyScan(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAlert forwards alert events.
func (m *MultiSink) RecordAlert(ev AlertEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AlertRecorder); ok {
			if err := rec.RecordAlert(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
