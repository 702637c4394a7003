package model

import (
	"encoding/json"
	"time"
)

// TrainingState is the result class of a training pass.
type TrainingState int

const (
	NotTrained TrainingState = iota
	Trained
	TrainingFailed
)

func (s TrainingState) String() string {
	switch s {
	case Trained:
		return "trained"
	case TrainingFailed:
		return "training_failed"
	default:
		return "not_trained"
	}
}

// MarshalJSON encodes the state by name.
func (s TrainingState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// TrainingOutcome describes one training pass of a learned model.
// Err is set for NotTrained (ErrInsufficientData) and TrainingFailed.
type TrainingOutcome struct {
	Model     string        `json:"model"`
	RunID     string        `json:"run_id,omitempty"`
	State     TrainingState `json:"state"`
	Rows      int           `json:"rows"`
	Err       error         `json:"-"`
	TrainedAt time.Time     `json:"trained_at,omitempty"`
}

// Reason returns the failure reason, or an empty string.
func (o TrainingOutcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// MarshalJSON adds the reason and omits trained_at until a model is trained.
func (o TrainingOutcome) MarshalJSON() ([]byte, error) {
	type alias TrainingOutcome
	out := struct {
		alias
		TrainedAt *time.Time `json:"trained_at,omitempty"`
		Reason    string     `json:"reason,omitempty"`
	}{alias: alias(o), Reason: o.Reason()}
	if !o.TrainedAt.IsZero() {
		out.TrainedAt = &o.TrainedAt
	}
	return json.Marshal(out)
}

// OK reports whether the pass produced a model.
func (o TrainingOutcome) OK() bool { return o.State == Trained }
