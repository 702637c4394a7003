// Package anomaly flags fuel log rows whose consumption pattern deviates from
// the rest of the fleet, using an isolation forest fitted on a trailing
// window of active days.
package anomaly

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleetcare/core/features"
	"github.com/kilianp07/fleetcare/core/model"
)

// ModelName identifies the detector in training outcomes and metrics.
const ModelName = "anomaly"

// Config tunes the isolation forest.
type Config struct {
	MinRows int `json:"min_rows"`
	// MaxRows caps the training set; 0 disables the cap.
	MaxRows int `json:"max_rows"`
	// Contamination is the expected share of outliers in the training set.
	Contamination float64 `json:"contamination"`
	Trees         int     `json:"trees"`
	SampleSize    int     `json:"sample_size"`
	Seed          int64   `json:"seed"`
	// HighSeverity is the score below which an outlier is graded high.
	HighSeverity float64 `json:"high_severity"`
}

// SetDefaults fills unset fields with the stock forest parameters.
func (c *Config) SetDefaults() {
	if c.MinRows == 0 {
		c.MinRows = 50
	}
	if c.Contamination == 0 {
		c.Contamination = 0.1
	}
	if c.Trees == 0 {
		c.Trees = 100
	}
	if c.SampleSize == 0 {
		c.SampleSize = 256
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.HighSeverity == 0 {
		c.HighSeverity = -0.5
	}
}

// Validate checks the ranges SetDefaults cannot fix.
func (c Config) Validate() error {
	if c.Contamination <= 0 || c.Contamination > 0.5 {
		return fmt.Errorf("anomaly: contamination %.3f out of (0, 0.5]", c.Contamination)
	}
	if c.MinRows < 2 {
		return fmt.Errorf("anomaly: min_rows must be at least 2, got %d", c.MinRows)
	}
	if c.Trees < 1 || c.SampleSize < 2 {
		return fmt.Errorf("anomaly: trees=%d sample_size=%d", c.Trees, c.SampleSize)
	}
	return nil
}

type state struct {
	scaler features.Scaler
	forest forest
	offset float64
}

// Detector owns the fitted forest, its scaler and the decision offset.
type Detector struct {
	cfg Config

	mu   sync.RWMutex
	st   *state
	last model.TrainingOutcome
}

// New returns an untrained Detector.
func New(cfg Config) *Detector {
	cfg.SetDefaults()
	return &Detector{
		cfg:  cfg,
		last: model.TrainingOutcome{Model: ModelName, State: model.NotTrained},
	}
}

// Trained reports whether a forest is available for detection.
func (d *Detector) Trained() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st != nil
}

// LastOutcome returns the outcome of the most recent training pass.
func (d *Detector) LastOutcome() model.TrainingOutcome {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// Offset returns the decision offset of the current forest.
func (d *Detector) Offset() (float64, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.st == nil {
		return 0, false
	}
	return d.st.offset, true
}

func values(e model.FuelLogEntry) []float64 {
	return []float64{e.FuelEfficiency, e.FuelConsumed, e.DistanceTraveled}
}

// Train fits a forest on the rows with a positive efficiency. Each pass
// seeds its own source, so identical rows yield identical forests.
func (d *Detector) Train(rows []model.FuelLogEntry, at time.Time) model.TrainingOutcome {
	x := make([][]float64, 0, len(rows))
	for _, r := range rows {
		if r.FuelEfficiency > 0 {
			x = append(x, values(r))
		}
	}
	out := model.TrainingOutcome{Model: ModelName, RunID: uuid.NewString(), Rows: len(x)}

	switch {
	case len(x) < d.cfg.MinRows:
		out.State = model.NotTrained
		out.Err = fmt.Errorf("%w: %d active rows, need %d", model.ErrInsufficientData, len(x), d.cfg.MinRows)
	case d.cfg.MaxRows > 0 && len(x) > d.cfg.MaxRows:
		out.State = model.TrainingFailed
		out.Err = fmt.Errorf("%d rows exceed the cap of %d", len(x), d.cfg.MaxRows)
	}
	if out.Err != nil {
		d.mu.Lock()
		d.last = out
		d.mu.Unlock()
		return out
	}

	st, err := d.fit(x)
	if err != nil {
		out.State = model.TrainingFailed
		out.Err = err
	} else {
		out.State = model.Trained
		out.TrainedAt = at
	}

	d.mu.Lock()
	if st != nil {
		d.st = st
	}
	d.last = out
	d.mu.Unlock()
	return out
}

func (d *Detector) fit(x [][]float64) (*state, error) {
	scaler, err := features.FitScaler(x)
	if err != nil {
		return nil, err
	}
	xs, err := scaler.TransformAll(x)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(d.cfg.Seed))
	f := growForest(xs, d.cfg.Trees, d.cfg.SampleSize, rng)

	scores := make([]float64, len(xs))
	for i, r := range xs {
		scores[i] = f.score(r)
	}
	sort.Float64s(scores)
	offset := stat.Quantile(d.cfg.Contamination, stat.LinInterp, scores, nil)
	return &state{scaler: scaler, forest: f, offset: offset}, nil
}

// Score returns the signed anomaly score of every row: the forest score
// minus the training offset. Negative rows are outliers. The second result
// is false when no forest is trained.
func (d *Detector) Score(rows []model.FuelLogEntry) ([]float64, bool) {
	d.mu.RLock()
	st := d.st
	d.mu.RUnlock()
	if st == nil {
		return nil, false
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		xs, err := st.scaler.Transform(values(r))
		if err != nil {
			return nil, false
		}
		out[i] = st.forest.score(xs) - st.offset
	}
	return out, true
}

// Detect returns the outlier rows only, graded by severity. Idle rows are
// skipped as in Train. It returns an empty slice while untrained.
func (d *Detector) Detect(rows []model.FuelLogEntry) []model.AnomalyResult {
	scores, ok := d.Score(rows)
	if !ok {
		return []model.AnomalyResult{}
	}
	results := make([]model.AnomalyResult, 0)
	for i, s := range scores {
		if s >= 0 || rows[i].FuelEfficiency <= 0 {
			continue
		}
		sev := model.SeverityMedium
		if s < d.cfg.HighSeverity {
			sev = model.SeverityHigh
		}
		results = append(results, model.AnomalyResult{
			VehicleID: rows[i].VehicleID,
			Date:      rows[i].Date,
			Score:     s,
			Severity:  sev,
		})
	}
	return results
}
