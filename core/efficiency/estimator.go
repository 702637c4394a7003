// Package efficiency predicts the expected fuel efficiency of a vehicle with
// a linear model fitted on the fleet's recent history.
package efficiency

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleetcare/core/features"
	"github.com/kilianp07/fleetcare/core/model"
)

// ModelName identifies the estimator in training outcomes and metrics.
const ModelName = "efficiency"

// rcond is the relative singular value cut-off of the least squares solve.
const rcond = 1e-10

// Config tunes training.
type Config struct {
	// MinRows is the smallest training set that is fitted.
	MinRows int `json:"min_rows"`
	// MaxRows caps the training set; 0 disables the cap.
	MaxRows int `json:"max_rows"`
}

// SetDefaults applies the stock minimum of 10 rows.
func (c *Config) SetDefaults() {
	if c.MinRows == 0 {
		c.MinRows = 10
	}
}

// Validate checks the row bounds.
func (c Config) Validate() error {
	if c.MinRows < 1 {
		return fmt.Errorf("efficiency: min_rows must be positive")
	}
	if c.MaxRows < 0 || (c.MaxRows > 0 && c.MaxRows < c.MinRows) {
		return fmt.Errorf("efficiency: max_rows=%d must be 0 or at least min_rows=%d", c.MaxRows, c.MinRows)
	}
	return nil
}

// Observation pairs a registry row with the efficiency observed over the
// trailing window.
type Observation struct {
	Vehicle       model.VehicleRecord
	AvgEfficiency float64
}

// Estimate is the result of Predict. Available is false while no model has
// been trained.
type Estimate struct {
	Efficiency float64
	Available  bool
}

// state is one fitted model. It is never mutated after construction.
type state struct {
	scaler    features.Scaler
	intercept float64
	coef      []float64
}

// Estimator owns the fitted linear model and its normalisation parameters.
type Estimator struct {
	cfg     Config
	builder features.Builder

	mu   sync.RWMutex
	st   *state
	last model.TrainingOutcome
}

// New returns an untrained Estimator.
func New(cfg Config, b features.Builder) *Estimator {
	cfg.SetDefaults()
	return &Estimator{
		cfg:     cfg,
		builder: b,
		last:    model.TrainingOutcome{Model: ModelName, State: model.NotTrained},
	}
}

// Trained reports whether a model is available for inference.
func (e *Estimator) Trained() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.st != nil
}

// LastOutcome returns the outcome of the most recent training pass.
func (e *Estimator) LastOutcome() model.TrainingOutcome {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// Train fits a new model on obs with features evaluated at at. Insufficient
// or unusable data yields a soft outcome and leaves the current model in
// place; a successful pass replaces it entirely.
func (e *Estimator) Train(obs []Observation, at time.Time) model.TrainingOutcome {
	out := model.TrainingOutcome{Model: ModelName, RunID: uuid.NewString(), Rows: len(obs)}
	st, err := e.fit(obs, at)
	switch {
	case err == nil:
		out.State = model.Trained
		out.TrainedAt = at
	case errors.Is(err, model.ErrInsufficientData):
		out.State = model.NotTrained
		out.Err = err
	default:
		out.State = model.TrainingFailed
		out.Err = err
	}

	e.mu.Lock()
	if st != nil {
		e.st = st
	}
	e.last = out
	e.mu.Unlock()
	return out
}

func (e *Estimator) fit(obs []Observation, at time.Time) (*state, error) {
	if e.cfg.MaxRows > 0 && len(obs) > e.cfg.MaxRows {
		return nil, fmt.Errorf("%d rows exceed the cap of %d", len(obs), e.cfg.MaxRows)
	}
	x := make([][]float64, 0, len(obs))
	y := make([]float64, 0, len(obs))
	for _, o := range obs {
		if math.IsNaN(o.AvgEfficiency) || math.IsInf(o.AvgEfficiency, 0) {
			continue
		}
		vec, err := e.builder.Build(o.Vehicle, at, nil)
		if err != nil {
			continue
		}
		x = append(x, vec.Values())
		y = append(y, o.AvgEfficiency)
	}
	if len(x) < e.cfg.MinRows {
		return nil, fmt.Errorf("%w: %d usable rows, need %d", model.ErrInsufficientData, len(x), e.cfg.MinRows)
	}

	scaler, err := features.FitScaler(x)
	if err != nil {
		return nil, err
	}
	xs, err := scaler.TransformAll(x)
	if err != nil {
		return nil, err
	}

	// Standardised columns are centred, so the intercept is the target mean
	// and the slopes solve the centred least squares problem.
	intercept := stat.Mean(y, nil)
	n, p := len(xs), scaler.Width()
	a := mat.NewDense(n, p, nil)
	b := mat.NewVecDense(n, nil)
	for i := range xs {
		a.SetRow(i, xs[i])
		b.SetVec(i, y[i]-intercept)
	}
	coef, err := leastSquares(a, b)
	if err != nil {
		return nil, err
	}
	return &state{scaler: scaler, intercept: intercept, coef: coef}, nil
}

// leastSquares returns the minimum-norm solution of a·x ≈ b. Constant or
// collinear columns reduce the rank instead of failing the fit.
func leastSquares(a *mat.Dense, b *mat.VecDense) ([]float64, error) {
	_, p := a.Dims()
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, errors.New("svd factorization failed")
	}
	coef := make([]float64, p)
	rank := svd.Rank(rcond)
	if rank == 0 {
		return coef, nil
	}
	var x mat.VecDense
	svd.SolveVecTo(&x, b, rank)
	for i := range coef {
		coef[i] = x.AtVec(i)
	}
	return coef, nil
}

// Predict returns the expected efficiency of v at at, rounded to two
// decimals. Without a trained model the estimate is unavailable and no error
// is returned.
func (e *Estimator) Predict(v model.VehicleRecord, at time.Time) (Estimate, error) {
	e.mu.RLock()
	st := e.st
	e.mu.RUnlock()
	if st == nil {
		return Estimate{}, nil
	}
	vec, err := e.builder.Build(v, at, nil)
	if err != nil {
		return Estimate{}, err
	}
	xs, err := st.scaler.Transform(vec.Values())
	if err != nil {
		return Estimate{}, err
	}
	pred := st.intercept + floats.Dot(st.coef, xs)
	return Estimate{Efficiency: math.Round(pred*100) / 100, Available: true}, nil
}

// Params exposes copies of the fitted parameters.
func (e *Estimator) Params() (intercept float64, coef, mean, scale []float64, ok bool) {
	e.mu.RLock()
	st := e.st
	e.mu.RUnlock()
	if st == nil {
		return 0, nil, nil, nil, false
	}
	return st.intercept, append([]float64(nil), st.coef...), st.scaler.Mean(), st.scaler.Scale(), true
}
