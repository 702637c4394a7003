package features

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardises columns to zero mean and unit variance. Its parameters
// are fixed by FitScaler and cannot be changed afterwards.
type Scaler struct {
	mean  []float64
	scale []float64
}

// FitScaler computes per-column mean and population standard deviation of
// rows. Columns without variance get a scale of 1.
func FitScaler(rows [][]float64) (Scaler, error) {
	if len(rows) == 0 {
		return Scaler{}, errors.New("scaler: no rows")
	}
	width := len(rows[0])
	mean := make([]float64, width)
	scale := make([]float64, width)
	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, r := range rows {
			if len(r) != width {
				return Scaler{}, fmt.Errorf("scaler: row %d has %d columns, want %d", i, len(r), width)
			}
			col[i] = r[j]
		}
		m, s := stat.PopMeanStdDev(col, nil)
		if s == 0 {
			s = 1
		}
		mean[j], scale[j] = m, s
	}
	return Scaler{mean: mean, scale: scale}, nil
}

// Width returns the number of columns the scaler was fitted on.
func (s Scaler) Width() int { return len(s.mean) }

// Mean returns a copy of the fitted column means.
func (s Scaler) Mean() []float64 { return append([]float64(nil), s.mean...) }

// Scale returns a copy of the fitted column scales.
func (s Scaler) Scale() []float64 { return append([]float64(nil), s.scale...) }

// Transform standardises one row.
func (s Scaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.mean) {
		return nil, fmt.Errorf("scaler: got %d columns, fitted on %d", len(row), len(s.mean))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.mean[j]) / s.scale[j]
	}
	return out, nil
}

// TransformAll standardises every row.
func (s Scaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		t, err := s.Transform(r)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
