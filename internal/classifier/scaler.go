package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes each column to zero mean and unit variance using
// statistics captured at fit time.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// fitScaler computes per-column population mean and standard deviation.
// Constant columns get a scale of 1 so they map to zero.
func fitScaler(x *mat.Dense) *Scaler {
	_, cols := x.Dims()
	s := &Scaler{
		Mean:  make([]float64, cols),
		Scale: make([]float64, cols),
	}
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, x)
		mean, variance := stat.PopMeanVariance(col, nil)
		std := math.Sqrt(variance)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return s
}

// Width returns the number of columns the scaler was fitted on.
func (s *Scaler) Width() int {
	return len(s.Mean)
}

// Transform returns a standardized copy of x.
func (s *Scaler) Transform(x *mat.Dense) (*mat.Dense, error) {
	_, cols := x.Dims()
	if cols != s.Width() {
		return nil, fmt.Errorf("%w: scaler fitted on %d columns, got %d", ErrSchemaMismatch, s.Width(), cols)
	}
	var out mat.Dense
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, x)
	return &out, nil
}
