package preprocessing

import (
	"fmt"
	"math"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

// Normalizer standardizes each column to zero mean and unit variance. Fit
// computes the column statistics once; Transform reuses them and never
// mutates its input, so repeated transforms of the same matrix are
// bit-identical.
type Normalizer struct {
	mean   []float64
	std    []float64
	fitted bool
}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Fit computes per-column mean and population standard deviation. Columns
// with near-zero spread get a standard deviation of 1.0 so Transform never
// divides by zero.
func (n *Normalizer) Fit(x [][]float64) error {
	if len(x) == 0 {
		return fmt.Errorf("normalizer fit: %w", domain.ErrEmptyInput)
	}

	rows := len(x)
	cols := len(x[0])
	n.mean = make([]float64, cols)
	n.std = make([]float64, cols)

	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += x[i][j]
		}
		n.mean[j] = sum / float64(rows)
	}

	for j := 0; j < cols; j++ {
		variance := 0.0
		for i := 0; i < rows; i++ {
			d := x[i][j] - n.mean[j]
			variance += d * d
		}
		n.std[j] = math.Sqrt(variance / float64(rows))
		if n.std[j] < 1e-10 {
			n.std[j] = 1.0
		}
	}

	n.fitted = true
	return nil
}

// Transform applies (x - mean) / std per column and returns a fresh matrix.
func (n *Normalizer) Transform(x [][]float64) ([][]float64, error) {
	if !n.fitted {
		return nil, fmt.Errorf("normalizer transform: %w", domain.ErrNotFitted)
	}

	out := make([][]float64, len(x))
	for i, row := range x {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - n.mean[j]) / n.std[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// FitTransform fits on x and returns the transformed matrix.
func (n *Normalizer) FitTransform(x [][]float64) ([][]float64, error) {
	if err := n.Fit(x); err != nil {
		return nil, err
	}
	return n.Transform(x)
}
