// Package forecasting predicts next-period working hours with a blend of a
// randomized regression tree and an L2-regularized linear model.
package forecasting

import (
	"fmt"
	"math"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

// Ridge is a linear model with L2 regularization, solved through the normal
// equations. The fit is deliberately two-step: weights come from the
// regularized solve, the bias is derived afterwards from the column means.
type Ridge struct {
	alpha   float64
	weights []float64
	bias    float64
	trained bool
}

func NewRidge(alpha float64) *Ridge {
	return &Ridge{alpha: alpha}
}

// Fit solves (XᵀX + αI) w = Xᵀy with Gaussian elimination, then sets
// bias = mean(y) − mean(X)·w.
func (r *Ridge) Fit(x [][]float64, y []float64) error {
	samples := len(x)
	if samples == 0 || len(x[0]) == 0 {
		return fmt.Errorf("ridge fit: %w", domain.ErrEmptyInput)
	}
	features := len(x[0])

	xtx := make([][]float64, features)
	for i := range xtx {
		xtx[i] = make([]float64, features)
		for j := 0; j < features; j++ {
			sum := 0.0
			for k := 0; k < samples; k++ {
				sum += x[k][i] * x[k][j]
			}
			xtx[i][j] = sum
		}
		xtx[i][i] += r.alpha
	}

	xty := make([]float64, features)
	for i := 0; i < features; i++ {
		sum := 0.0
		for k := 0; k < samples; k++ {
			sum += x[k][i] * y[k]
		}
		xty[i] = sum
	}

	weights, err := solveLinearSystem(xtx, xty)
	if err != nil {
		return fmt.Errorf("ridge fit: %w", err)
	}
	r.weights = weights

	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(samples)

	predMean := 0.0
	for j := 0; j < features; j++ {
		colMean := 0.0
		for i := 0; i < samples; i++ {
			colMean += x[i][j]
		}
		colMean /= float64(samples)
		predMean += colMean * weights[j]
	}
	r.bias = yMean - predMean

	r.trained = true
	return nil
}

// Predict returns bias + X·w per row.
func (r *Ridge) Predict(x [][]float64) ([]float64, error) {
	if !r.trained {
		return nil, fmt.Errorf("ridge predict: %w", domain.ErrNotTrained)
	}

	out := make([]float64, len(x))
	for i, row := range x {
		pred := r.bias
		for j, v := range row {
			pred += v * r.weights[j]
		}
		out[i] = pred
	}
	return out, nil
}

// Weights returns a copy of the fitted weight vector.
func (r *Ridge) Weights() []float64 {
	w := make([]float64, len(r.weights))
	copy(w, r.weights)
	return w
}

// solveLinearSystem runs Gaussian elimination with partial pivoting over an
// augmented copy of the system. A pivot below 1e-10 means the matrix is
// effectively singular.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	aug := make([][]float64, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]float64, n+1)
		copy(aug[i], a[i])
		aug[i][n] = b[i]
	}

	for i := 0; i < n; i++ {
		// Pick the row with the largest absolute value in this column.
		maxRow := i
		maxVal := math.Abs(aug[i][i])
		for k := i + 1; k < n; k++ {
			if math.Abs(aug[k][i]) > maxVal {
				maxVal = math.Abs(aug[k][i])
				maxRow = k
			}
		}
		if maxRow != i {
			aug[i], aug[maxRow] = aug[maxRow], aug[i]
		}

		pivot := aug[i][i]
		if math.Abs(pivot) < 1e-10 {
			return nil, domain.ErrSingularMatrix
		}

		for k := i + 1; k < n; k++ {
			factor := aug[k][i] / pivot
			for j := i; j <= n; j++ {
				aug[k][j] -= factor * aug[i][j]
			}
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := aug[i][n]
		for j := i + 1; j < n; j++ {
			sum -= aug[i][j] * x[j]
		}
		x[i] = sum / aug[i][i]
	}
	return x, nil
}
