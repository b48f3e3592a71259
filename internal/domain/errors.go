package domain

import "errors"

// Error taxonomy shared by the statistical components. All are recoverable at
// the request level; none is process-fatal.
var (
	// ErrInsufficientData means the input is below the minimum sample
	// threshold for the requested stage.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNotTrained means predict/detect was called before a successful train.
	ErrNotTrained = errors.New("model not trained")

	// ErrSingularMatrix means the regression system is degenerate.
	ErrSingularMatrix = errors.New("singular matrix")

	// ErrEmptyInput means a zero-row matrix was handed to a fit.
	ErrEmptyInput = errors.New("empty input")

	// ErrNotFitted means a transform was requested before fit.
	ErrNotFitted = errors.New("normalizer not fitted")
)
