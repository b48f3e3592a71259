// Package learning adapts future predictions from the errors of past ones.
package learning

import (
	"math"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

// DefaultHistorySize bounds the feedback history; the oldest record is
// evicted first once the cap is reached.
const DefaultHistorySize = 1000

// Maximum multiplicative adjustment applied per correction.
const maxCorrection = 0.2

// Module keeps a bounded FIFO history of prediction errors per category and
// derives a correction factor and a confidence scaling from it. Statistics
// are recomputed on every query; there is no separate train phase. Not safe
// for concurrent use; callers guard each instance with its own lock.
type Module struct {
	errors    []domain.PredictionError
	maxErrors int
}

func NewModule(maxErrors int) *Module {
	if maxErrors <= 0 {
		maxErrors = DefaultHistorySize
	}
	return &Module{maxErrors: maxErrors}
}

// Record appends one feedback record, evicting the oldest beyond the cap.
func (m *Module) Record(err domain.PredictionError) {
	m.errors = append(m.errors, err)
	if len(m.errors) > m.maxErrors {
		m.errors = m.errors[1:]
	}
}

// Len returns the number of retained records.
func (m *Module) Len() int { return len(m.errors) }

// CorrectionFactor returns a multiplier for future predictions in the given
// category. Only a systematic bias (|mean error| above 10% of the mean
// absolute error) triggers an adjustment, and the adjustment is capped at
// 20% in either direction. Without matching history the factor is 1.0.
func (m *Module) CorrectionFactor(category string) float64 {
	matching := m.filter(category)
	if len(matching) == 0 {
		return 1.0
	}

	avgAbs := 0.0
	bias := 0.0
	for _, e := range matching {
		avgAbs += math.Abs(e.Error)
		bias += e.Error
	}
	avgAbs /= float64(len(matching))
	bias /= float64(len(matching))

	avgPct := 0.0
	pctCount := 0
	for _, e := range matching {
		if e.ActualValue != 0 {
			avgPct += math.Abs(e.Error / e.ActualValue)
			pctCount++
		}
	}
	if pctCount > 0 {
		avgPct /= float64(pctCount)
	}

	if math.Abs(bias) > avgAbs*0.1 {
		sign := 1.0
		if bias < 0 {
			sign = -1.0
		}
		return 1.0 - sign*math.Min(avgPct, maxCorrection)
	}
	return 1.0
}

// ConfidenceAdjustment scales a model's self-reported confidence by the
// volatility of its past error magnitudes: stable errors keep the factor
// near 1, volatile ones shrink it toward the 0.5 floor.
func (m *Module) ConfidenceAdjustment(category string) float64 {
	matching := m.filter(category)
	if len(matching) == 0 {
		return 1.0
	}

	avgAbs := 0.0
	for _, e := range matching {
		avgAbs += math.Abs(e.Error)
	}
	avgAbs /= float64(len(matching))
	if avgAbs == 0 {
		return 1.0
	}

	variance := 0.0
	for _, e := range matching {
		d := math.Abs(e.Error) - avgAbs
		variance += d * d
	}
	variance /= float64(len(matching))

	cv := math.Sqrt(variance) / avgAbs
	return math.Min(math.Max(1.0/(1.0+cv), 0.5), 1.0)
}

// AnalyzePatterns returns the mean absolute error per category across the
// retained history.
func (m *Module) AnalyzePatterns() map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, e := range m.errors {
		sums[e.Category] += math.Abs(e.Error)
		counts[e.Category]++
	}

	patterns := make(map[string]float64, len(sums))
	for category, sum := range sums {
		patterns[category] = sum / float64(counts[category])
	}
	return patterns
}

func (m *Module) filter(category string) []domain.PredictionError {
	var matching []domain.PredictionError
	for _, e := range m.errors {
		if e.Category == category {
			matching = append(matching, e)
		}
	}
	return matching
}
