package learning

import (
	"fmt"
	"math"
	"testing"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 0.000001
}

func record(category string, predicted, actual float64) domain.PredictionError {
	return domain.PredictionError{
		Category:       category,
		PredictedValue: predicted,
		ActualValue:    actual,
		Error:          predicted - actual,
	}
}

func TestModule_NoHistoryIsNeutral(t *testing.T) {
	m := NewModule(10)
	if f := m.CorrectionFactor(domain.CategoryForecasting); !floatEquals(f, 1.0) {
		t.Errorf("expected factor 1.0, got %.4f", f)
	}
	if a := m.ConfidenceAdjustment(domain.CategoryForecasting); !floatEquals(a, 1.0) {
		t.Errorf("expected adjustment 1.0, got %.4f", a)
	}
}

func TestModule_ConsistentOverPredictionShrinksFactor(t *testing.T) {
	m := NewModule(100)
	for i := 0; i < 5; i++ {
		m.Record(record(domain.CategoryForecasting, 50, 40))
	}

	f := m.CorrectionFactor(domain.CategoryForecasting)
	if f >= 1.0 {
		t.Errorf("consistent over-prediction should shrink the factor, got %.4f", f)
	}
	// Percentage error 10/40 = 25% is capped at 20%.
	if !floatEquals(f, 0.8) {
		t.Errorf("expected capped factor 0.8, got %.4f", f)
	}
}

func TestModule_ConsistentUnderPredictionGrowsFactor(t *testing.T) {
	m := NewModule(100)
	for i := 0; i < 5; i++ {
		m.Record(record(domain.CategoryForecasting, 36, 40))
	}

	f := m.CorrectionFactor(domain.CategoryForecasting)
	// Negative bias raises the factor by the 10% mean percentage error.
	if !floatEquals(f, 1.1) {
		t.Errorf("expected factor 1.1, got %.4f", f)
	}
}

func TestModule_AlternatingErrorsAreNeutral(t *testing.T) {
	m := NewModule(100)
	for i := 0; i < 5; i++ {
		if i%2 == 0 {
			m.Record(record(domain.CategoryForecasting, 44, 40))
		} else {
			m.Record(record(domain.CategoryForecasting, 36, 40))
		}
	}
	// Balance the odd record count to a zero net bias.
	m.Record(record(domain.CategoryForecasting, 36, 40))

	if f := m.CorrectionFactor(domain.CategoryForecasting); !floatEquals(f, 1.0) {
		t.Errorf("zero net bias should be neutral, got %.4f", f)
	}
}

func TestModule_CategoriesAreIndependent(t *testing.T) {
	m := NewModule(100)
	for i := 0; i < 5; i++ {
		m.Record(record(domain.CategoryForecasting, 50, 40))
	}

	if f := m.CorrectionFactor("anomaly"); !floatEquals(f, 1.0) {
		t.Errorf("unrelated category should stay neutral, got %.4f", f)
	}
}

func TestModule_ConfidenceAdjustment(t *testing.T) {
	stable := NewModule(100)
	for i := 0; i < 6; i++ {
		stable.Record(record(domain.CategoryForecasting, 45, 40))
	}
	// Identical error magnitudes: zero variance keeps the adjustment at 1.
	if a := stable.ConfidenceAdjustment(domain.CategoryForecasting); !floatEquals(a, 1.0) {
		t.Errorf("stable errors: expected 1.0, got %.4f", a)
	}

	volatile := NewModule(100)
	magnitudes := []float64{1, 30, 2, 40, 1, 50}
	for _, mag := range magnitudes {
		volatile.Record(record(domain.CategoryForecasting, 40+mag, 40))
	}
	a := volatile.ConfidenceAdjustment(domain.CategoryForecasting)
	if a >= 1.0 {
		t.Errorf("volatile errors should shrink confidence, got %.4f", a)
	}
	if a < 0.5 {
		t.Errorf("adjustment floor is 0.5, got %.4f", a)
	}
}

func TestModule_ZeroErrorsKeepConfidence(t *testing.T) {
	m := NewModule(100)
	for i := 0; i < 3; i++ {
		m.Record(record(domain.CategoryForecasting, 40, 40))
	}
	if a := m.ConfidenceAdjustment(domain.CategoryForecasting); !floatEquals(a, 1.0) {
		t.Errorf("zero errors: expected 1.0, got %.4f", a)
	}
}

func TestModule_FIFOEviction(t *testing.T) {
	m := NewModule(3)
	for i := 0; i < 5; i++ {
		m.Record(record(fmt.Sprintf("cat-%d", i), 10, 5))
	}

	if m.Len() != 3 {
		t.Fatalf("expected 3 retained records, got %d", m.Len())
	}
	// The two oldest categories were evicted.
	if f := m.CorrectionFactor("cat-0"); !floatEquals(f, 1.0) {
		t.Errorf("evicted category should be neutral, got %.4f", f)
	}
	if f := m.CorrectionFactor("cat-4"); floatEquals(f, 1.0) {
		t.Errorf("retained category should adjust, got %.4f", f)
	}
}

func TestModule_AnalyzePatterns(t *testing.T) {
	m := NewModule(100)
	m.Record(record(domain.CategoryForecasting, 50, 40))
	m.Record(record(domain.CategoryForecasting, 30, 40))
	m.Record(record("anomaly", 2, 1))

	patterns := m.AnalyzePatterns()
	if !floatEquals(patterns[domain.CategoryForecasting], 10) {
		t.Errorf("expected MAE 10, got %.3f", patterns[domain.CategoryForecasting])
	}
	if !floatEquals(patterns["anomaly"], 1) {
		t.Errorf("expected MAE 1, got %.3f", patterns["anomaly"])
	}
}
