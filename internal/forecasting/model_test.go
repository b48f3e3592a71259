package forecasting

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

func makeWeeks(hours ...float64) []domain.WeekData {
	weeks := make([]domain.WeekData, len(hours))
	for i, h := range hours {
		weeks[i] = domain.WeekData{Year: 2025, Week: i + 1, TotalHours: h}
	}
	return weeks
}

func TestModel_TrainInsufficientData(t *testing.T) {
	m := NewModel(rand.New(rand.NewSource(1)))
	err := m.Train(makeWeeks(10, 20, 30))
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if m.Trained() {
		t.Fatal("model should not be trained after a failed train")
	}
}

func TestModel_PredictBeforeTrain(t *testing.T) {
	m := NewModel(rand.New(rand.NewSource(1)))
	if _, err := m.Predict(makeWeeks(10, 20, 30, 40)); !errors.Is(err, domain.ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestModel_ShortHistoryBypassesModels(t *testing.T) {
	m := NewModel(rand.New(rand.NewSource(1)))
	if err := m.Train(makeWeeks(38, 40, 42, 39, 41, 40, 38, 42, 40, 41, 39, 40)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Three weeks of history takes the naive path regardless of training.
	forecast, err := m.Predict(makeWeeks(30, 36, 42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !floatEquals(forecast.WeeklyHours, 36) {
		t.Errorf("expected weekly 36, got %.6f", forecast.WeeklyHours)
	}
	if !floatEquals(forecast.MonthlyHours, 144) {
		t.Errorf("expected monthly 144, got %.6f", forecast.MonthlyHours)
	}
	if !floatEquals(forecast.Confidence, 0.3) {
		t.Errorf("expected confidence 0.3, got %.3f", forecast.Confidence)
	}
	if forecast.Trend != domain.TrendStable {
		t.Errorf("expected stable trend, got %q", forecast.Trend)
	}
}

func TestModel_ConstantHistory(t *testing.T) {
	weeks := makeWeeks(40, 40, 40, 40, 40, 40, 40, 40, 40, 40, 40, 40)

	m := NewModel(rand.New(rand.NewSource(5)))
	if err := m.Train(weeks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Trained() {
		t.Fatal("model should report trained")
	}

	forecast, err := m.Predict(weeks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both models reproduce the constant, so the blend matches it and the
	// models agree perfectly.
	if math.Abs(forecast.WeeklyHours-40) > 1e-6 {
		t.Errorf("expected weekly 40, got %.6f", forecast.WeeklyHours)
	}
	if math.Abs(forecast.MonthlyHours-160) > 1e-5 {
		t.Errorf("expected monthly 160, got %.6f", forecast.MonthlyHours)
	}
	if forecast.Confidence < 0.99 {
		t.Errorf("expected near-perfect confidence, got %.4f", forecast.Confidence)
	}
	if forecast.Trend != domain.TrendStable {
		t.Errorf("expected stable trend, got %q", forecast.Trend)
	}
}

func TestModel_TrendClassification(t *testing.T) {
	base := []float64{40, 40, 40, 40, 40, 40, 40, 40, 40, 40, 40}

	tests := []struct {
		name     string
		lastWeek float64
		want     string
	}{
		{"increasing", 45, domain.TrendIncreasing},
		{"decreasing", 35, domain.TrendDecreasing},
		{"stable", 41, domain.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weeks := makeWeeks(append(append([]float64{}, base...), tt.lastWeek)...)

			m := NewModel(rand.New(rand.NewSource(9)))
			if err := m.Train(weeks); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			forecast, err := m.Predict(weeks)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if forecast.Trend != tt.want {
				t.Errorf("expected trend %q, got %q", tt.want, forecast.Trend)
			}
		})
	}
}

func TestModel_ProjectBreakdownProportional(t *testing.T) {
	weeks := makeWeeks(40, 40, 40, 40, 40, 40, 40, 40, 40, 40, 40, 40)
	weeks[len(weeks)-1].ProjectStats = []domain.ProjectStats{
		{ProjectID: 1, Hours: 30},
		{ProjectID: 2, Hours: 10},
	}

	m := NewModel(rand.New(rand.NewSource(5)))
	if err := m.Train(weeks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	forecast, err := m.Predict(weeks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shares of the last week (30/40 and 10/40) apply to the blended total.
	if math.Abs(forecast.WeeklyHoursByProject[1]-forecast.WeeklyHours*0.75) > 1e-6 {
		t.Errorf("project 1 share mismatch: %v", forecast.WeeklyHoursByProject)
	}
	if math.Abs(forecast.WeeklyHoursByProject[2]-forecast.WeeklyHours*0.25) > 1e-6 {
		t.Errorf("project 2 share mismatch: %v", forecast.WeeklyHoursByProject)
	}
}

func TestNaiveForecast(t *testing.T) {
	forecast := NaiveForecast(nil)
	if !floatEquals(forecast.WeeklyHours, 0) {
		t.Errorf("empty history: expected 0 weekly hours, got %.3f", forecast.WeeklyHours)
	}
	if !floatEquals(forecast.Confidence, 0.3) {
		t.Errorf("expected confidence 0.3, got %.3f", forecast.Confidence)
	}
	if forecast.Trend != domain.TrendStable {
		t.Errorf("expected stable trend, got %q", forecast.Trend)
	}

	forecast = NaiveForecast(makeWeeks(10, 20))
	if !floatEquals(forecast.WeeklyHours, 15) {
		t.Errorf("expected weekly 15, got %.3f", forecast.WeeklyHours)
	}
	if !floatEquals(forecast.MonthlyHours, 60) {
		t.Errorf("expected monthly 60, got %.3f", forecast.MonthlyHours)
	}
}

func TestApplyProjectGoals(t *testing.T) {
	f := &domain.Forecast{
		WeeklyHours:          20,
		WeeklyHoursByProject: map[int]float64{9: 20},
	}

	ApplyProjectGoals(f, map[int]float64{1: 30, 2: 10})

	if !floatEquals(f.WeeklyHoursByProject[1], 15) {
		t.Errorf("project 1: expected 15, got %.3f", f.WeeklyHoursByProject[1])
	}
	if !floatEquals(f.WeeklyHoursByProject[2], 5) {
		t.Errorf("project 2: expected 5, got %.3f", f.WeeklyHoursByProject[2])
	}
	if _, ok := f.WeeklyHoursByProject[9]; ok {
		t.Error("hours-proportional breakdown should be replaced")
	}
}

func TestApplyProjectGoals_ZeroSumLeavesBreakdown(t *testing.T) {
	f := &domain.Forecast{
		WeeklyHours:          20,
		WeeklyHoursByProject: map[int]float64{9: 20},
	}

	ApplyProjectGoals(f, nil)
	ApplyProjectGoals(f, map[int]float64{1: 0})

	if !floatEquals(f.WeeklyHoursByProject[9], 20) {
		t.Errorf("breakdown should be untouched, got %v", f.WeeklyHoursByProject)
	}
}
