package preprocessing

import (
	"errors"
	"math"
	"testing"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 0.000001
}

func makeWeeks(hours ...float64) []domain.WeekData {
	weeks := make([]domain.WeekData, len(hours))
	for i, h := range hours {
		weeks[i] = domain.WeekData{
			Year:       2025,
			Week:       i + 1,
			TotalHours: h,
		}
	}
	return weeks
}

func TestExtractTemporalFeatures_Empty(t *testing.T) {
	_, _, err := ExtractTemporalFeatures(nil)
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestExtractTemporalFeatures_Shape(t *testing.T) {
	weeks := makeWeeks(10, 20, 30, 40, 50, 60, 70, 80, 90, 100)

	x, y, err := ExtractTemporalFeatures(weeks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(x) != len(weeks) {
		t.Fatalf("expected %d rows, got %d", len(weeks), len(x))
	}
	if len(y) != len(weeks) {
		t.Fatalf("expected %d targets, got %d", len(weeks), len(y))
	}
	for i, row := range x {
		if len(row) != TemporalFeatureCount {
			t.Fatalf("row %d: expected %d columns, got %d", i, TemporalFeatureCount, len(row))
		}
		if !floatEquals(y[i], weeks[i].TotalHours) {
			t.Errorf("target %d: expected %.1f, got %.1f", i, weeks[i].TotalHours, y[i])
		}
	}
}

func TestExtractTemporalFeatures_CalendarColumns(t *testing.T) {
	weeks := []domain.WeekData{{Year: 2025, Week: 9, TotalHours: 40}}

	x, _, err := ExtractTemporalFeatures(weeks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := x[0]
	if !floatEquals(row[0], 9) {
		t.Errorf("expected week 9, got %.1f", row[0])
	}
	if !floatEquals(row[1], 2025) {
		t.Errorf("expected year 2025, got %.1f", row[1])
	}
	// Week 9 maps to approximate month (9-1)/4 + 1 = 3.
	if !floatEquals(row[2], 3) {
		t.Errorf("expected month 3, got %.1f", row[2])
	}
	if !floatEquals(row[3], math.Sin(2*math.Pi*9/52)) {
		t.Errorf("unexpected week sine: %.6f", row[3])
	}
	if !floatEquals(row[6], math.Cos(2*math.Pi*3/12)) {
		t.Errorf("unexpected month cosine: %.6f", row[6])
	}
}

func TestExtractTemporalFeatures_HistoryColumns(t *testing.T) {
	weeks := makeWeeks(10, 20, 30, 40, 50, 60, 70, 80, 90)

	x, _, err := ExtractTemporalFeatures(weeks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// First week has no history; all history columns are zero sentinels.
	for _, col := range []int{7, 8, 9, 10, 11} {
		if !floatEquals(x[0][col], 0) {
			t.Errorf("row 0 col %d: expected 0, got %.3f", col, x[0][col])
		}
	}

	// Second week sees the previous week's hours but no moving averages yet.
	if !floatEquals(x[1][7], 10) {
		t.Errorf("row 1 prev hours: expected 10, got %.3f", x[1][7])
	}
	if !floatEquals(x[1][8], 0) {
		t.Errorf("row 1 4-week MA: expected 0, got %.3f", x[1][8])
	}

	// Fifth week: 4-week MA over weeks 1-4, trend and volatility over the same.
	if !floatEquals(x[4][8], 25) {
		t.Errorf("row 4 4-week MA: expected 25, got %.3f", x[4][8])
	}
	if !floatEquals(x[4][10], 7.5) {
		t.Errorf("row 4 trend: expected 7.5, got %.3f", x[4][10])
	}
	if !floatEquals(x[4][11], math.Sqrt(125)) {
		t.Errorf("row 4 volatility: expected %.4f, got %.4f", math.Sqrt(125), x[4][11])
	}

	// Ninth week: 8-week MA over weeks 1-8.
	if !floatEquals(x[8][9], 45) {
		t.Errorf("row 8 8-week MA: expected 45, got %.3f", x[8][9])
	}
}

func TestExtractAnomalyFeatures_Empty(t *testing.T) {
	features := ExtractAnomalyFeatures(nil)
	if features == nil {
		t.Fatal("expected empty matrix, got nil")
	}
	if len(features) != 0 {
		t.Fatalf("expected 0 rows, got %d", len(features))
	}
}

func TestExtractAnomalyFeatures_Columns(t *testing.T) {
	projectID := 7
	entries := []domain.TimesheetEntry{
		{ID: 1, Duration: 240, HourOfDay: 12, DayOfWeek: 3, ProjectID: &projectID, Tags: []string{"a", "b"}},
		{ID: 2, Duration: 480, HourOfDay: 9, DayOfWeek: 1, ProjectID: &projectID},
	}

	features := ExtractAnomalyFeatures(entries)
	if len(features) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(features))
	}

	row := features[0]
	if len(row) != AnomalyFeatureCount {
		t.Fatalf("expected %d columns, got %d", AnomalyFeatureCount, len(row))
	}
	if !floatEquals(row[0], 0.5) {
		t.Errorf("duration column: expected 0.5, got %.3f", row[0])
	}
	if !floatEquals(row[1], 12.0/23.0) {
		t.Errorf("hour column: expected %.4f, got %.4f", 12.0/23.0, row[1])
	}
	if !floatEquals(row[2], 0.5) {
		t.Errorf("day column: expected 0.5, got %.3f", row[2])
	}
	// Project mean duration is (240+480)/2 = 360.
	if !floatEquals(row[3], 240.0/360.0) {
		t.Errorf("ratio column: expected %.4f, got %.4f", 240.0/360.0, row[3])
	}
	if !floatEquals(row[4], 2) {
		t.Errorf("tag column: expected 2, got %.1f", row[4])
	}
}

func TestExtractAnomalyFeatures_Caps(t *testing.T) {
	entries := []domain.TimesheetEntry{
		{ID: 1, Duration: 600, HourOfDay: 23, DayOfWeek: 6},
	}

	row := ExtractAnomalyFeatures(entries)[0]
	if !floatEquals(row[0], 1.0) {
		t.Errorf("duration over 8h should cap at 1.0, got %.3f", row[0])
	}
	if !floatEquals(row[1], 1.0) {
		t.Errorf("hour 23 should map to 1.0, got %.3f", row[1])
	}
	// No project id: the entry compares against its own duration.
	if !floatEquals(row[3], 1.0) {
		t.Errorf("ratio without project should be 1.0, got %.3f", row[3])
	}
}

func TestExtractAnomalyFeatures_ZeroDurationWithoutProject(t *testing.T) {
	entries := []domain.TimesheetEntry{{ID: 1, Duration: 0, HourOfDay: 10}}

	row := ExtractAnomalyFeatures(entries)[0]
	if !floatEquals(row[3], 1.0) {
		t.Errorf("zero-duration fallback ratio should be 1.0, got %.3f", row[3])
	}
}
