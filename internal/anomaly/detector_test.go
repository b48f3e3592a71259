package anomaly

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

func normalEntries(n int) []domain.TimesheetEntry {
	entries := make([]domain.TimesheetEntry, n)
	for i := range entries {
		entries[i] = domain.TimesheetEntry{
			ID:        i + 1,
			Duration:  60,
			HourOfDay: 10,
			DayOfWeek: 2,
		}
	}
	return entries
}

func TestDetector_TrainInsufficientData(t *testing.T) {
	d := NewDetector(DefaultContamination, rand.New(rand.NewSource(1)))
	err := d.Train(normalEntries(19))
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if d.Trained() {
		t.Fatal("detector should not report trained")
	}
}

func TestDetector_DetectEmptyBeforeTrain(t *testing.T) {
	d := NewDetector(DefaultContamination, rand.New(rand.NewSource(1)))

	anomalies, err := d.Detect(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anomalies == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(anomalies) != 0 {
		t.Fatalf("expected no anomalies, got %d", len(anomalies))
	}
}

func TestDetector_DetectBeforeTrain(t *testing.T) {
	d := NewDetector(DefaultContamination, rand.New(rand.NewSource(1)))
	if _, err := d.Detect(normalEntries(5)); !errors.Is(err, domain.ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestDetector_FlagsInjectedOutlier(t *testing.T) {
	entries := normalEntries(20)
	entries = append(entries, domain.TimesheetEntry{
		ID:        99,
		Duration:  600,
		HourOfDay: 2,
		DayOfWeek: 2,
	})

	d := NewDetector(DefaultContamination, rand.New(rand.NewSource(42)))
	if err := d.Train(entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	anomalies, err := d.Detect(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var outlier *domain.Anomaly
	for i := range anomalies {
		if anomalies[i].EntryID == 99 {
			outlier = &anomalies[i]
			break
		}
	}
	if outlier == nil {
		t.Fatalf("injected entry not flagged; %d anomalies: %v", len(anomalies), anomalies)
	}

	if outlier.Type != domain.AnomalyTypeDuration && outlier.Type != domain.AnomalyTypeTime {
		t.Errorf("expected duration or time type, got %q", outlier.Type)
	}
	// Ten hours at 2am accrues the night-hour severity bonus.
	if outlier.Severity == domain.SeverityLow {
		t.Errorf("expected elevated severity, got %q", outlier.Severity)
	}
	if !strings.Contains(outlier.Reason, "very long session") {
		t.Errorf("expected long-session reason, got %q", outlier.Reason)
	}
	if !strings.Contains(outlier.Reason, "night-time work") {
		t.Errorf("expected night-time reason, got %q", outlier.Reason)
	}
	if outlier.Score <= DefaultContamination {
		t.Errorf("flagged score must exceed the contamination threshold, got %.4f", outlier.Score)
	}
}

func TestDetector_SeverityBuckets(t *testing.T) {
	tests := []struct {
		name  string
		entry domain.TimesheetEntry
		score float64
		want  string
	}{
		{"low score plain entry", domain.TimesheetEntry{Duration: 60, HourOfDay: 10}, 0.2, domain.SeverityLow},
		{"medium from score alone", domain.TimesheetEntry{Duration: 60, HourOfDay: 10}, 0.6, domain.SeverityMedium},
		{"high from score alone", domain.TimesheetEntry{Duration: 60, HourOfDay: 10}, 0.9, domain.SeverityHigh},
		{"long session bonus", domain.TimesheetEntry{Duration: 601, HourOfDay: 10}, 0.45, domain.SeverityMedium},
		{"short session bonus", domain.TimesheetEntry{Duration: 3, HourOfDay: 10}, 0.45, domain.SeverityMedium},
		{"night bonus stacks", domain.TimesheetEntry{Duration: 601, HourOfDay: 3}, 0.5, domain.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineSeverity(tt.entry, tt.score); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClassifyType(t *testing.T) {
	tests := []struct {
		name  string
		entry domain.TimesheetEntry
		want  string
	}{
		{"long duration", domain.TimesheetEntry{Duration: 481, HourOfDay: 10}, domain.AnomalyTypeDuration},
		{"short duration", domain.TimesheetEntry{Duration: 4, HourOfDay: 10}, domain.AnomalyTypeDuration},
		{"night hour", domain.TimesheetEntry{Duration: 60, HourOfDay: 5}, domain.AnomalyTypeTime},
		{"plain pattern", domain.TimesheetEntry{Duration: 60, HourOfDay: 10}, domain.AnomalyTypePattern},
		{"duration wins over hour", domain.TimesheetEntry{Duration: 600, HourOfDay: 2}, domain.AnomalyTypeDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyType(tt.entry); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExplain_Fallback(t *testing.T) {
	entry := domain.TimesheetEntry{Duration: 60, HourOfDay: 10}
	if got := explain(entry, 0.2); got != "anomaly detected" {
		t.Errorf("expected generic reason, got %q", got)
	}
}

func TestIsolationForest_RawScoreOrdering(t *testing.T) {
	// A spread-out cluster plus one far-away point: the easy-to-isolate
	// point must receive the largest raw score.
	features := make([][]float64, 0, 30)
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 29; i++ {
		features = append(features, []float64{0.1 + rng.Float64()*0.1, 0.4 + rng.Float64()*0.1})
	}
	features = append(features, []float64{0.95, 0.02})

	forest := NewIsolationForest(100, 24, 10, rand.New(rand.NewSource(7)))
	forest.Fit(features)
	scores := forest.Predict(features)

	outlier := scores[len(scores)-1]
	for i := 0; i < len(scores)-1; i++ {
		if scores[i] >= outlier {
			t.Fatalf("cluster point %d scored %.6f, outlier %.6f", i, scores[i], outlier)
		}
	}

	for i, s := range scores {
		if s <= 0 || s > 1 {
			t.Errorf("score %d outside (0,1]: %.6f", i, s)
		}
	}
}
