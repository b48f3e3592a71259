package anomaly

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/emiliopalmerini/timesage/internal/domain"
	"github.com/emiliopalmerini/timesage/internal/preprocessing"
)

const (
	minTrainEntries = 20

	forestTrees    = 100
	forestMaxDepth = 10

	// DefaultContamination is the assumed share of anomalous entries, used
	// as the decision threshold over the normalized score.
	DefaultContamination = 0.1

	longSessionMinutes  = 8 * 60
	severeLongMinutes   = 10 * 60
	shortSessionMinutes = 5
)

// Detector wraps an isolation forest with score normalization, severity and
// type classification, and human-readable explanations. Not safe for
// concurrent use; callers guard each instance with its own lock.
type Detector struct {
	forest        *IsolationForest
	contamination float64
	rng           *rand.Rand
	trained       bool
}

// NewDetector creates an untrained detector. A nil rng falls back to a
// time-seeded source.
func NewDetector(contamination float64, rng *rand.Rand) *Detector {
	if contamination <= 0 {
		contamination = DefaultContamination
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Detector{contamination: contamination, rng: rng}
}

// Train fits a fresh isolation forest over the entries' anomaly features.
func (d *Detector) Train(entries []domain.TimesheetEntry) error {
	if len(entries) < minTrainEntries {
		return fmt.Errorf("anomaly train needs at least %d entries, got %d: %w",
			minTrainEntries, len(entries), domain.ErrInsufficientData)
	}

	features := preprocessing.ExtractAnomalyFeatures(entries)
	maxSamples := int(float64(len(entries)) * 0.8)

	forest := NewIsolationForest(forestTrees, maxSamples, forestMaxDepth, d.rng)
	forest.Fit(features)

	d.forest = forest
	d.trained = true
	return nil
}

// Trained reports whether a Train call has succeeded.
func (d *Detector) Trained() bool { return d.trained }

// Detect scores every entry and returns one Anomaly per entry whose
// normalized score exceeds the contamination threshold. An empty input is
// answered with an empty result even before the first train.
func (d *Detector) Detect(entries []domain.TimesheetEntry) ([]domain.Anomaly, error) {
	if len(entries) == 0 {
		return []domain.Anomaly{}, nil
	}
	if !d.trained {
		return nil, fmt.Errorf("anomaly detect: %w", domain.ErrNotTrained)
	}

	features := preprocessing.ExtractAnomalyFeatures(entries)
	raw := d.forest.Predict(features)

	// Min-max normalize, then invert so that larger means more anomalous
	// after the exp(-path) transform.
	minScore := math.Inf(1)
	maxScore := math.Inf(-1)
	for _, s := range raw {
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}
	scoreRange := math.Max(maxScore-minScore, 1e-10)

	anomalies := make([]domain.Anomaly, 0)
	for i, entry := range entries {
		score := 1.0 - (raw[i]-minScore)/scoreRange
		if score <= d.contamination {
			continue
		}

		anomalies = append(anomalies, domain.Anomaly{
			EntryID:  entry.ID,
			Type:     classifyType(entry),
			Severity: determineSeverity(entry, score),
			Reason:   explain(entry, score),
			Score:    score,
		})
	}

	return anomalies, nil
}

// determineSeverity starts from the normalized score and accrues bonuses for
// extreme durations and night-hour work.
func determineSeverity(entry domain.TimesheetEntry, score float64) string {
	severity := score

	if entry.Duration > severeLongMinutes {
		severity += 0.2
	} else if entry.Duration < shortSessionMinutes {
		severity += 0.1
	}

	if entry.HourOfDay < 5 || entry.HourOfDay > 23 {
		severity += 0.15
	}

	switch {
	case severity > 0.8:
		return domain.SeverityHigh
	case severity > 0.5:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func classifyType(entry domain.TimesheetEntry) string {
	switch {
	case entry.Duration > longSessionMinutes || entry.Duration < shortSessionMinutes:
		return domain.AnomalyTypeDuration
	case entry.HourOfDay < 6 || entry.HourOfDay > 23:
		return domain.AnomalyTypeTime
	default:
		return domain.AnomalyTypePattern
	}
}

func explain(entry domain.TimesheetEntry, score float64) string {
	var reasons []string

	if entry.Duration > longSessionMinutes {
		reasons = append(reasons, fmt.Sprintf("very long session: %.1f hours", float64(entry.Duration)/60.0))
	} else if entry.Duration < shortSessionMinutes {
		reasons = append(reasons, fmt.Sprintf("very short session: %d minutes", entry.Duration))
	}

	if entry.HourOfDay < 6 {
		reasons = append(reasons, fmt.Sprintf("night-time work: %d:00", entry.HourOfDay))
	} else if entry.HourOfDay > 23 {
		reasons = append(reasons, fmt.Sprintf("late-evening work: %d:00", entry.HourOfDay))
	}

	if score > 0.7 {
		reasons = append(reasons, "unusual work pattern")
	}

	if len(reasons) == 0 {
		return "anomaly detected"
	}
	return strings.Join(reasons, "; ")
}
