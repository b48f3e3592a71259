// Package preprocessing turns raw timesheet records into numeric feature
// matrices and applies per-column standardization.
package preprocessing

import (
	"fmt"
	"math"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

// Feature counts produced by the extractors.
const (
	TemporalFeatureCount = 13
	AnomalyFeatureCount  = 5
)

// ExtractTemporalFeatures builds one 13-column feature row per week plus a
// parallel target vector of weekly hours. History-dependent columns (previous
// week, moving averages, trend, volatility) use 0 while not enough history has
// accumulated; only a fully empty input is an error.
func ExtractTemporalFeatures(weeks []domain.WeekData) ([][]float64, []float64, error) {
	if len(weeks) == 0 {
		return nil, nil, fmt.Errorf("extract temporal features: %w", domain.ErrInsufficientData)
	}

	features := make([][]float64, len(weeks))
	targets := make([]float64, len(weeks))

	for i, week := range weeks {
		row := make([]float64, TemporalFeatureCount)

		row[0] = float64(week.Week)
		row[1] = float64(week.Year)

		// Approximate month from the week number.
		month := (week.Week-1)/4 + 1
		row[2] = float64(month)

		// Cyclical encodings.
		row[3] = math.Sin(2 * math.Pi * float64(week.Week) / 52.0)
		row[4] = math.Cos(2 * math.Pi * float64(week.Week) / 52.0)
		row[5] = math.Sin(2 * math.Pi * float64(month) / 12.0)
		row[6] = math.Cos(2 * math.Pi * float64(month) / 12.0)

		if i > 0 {
			row[7] = weeks[i-1].TotalHours
		}
		if i >= 4 {
			row[8] = meanHours(weeks[i-4 : i])
		}
		if i >= 8 {
			row[9] = meanHours(weeks[i-8 : i])
		}

		// Simple trend and volatility over the trailing four weeks.
		if i >= 4 {
			recent := weeks[i-4 : i]
			row[10] = (recent[len(recent)-1].TotalHours - recent[0].TotalHours) / float64(len(recent))
			row[11] = stdHours(recent)
		}

		features[i] = row
		targets[i] = week.TotalHours
	}

	return features, targets, nil
}

// ExtractAnomalyFeatures builds one 5-column row per entry: duration against
// an 8-hour ceiling, hour-of-day and day-of-week scaled to [0,1], the ratio of
// the entry's duration to its project's mean duration, and the tag count.
// Empty input yields a zero-row matrix rather than an error.
func ExtractAnomalyFeatures(entries []domain.TimesheetEntry) [][]float64 {
	if len(entries) == 0 {
		return [][]float64{}
	}

	projectAvg := projectMeanDurations(entries)

	features := make([][]float64, len(entries))
	for i, entry := range entries {
		row := make([]float64, AnomalyFeatureCount)

		row[0] = math.Min(float64(entry.Duration)/(8.0*60.0), 1.0)
		row[1] = float64(entry.HourOfDay) / 23.0
		row[2] = float64(entry.DayOfWeek) / 6.0

		// Ratio against the project's mean duration; entries without a
		// project compare against themselves.
		avg := float64(entry.Duration)
		if entry.ProjectID != nil {
			if v, ok := projectAvg[*entry.ProjectID]; ok {
				avg = v
			}
		}
		if avg > 0 {
			row[3] = math.Min(float64(entry.Duration)/avg, 5.0)
		} else {
			row[3] = 1.0
		}

		row[4] = float64(len(entry.Tags))

		features[i] = row
	}

	return features
}

func projectMeanDurations(entries []domain.TimesheetEntry) map[int]float64 {
	sums := make(map[int]int)
	counts := make(map[int]int)
	for _, entry := range entries {
		if entry.ProjectID == nil {
			continue
		}
		sums[*entry.ProjectID] += entry.Duration
		counts[*entry.ProjectID]++
	}

	avg := make(map[int]float64, len(sums))
	for id, sum := range sums {
		avg[id] = float64(sum) / float64(counts[id])
	}
	return avg
}

func meanHours(weeks []domain.WeekData) float64 {
	sum := 0.0
	for _, w := range weeks {
		sum += w.TotalHours
	}
	return sum / float64(len(weeks))
}

func stdHours(weeks []domain.WeekData) float64 {
	mean := meanHours(weeks)
	variance := 0.0
	for _, w := range weeks {
		d := w.TotalHours - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(weeks)))
}
