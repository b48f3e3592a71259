package forecasting

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/emiliopalmerini/timesage/internal/domain"
	"github.com/emiliopalmerini/timesage/internal/preprocessing"
)

const (
	minTrainWeeks   = 8
	minPredictWeeks = 4

	treeWeight  = 0.7
	ridgeWeight = 0.3

	treeMaxDepth        = 10
	treeMinSamplesSplit = 5
	ridgeAlpha          = 1.0

	// Weekly hour change beyond which the trend is no longer "stable".
	trendDelta = 2.0

	fallbackConfidence = 0.3
)

// Model blends a regression tree and a ridge regressor over weekly
// aggregates. It is not safe for concurrent use; callers guard each instance
// with its own lock.
type Model struct {
	tree       *DecisionTree
	ridge      *Ridge
	normalizer *preprocessing.Normalizer
	rng        *rand.Rand
	trained    bool
}

// NewModel creates an untrained model. A nil rng falls back to a time-seeded
// source; tests inject a fixed seed for deterministic trees.
func NewModel(rng *rand.Rand) *Model {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Model{rng: rng}
}

// Train fits both models on a chronological 80% prefix of the supplied weeks
// and reports the blended mean absolute error on the 20% suffix. The test
// error is diagnostic only; it never fails the train.
func (m *Model) Train(weeks []domain.WeekData) error {
	if len(weeks) < minTrainWeeks {
		return fmt.Errorf("forecasting train needs at least %d weeks, got %d: %w",
			minTrainWeeks, len(weeks), domain.ErrInsufficientData)
	}

	x, y, err := preprocessing.ExtractTemporalFeatures(weeks)
	if err != nil {
		return err
	}

	splitIdx := int(float64(len(x)) * 0.8)
	xTrain, xTest := x[:splitIdx], x[splitIdx:]
	yTrain, yTest := y[:splitIdx], y[splitIdx:]

	normalizer := preprocessing.NewNormalizer()
	xTrainScaled, err := normalizer.FitTransform(xTrain)
	if err != nil {
		return err
	}
	xTestScaled, err := normalizer.Transform(xTest)
	if err != nil {
		return err
	}

	tree := NewDecisionTree(treeMaxDepth, treeMinSamplesSplit, m.rng)
	if err := tree.Fit(xTrainScaled, yTrain); err != nil {
		return err
	}

	ridge := NewRidge(ridgeAlpha)
	if err := ridge.Fit(xTrainScaled, yTrain); err != nil {
		return err
	}

	m.tree = tree
	m.ridge = ridge
	m.normalizer = normalizer
	m.trained = true

	if len(xTestScaled) > 0 {
		treePred, terr := tree.Predict(xTestScaled)
		ridgePred, rerr := ridge.Predict(xTestScaled)
		if terr == nil && rerr == nil {
			mae := 0.0
			for i := range yTest {
				blended := treeWeight*treePred[i] + ridgeWeight*ridgePred[i]
				mae += math.Abs(blended - yTest[i])
			}
			mae /= float64(len(yTest))
			log.Printf("forecasting model trained on %d weeks, holdout MAE %.2f", splitIdx, mae)
		}
	}

	return nil
}

// Trained reports whether a Train call has succeeded.
func (m *Model) Trained() bool { return m.trained }

// Predict forecasts the next week from the supplied history. With fewer than
// four weeks the trained models are bypassed entirely and a flat average is
// returned at low confidence.
func (m *Model) Predict(weeks []domain.WeekData) (*domain.Forecast, error) {
	if !m.trained {
		return nil, fmt.Errorf("forecasting predict: %w", domain.ErrNotTrained)
	}

	if len(weeks) < minPredictWeeks {
		return naiveForecast(weeks), nil
	}

	x, _, err := preprocessing.ExtractTemporalFeatures(weeks)
	if err != nil {
		return nil, err
	}
	lastRow := x[len(x)-1:]

	scaled, err := m.normalizer.Transform(lastRow)
	if err != nil {
		return nil, err
	}

	treePred, err := m.tree.Predict(scaled)
	if err != nil {
		return nil, err
	}
	ridgePred, err := m.ridge.Predict(scaled)
	if err != nil {
		return nil, err
	}

	blended := treeWeight*treePred[0] + ridgeWeight*ridgePred[0]

	// Agreement between the two models drives confidence.
	spread := math.Abs(treePred[0] - ridgePred[0])
	confidence := math.Min(1.0/(1.0+spread), 1.0)

	trend := domain.TrendStable
	if len(weeks) >= 2 {
		delta := weeks[len(weeks)-1].TotalHours - weeks[len(weeks)-2].TotalHours
		switch {
		case delta > trendDelta:
			trend = domain.TrendIncreasing
		case delta < -trendDelta:
			trend = domain.TrendDecreasing
		}
	}

	byProject := make(map[int]float64)
	lastWeek := weeks[len(weeks)-1]
	if lastWeek.TotalHours > 0 {
		for _, stat := range lastWeek.ProjectStats {
			byProject[stat.ProjectID] = blended * (stat.Hours / lastWeek.TotalHours)
		}
	}

	return &domain.Forecast{
		WeeklyHours:          blended,
		WeeklyHoursByProject: byProject,
		MonthlyHours:         blended * 4.0,
		Confidence:           confidence,
		Trend:                trend,
	}, nil
}

// NaiveForecast averages the supplied weekly hours without consulting any
// trained model. It backs both the short-history predict path and the
// request-level fallback when training is impossible.
func NaiveForecast(weeks []domain.WeekData) *domain.Forecast {
	return naiveForecast(weeks)
}

func naiveForecast(weeks []domain.WeekData) *domain.Forecast {
	avg := 0.0
	if len(weeks) > 0 {
		for _, w := range weeks {
			avg += w.TotalHours
		}
		avg /= float64(len(weeks))
	}
	return &domain.Forecast{
		WeeklyHours:          avg,
		WeeklyHoursByProject: make(map[int]float64),
		MonthlyHours:         avg * 4.0,
		Confidence:           fallbackConfidence,
		Trend:                domain.TrendStable,
	}
}

// ApplyProjectGoals replaces the per-project breakdown with one proportional
// to the caller's weekly goals. A goal set summing to zero leaves the
// breakdown untouched.
func ApplyProjectGoals(f *domain.Forecast, goals map[int]float64) {
	total := 0.0
	for _, g := range goals {
		total += g
	}
	if total <= 0 {
		return
	}

	byProject := make(map[int]float64, len(goals))
	for id, g := range goals {
		byProject[id] = f.WeeklyHours * (g / total)
	}
	f.WeeklyHoursByProject = byProject
}
