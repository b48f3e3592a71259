package domain

// Trend labels for a forecast.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Forecast is the forecasting model's output for the next period.
type Forecast struct {
	WeeklyHours          float64         `json:"weekly_hours"`
	WeeklyHoursByProject map[int]float64 `json:"weekly_hours_by_project"`
	MonthlyHours         float64         `json:"monthly_hours"`
	Confidence           float64         `json:"confidence"` // 0-1
	Trend                string          `json:"trend"`
}

// Anomaly classification labels.
const (
	AnomalyTypeDuration = "duration"
	AnomalyTypeTime     = "time"
	AnomalyTypePattern  = "pattern"

	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Anomaly describes one flagged timesheet entry.
type Anomaly struct {
	EntryID  int     `json:"entry_id"`
	Type     string  `json:"type"`
	Severity string  `json:"severity"`
	Reason   string  `json:"reason"`
	Score    float64 `json:"score"` // 0-1, higher is more anomalous
}

// Recommendation is one heuristic suggestion produced by the recommendation engine.
type Recommendation struct {
	Type           string   `json:"type"` // "time_allocation" | "project_priority" | "schedule_optimization"
	Priority       string   `json:"priority"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	ActionItems    []string `json:"action_items"`
	ExpectedImpact string   `json:"expected_impact"`
	Confidence     float64  `json:"confidence"`
}

// OptimalWorkHours is the suggested daily working window.
type OptimalWorkHours struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	Days  []int `json:"days"` // 0 = Sunday
}

// BreakRecommendations suggests break cadence based on observed sessions.
type BreakRecommendations struct {
	OptimalBreakDuration int     `json:"optimal_break_duration"` // minutes
	BreakFrequency       float64 `json:"break_frequency"`        // hours between breaks
}

// EfficiencyPoint is the observed work ratio for one hour of the day.
type EfficiencyPoint struct {
	Hour       int     `json:"hour"`
	Efficiency float64 `json:"efficiency"`
}

// ProductivityReport is the rule-based productivity analyzer's output.
type ProductivityReport struct {
	OptimalWorkHours     OptimalWorkHours     `json:"optimal_work_hours"`
	EfficiencyByTime     []EfficiencyPoint    `json:"efficiency_by_time"`
	BreakRecommendations BreakRecommendations `json:"break_recommendations"`
}

// AnalysisOutput is the envelope returned by the analysis endpoints. Only the
// sections relevant to the invoked endpoint are populated.
type AnalysisOutput struct {
	Forecasting     *Forecast           `json:"forecasting,omitempty"`
	Anomalies       []Anomaly           `json:"anomalies,omitempty"`
	Recommendations []Recommendation    `json:"recommendations,omitempty"`
	Productivity    *ProductivityReport `json:"productivity,omitempty"`
}
