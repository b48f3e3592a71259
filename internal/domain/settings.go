package domain

import "encoding/json"

// ProjectSettings holds per-project tuning supplied by the caller.
type ProjectSettings struct {
	Enabled            bool     `json:"enabled"`
	WeeklyGoalHours    *float64 `json:"weekly_goal_hours,omitempty"`
	PaymentPeriodWeeks *int     `json:"payment_period_weeks,omitempty"`
}

// UserPreferences constrains scheduling suggestions. Hours are 0-23.
type UserPreferences struct {
	SleepStartHour         int             `json:"sleep_start_hour"`
	SleepEndHour           int             `json:"sleep_end_hour"`
	NoWorkBeforeSleepHours int             `json:"no_work_before_sleep_hours"`
	WorkOnWeekends         bool            `json:"work_on_weekends"`
	ProjectGoals           map[int]float64 `json:"project_goals"` // project ID -> weekly goal hours
}

// UnmarshalJSON fills in defaults for fields the payload omits.
func (p *UserPreferences) UnmarshalJSON(data []byte) error {
	type alias UserPreferences
	raw := struct {
		SleepEndHour           *int `json:"sleep_end_hour"`
		NoWorkBeforeSleepHours *int `json:"no_work_before_sleep_hours"`
		*alias
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.SleepEndHour == nil {
		p.SleepEndHour = 8
	} else {
		p.SleepEndHour = *raw.SleepEndHour
	}
	if raw.NoWorkBeforeSleepHours == nil {
		p.NoWorkBeforeSleepHours = 2
	} else {
		p.NoWorkBeforeSleepHours = *raw.NoWorkBeforeSleepHours
	}
	return nil
}

// Settings is the caller-supplied configuration accompanying an analysis request.
type Settings struct {
	RatePerMinute   float64                 `json:"rate_per_minute"`
	ProjectSettings map[int]ProjectSettings `json:"project_settings"`
	UserPreferences *UserPreferences        `json:"user_preferences,omitempty"`
}

// AnalysisContext optionally narrows a request to a target week or project.
type AnalysisContext struct {
	TargetWeek      *int `json:"target_week,omitempty"`
	TargetYear      *int `json:"target_year,omitempty"`
	TargetProjectID *int `json:"target_project_id,omitempty"`
}

// AnalysisInput is the full payload consumed by the analysis endpoints.
type AnalysisInput struct {
	Timesheets []TimesheetEntry `json:"timesheets"`
	Projects   []Project        `json:"projects"`
	Weeks      []WeekData       `json:"weeks"`
	Settings   Settings         `json:"settings"`
	Context    *AnalysisContext `json:"context,omitempty"`
}
