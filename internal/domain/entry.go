package domain

// TimesheetEntry is one recorded work session. Entries are immutable once
// ingested; the calendar fields are derived by the caller at ingest time.
type TimesheetEntry struct {
	ID           int      `json:"id"`
	Begin        string   `json:"begin"`
	End          *string  `json:"end,omitempty"`
	Duration     int      `json:"duration_minutes"` // minutes
	ProjectID    *int     `json:"project_id,omitempty"`
	ProjectName  string   `json:"project_name"`
	ActivityID   *int     `json:"activity_id,omitempty"`
	ActivityName string   `json:"activity_name"`
	Description  *string  `json:"description,omitempty"`
	Tags         []string `json:"tags"`
	DayOfWeek    int      `json:"day_of_week"`
	HourOfDay    int      `json:"hour_of_day"`
	WeekOfYear   int      `json:"week_of_year"`
	Month        int      `json:"month"`
	Year         int      `json:"year"`
}

// Project holds per-project aggregates supplied by the caller.
type Project struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	TotalHours      float64 `json:"total_hours"`
	AvgHoursPerWeek float64 `json:"avg_hours_per_week"`
	WeeksCount      int     `json:"weeks_count"`
}

// ProjectStats is one project's share of a week.
type ProjectStats struct {
	ProjectID int     `json:"project_id"`
	Minutes   int     `json:"minutes"`
	Hours     float64 `json:"hours"`
}

// WeekData is one calendar week's aggregate. Sequences of weeks are ordered
// by (year, week); forecasting assumes chronological order.
type WeekData struct {
	Year         int            `json:"year"`
	Week         int            `json:"week"`
	TotalMinutes int            `json:"total_minutes"`
	TotalHours   float64        `json:"total_hours"`
	TotalAmount  float64        `json:"total_amount"`
	ProjectStats []ProjectStats `json:"project_stats"`
}
