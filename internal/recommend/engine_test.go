package recommend

import (
	"strings"
	"testing"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

func sampleInput() *domain.AnalysisInput {
	return &domain.AnalysisInput{
		Projects: []domain.Project{
			{ID: 1, Name: "alpha", TotalHours: 120},
			{ID: 2, Name: "beta", TotalHours: 40},
		},
		Weeks: []domain.WeekData{
			{Year: 2025, Week: 1, TotalHours: 40, ProjectStats: []domain.ProjectStats{
				{ProjectID: 1, Hours: 30}, {ProjectID: 2, Hours: 10},
			}},
			{Year: 2025, Week: 2, TotalHours: 40, ProjectStats: []domain.ProjectStats{
				{ProjectID: 1, Hours: 30}, {ProjectID: 2, Hours: 10},
			}},
		},
		Timesheets: []domain.TimesheetEntry{
			{ID: 1, Duration: 180, HourOfDay: 9},
			{ID: 2, Duration: 120, HourOfDay: 10},
			{ID: 3, Duration: 60, HourOfDay: 15},
		},
		Settings: domain.Settings{RatePerMinute: 1.0},
	}
}

func TestEngine_GenerateAllSections(t *testing.T) {
	engine := NewEngine()
	recs := engine.Generate(sampleInput())

	types := make(map[string]domain.Recommendation)
	for _, r := range recs {
		types[r.Type] = r
	}

	if _, ok := types["time_allocation"]; !ok {
		t.Error("expected a time_allocation recommendation")
	}
	if _, ok := types["project_priority"]; !ok {
		t.Error("expected a project_priority recommendation")
	}
	if _, ok := types["schedule_optimization"]; !ok {
		t.Error("expected a schedule_optimization recommendation")
	}
}

func TestEngine_ScheduleNamesTopHour(t *testing.T) {
	engine := NewEngine()
	recs := engine.Generate(sampleInput())

	for _, r := range recs {
		if r.Type != "schedule_optimization" {
			continue
		}
		// Hour 9 carries the most minutes.
		if !strings.Contains(r.Description, "9") {
			t.Errorf("expected top hour 9 in description, got %q", r.Description)
		}
		return
	}
	t.Fatal("schedule_optimization recommendation missing")
}

func TestEngine_EmptyInput(t *testing.T) {
	engine := NewEngine()
	recs := engine.Generate(&domain.AnalysisInput{})
	if len(recs) != 0 {
		t.Errorf("expected no recommendations, got %d", len(recs))
	}
}

func TestEngine_SingleProjectSkipsRankings(t *testing.T) {
	input := sampleInput()
	input.Projects = input.Projects[:1]
	input.Timesheets = nil

	engine := NewEngine()
	recs := engine.Generate(input)
	for _, r := range recs {
		if r.Type == "time_allocation" || r.Type == "project_priority" {
			t.Errorf("single project should not produce %s", r.Type)
		}
	}
}
