// Package recommend ranks heuristic suggestions over precomputed per-project
// efficiency and time-distribution numbers.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

// Engine generates rule-based recommendations from an analysis payload.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Generate produces time-allocation, project-priority and
// schedule-optimization recommendations. Sections without enough signal are
// simply omitted.
func (e *Engine) Generate(input *domain.AnalysisInput) []domain.Recommendation {
	efficiency := projectEfficiency(input)
	distribution := weeklyTimeDistribution(input.Weeks)

	var recs []domain.Recommendation
	recs = append(recs, e.recommendTimeAllocation(efficiency, distribution, input)...)
	recs = append(recs, e.recommendProjectPriority(efficiency, input)...)
	recs = append(recs, e.recommendScheduleOptimization(input)...)
	return recs
}

// projectEfficiency computes earned amount per worked hour for each project.
func projectEfficiency(input *domain.AnalysisInput) map[int]float64 {
	ratePerHour := input.Settings.RatePerMinute * 60.0

	efficiency := make(map[int]float64, len(input.Projects))
	for _, p := range input.Projects {
		if p.TotalHours > 0 {
			efficiency[p.ID] = (p.TotalHours * ratePerHour) / p.TotalHours
		} else {
			efficiency[p.ID] = 0
		}
	}
	return efficiency
}

// weeklyTimeDistribution averages each project's hours over the supplied weeks.
func weeklyTimeDistribution(weeks []domain.WeekData) map[int]float64 {
	distribution := make(map[int]float64)
	for _, week := range weeks {
		for _, stat := range week.ProjectStats {
			distribution[stat.ProjectID] += stat.Hours
		}
	}
	if len(weeks) > 0 {
		for id := range distribution {
			distribution[id] /= float64(len(weeks))
		}
	}
	return distribution
}

func (e *Engine) recommendTimeAllocation(efficiency, distribution map[int]float64, input *domain.AnalysisInput) []domain.Recommendation {
	if len(efficiency) < 2 {
		return nil
	}

	ranked := rankByEfficiency(efficiency, true)
	top := ranked[0]
	if efficiency[top] <= 0 {
		return nil
	}

	currentHours := distribution[top]
	if currentHours <= 0 {
		return nil
	}

	recommended := currentHours * 1.2
	name := projectName(input, top)

	return []domain.Recommendation{{
		Type:        "time_allocation",
		Priority:    domain.SeverityHigh,
		Title:       "Increase time on high-efficiency projects",
		Description: fmt.Sprintf("Project %q shows high efficiency", name),
		ActionItems: []string{
			fmt.Sprintf("Raise the project to %.1f hours/week", recommended),
			"Shift 15-20% of time away from less efficient projects",
		},
		ExpectedImpact: "Potential 10-15% revenue increase",
		Confidence:     0.75,
	}}
}

func (e *Engine) recommendProjectPriority(efficiency map[int]float64, input *domain.AnalysisInput) []domain.Recommendation {
	if len(efficiency) < 2 {
		return nil
	}

	ranked := rankByEfficiency(efficiency, false)
	var lowest int
	found := false
	for _, id := range ranked[:min(3, len(ranked))] {
		if efficiency[id] > 0 {
			lowest = id
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	name := projectName(input, lowest)
	return []domain.Recommendation{{
		Type:        "project_priority",
		Priority:    domain.SeverityMedium,
		Title:       "Revisit project priorities",
		Description: "Some projects show low efficiency",
		ActionItems: []string{
			fmt.Sprintf("Review project %q", name),
			"Consider reallocating its time budget",
		},
		ExpectedImpact: "Better use of available time",
		Confidence:     0.6,
	}}
}

func (e *Engine) recommendScheduleOptimization(input *domain.AnalysisInput) []domain.Recommendation {
	if len(input.Timesheets) == 0 {
		return nil
	}

	minutesByHour := make(map[int]int)
	for _, entry := range input.Timesheets {
		minutesByHour[entry.HourOfDay] += entry.Duration
	}

	hours := make([]int, 0, len(minutesByHour))
	for h := range minutesByHour {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool {
		if minutesByHour[hours[i]] != minutesByHour[hours[j]] {
			return minutesByHour[hours[i]] > minutesByHour[hours[j]]
		}
		return hours[i] < hours[j]
	})
	if len(hours) > 3 {
		hours = hours[:3]
	}

	labels := make([]string, len(hours))
	for i, h := range hours {
		labels[i] = fmt.Sprintf("%d", h)
	}

	return []domain.Recommendation{{
		Type:        "schedule_optimization",
		Priority:    domain.SeverityMedium,
		Title:       "Optimize the working schedule",
		Description: fmt.Sprintf("Most productive hours: %s:00", strings.Join(labels, ", ")),
		ActionItems: []string{
			fmt.Sprintf("Schedule demanding tasks around %s:00", labels[0]),
			"Use less productive hours for routine work",
		},
		ExpectedImpact: "10-15% productivity improvement",
		Confidence:     0.7,
	}}
}

func rankByEfficiency(efficiency map[int]float64, descending bool) []int {
	ids := make([]int, 0, len(efficiency))
	for id := range efficiency {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if efficiency[ids[i]] != efficiency[ids[j]] {
			if descending {
				return efficiency[ids[i]] > efficiency[ids[j]]
			}
			return efficiency[ids[i]] < efficiency[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

func projectName(input *domain.AnalysisInput, id int) string {
	for _, p := range input.Projects {
		if p.ID == id {
			return p.Name
		}
	}
	return fmt.Sprintf("project %d", id)
}
