// Package productivity derives work-pattern statistics and break suggestions
// from raw timesheet entries using fixed rules.
package productivity

import (
	"sort"
	"strings"
	"time"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

// Session gaps below this many minutes merge adjacent entries.
const sessionGapMinutes = 30

// Analyzer computes hourly efficiency, optimal working hours and break
// recommendations, constrained by the user's preferences when supplied.
type Analyzer struct {
	preferences *domain.UserPreferences
}

func NewAnalyzer(preferences *domain.UserPreferences) *Analyzer {
	return &Analyzer{preferences: preferences}
}

// Analyze builds the full productivity report for the supplied entries.
func (a *Analyzer) Analyze(entries []domain.TimesheetEntry) *domain.ProductivityReport {
	hourly := hourlyEfficiency(entries)
	daily := dailyAverageHours(entries)

	return &domain.ProductivityReport{
		OptimalWorkHours:     a.findOptimalHours(hourly, daily),
		EfficiencyByTime:     hourly,
		BreakRecommendations: recommendBreaks(mergeSessions(entries)),
	}
}

// hourlyEfficiency is worked minutes over available minutes per hour bucket.
func hourlyEfficiency(entries []domain.TimesheetEntry) []domain.EfficiencyPoint {
	work := make(map[int]int)
	total := make(map[int]int)
	for _, entry := range entries {
		work[entry.HourOfDay] += entry.Duration
		total[entry.HourOfDay] += 60
	}

	points := make([]domain.EfficiencyPoint, 24)
	for hour := 0; hour < 24; hour++ {
		eff := 0.0
		if total[hour] > 0 {
			eff = float64(work[hour]) / float64(total[hour])
		}
		points[hour] = domain.EfficiencyPoint{Hour: hour, Efficiency: eff}
	}
	return points
}

// dailyAverageHours averages worked hours per weekday over distinct dates.
func dailyAverageHours(entries []domain.TimesheetEntry) map[int]float64 {
	minutes := make(map[int]int)
	dates := make(map[int]map[string]struct{})

	for _, entry := range entries {
		day := entry.DayOfWeek
		minutes[day] += entry.Duration

		date, _, _ := strings.Cut(entry.Begin, "T")
		if dates[day] == nil {
			dates[day] = make(map[string]struct{})
		}
		dates[day][date] = struct{}{}
	}

	avg := make(map[int]float64, len(minutes))
	for day, worked := range minutes {
		n := len(dates[day])
		if n == 0 {
			n = 1
		}
		avg[day] = (float64(worked) / 60.0) / float64(n)
	}
	return avg
}

func (a *Analyzer) findOptimalHours(hourly []domain.EfficiencyPoint, daily map[int]float64) domain.OptimalWorkHours {
	sleepStart, sleepEnd, noWorkBefore := 0, 8, 2
	workOnWeekends := false
	if a.preferences != nil {
		sleepStart = a.preferences.SleepStartHour
		sleepEnd = a.preferences.SleepEndHour
		noWorkBefore = a.preferences.NoWorkBeforeSleepHours
		workOnWeekends = a.preferences.WorkOnWeekends
	}

	var candidates []domain.EfficiencyPoint
	for _, p := range hourly {
		if p.Hour >= sleepStart && p.Hour < sleepEnd {
			continue
		}
		if sleepStart > 0 && inPreSleepWindow(p.Hour, sleepStart, noWorkBefore) {
			continue
		}
		candidates = append(candidates, p)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Efficiency > candidates[j].Efficiency
	})

	var topHours []int
	for _, p := range candidates {
		if len(topHours) == 8 {
			break
		}
		if p.Efficiency > 0 {
			topHours = append(topHours, p.Hour)
		}
	}

	days := make([]int, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		if daily[days[i]] != daily[days[j]] {
			return daily[days[i]] > daily[days[j]]
		}
		return days[i] < days[j]
	})

	var topDays []int
	for _, day := range days {
		if len(topDays) == 5 {
			break
		}
		if !workOnWeekends && (day == 0 || day == 6) {
			continue
		}
		topDays = append(topDays, day)
	}
	if len(topDays) == 0 {
		if workOnWeekends {
			topDays = []int{1, 2, 3, 4, 5, 6, 0}
		} else {
			topDays = []int{1, 2, 3, 4, 5}
		}
	}

	start, end := 9, 18
	if len(topHours) > 0 {
		start, end = topHours[0], topHours[0]
		for _, h := range topHours {
			if h < start {
				start = h
			}
			if h > end {
				end = h
			}
		}
	}

	return domain.OptimalWorkHours{Start: start, End: end, Days: topDays}
}

// inPreSleepWindow reports whether hour falls within the no-work buffer
// before sleepStart, handling windows that wrap past midnight.
func inPreSleepWindow(hour, sleepStart, bufferHours int) bool {
	windowStart := (sleepStart - bufferHours + 24) % 24
	if windowStart <= sleepStart {
		return hour >= windowStart && hour < sleepStart
	}
	return hour >= windowStart || hour < sleepStart
}

type session struct {
	start    string
	end      string
	duration int
}

// mergeSessions groups entries per day and joins those separated by less
// than the session gap into a single session.
func mergeSessions(entries []domain.TimesheetEntry) []session {
	byDay := make(map[string][]domain.TimesheetEntry)
	for _, entry := range entries {
		date, _, ok := strings.Cut(entry.Begin, "T")
		if !ok {
			continue
		}
		byDay[date] = append(byDay[date], entry)
	}

	var sessions []session
	for _, dayEntries := range byDay {
		sort.Slice(dayEntries, func(i, j int) bool {
			return dayEntries[i].Begin < dayEntries[j].Begin
		})

		current := newSession(dayEntries[0])
		for _, entry := range dayEntries[1:] {
			currentEnd, err1 := time.Parse(time.RFC3339, current.end)
			nextStart, err2 := time.Parse(time.RFC3339, entry.Begin)
			if err1 != nil || err2 != nil {
				continue
			}

			if nextStart.Sub(currentEnd).Minutes() < sessionGapMinutes {
				current.end = entryEnd(entry)
				current.duration += entry.Duration
			} else {
				sessions = append(sessions, current)
				current = newSession(entry)
			}
		}
		sessions = append(sessions, current)
	}
	return sessions
}

func newSession(entry domain.TimesheetEntry) session {
	return session{start: entry.Begin, end: entryEnd(entry), duration: entry.Duration}
}

func entryEnd(entry domain.TimesheetEntry) string {
	if entry.End != nil {
		return *entry.End
	}
	return entry.Begin
}

func recommendBreaks(sessions []session) domain.BreakRecommendations {
	if len(sessions) == 0 {
		return domain.BreakRecommendations{OptimalBreakDuration: 15, BreakFrequency: 2.0}
	}

	total := 0
	for _, s := range sessions {
		total += s.duration
	}
	avg := float64(total) / float64(len(sessions))

	switch {
	case avg > 120:
		return domain.BreakRecommendations{OptimalBreakDuration: 15, BreakFrequency: 2.0}
	case avg > 60:
		return domain.BreakRecommendations{OptimalBreakDuration: 10, BreakFrequency: 1.5}
	default:
		return domain.BreakRecommendations{OptimalBreakDuration: 5, BreakFrequency: 1.0}
	}
}
