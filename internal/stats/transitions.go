package stats

import (
	"math"
	"slices"
	"strings"

	"sprint-health/internal/tracker"
)

// DayTransitions counts status changes recorded on one calendar day.
type DayTransitions struct {
	ToInProgress int `json:"to_in_progress"`
	ToDone       int `json:"to_done"`
	TotalChanges int `json:"total_changes"`
}

// TransitionAnalysis summarises how status changes spread over a sprint.
type TransitionAnalysis struct {
	LastDayCompletionPct float64                   `json:"last_day_completion_percentage"`
	DailyDistribution    map[string]DayTransitions `json:"daily_distribution"`
	Evenness             float64                   `json:"transition_evenness"`
}

// Patterns are matched as substrings of the lower-cased "<old> -> <new>"
// change. Only the first match in each list is counted.
var (
	toInProgressPatterns = []string{
		"создано -> в работе",
		"к выполнению -> в работе",
		"анализ -> разработка",
		"готово к разработке -> в разработке",
		"-> в работе",
		"-> разработка",
		"-> тестирование",
		"создано -> разработка",
		"создано -> анализ",
		"-> в процессе",
		"-> исправление",
		"-> in progress",
		"-> in development",
		"-> in review",
		"-> testing",
	}

	toDonePatterns = []string{
		"-> выполнено",
		"-> закрыто",
		"-> ст завершено",
		"-> завершено",
		"в работе -> закрыто",
		"тестирование -> закрыто",
		"разработка -> выполнено",
		"-> done",
		"-> closed",
		"-> completed",
		"-> resolved",
	}
)

func matchesAny(change string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(change, p) {
			return true
		}
	}
	return false
}

// AnalyzeTransitions buckets status changes inside the sprint by day. When
// scope is non-nil only events of tasks in scope are considered.
func AnalyzeTransitions(history []tracker.HistoryEvent, sprint tracker.Sprint, scope tracker.EntitySet) TransitionAnalysis {
	window := NewSprintWindow(sprint)
	daily := make(map[string]DayTransitions)

	// 1. Bucket status changes by calendar day
	for _, e := range history {
		if !isStatusProperty(e.PropertyName) || !window.Contains(e.Date) {
			continue
		}
		if scope != nil && !scope.Contains(e.EntityID) {
			continue
		}
		change := strings.ToLower(e.Change)
		day := DayLabel(e.Date)
		dt := daily[day]
		if matchesAny(change, toInProgressPatterns) {
			dt.ToInProgress++
		}
		if matchesAny(change, toDonePatterns) {
			dt.ToDone++
		}
		dt.TotalChanges++
		daily[day] = dt
	}

	// 2. Share of completions landing on the final day
	totalDone := 0
	for _, dt := range daily {
		totalDone += dt.ToDone
	}
	lastDay := Percent(float64(daily[window.LastDay()].ToDone), float64(totalDone))

	return TransitionAnalysis{
		LastDayCompletionPct: Round1(lastDay),
		DailyDistribution:    daily,
		Evenness:             Round1(transitionEvenness(daily, window.DurationDays())),
	}
}

// transitionEvenness is 100 when every active day carries the ideal share of
// changes and falls with the mean absolute deviation from it.
func transitionEvenness(daily map[string]DayTransitions, durationDays int) float64 {
	if len(daily) == 0 || durationDays < 1 {
		return 0
	}

	days := make([]string, 0, len(daily))
	total := 0
	for day, dt := range daily {
		days = append(days, day)
		total += dt.TotalChanges
	}
	slices.Sort(days)
	ideal := float64(total) / float64(durationDays)
	if ideal == 0 {
		return 0
	}

	deviation := 0.0
	for _, day := range days {
		deviation += math.Abs(float64(daily[day].TotalChanges) - ideal)
	}
	variance := deviation / float64(len(daily))

	return math.Max(0, 100*(1-variance/ideal))
}
