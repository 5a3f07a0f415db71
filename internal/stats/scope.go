package stats

import (
	"strings"

	"sprint-health/internal/tracker"
)

// DayChange is the scope moved in or out of a sprint on one day.
type DayChange struct {
	Hours float64 `json:"hours"`
	Count int     `json:"count"`
}

var (
	exclusionSuffix = "-> " + tracker.EmptyValue
	additionPrefix  = tracker.EmptyValue + " ->"
)

func isExclusion(change string) bool {
	return strings.HasSuffix(strings.TrimSpace(change), exclusionSuffix)
}

func isAddition(change string) bool {
	return strings.HasPrefix(strings.TrimSpace(change), additionPrefix)
}

// ExcludedTasksByDay sums, per day, the tasks taken out of a sprint.
func ExcludedTasksByDay(tasks []tracker.Task, history []tracker.HistoryEvent, sprint tracker.Sprint) map[string]DayChange {
	return sprintMovesByDay(tasks, history, sprint, isExclusion)
}

// AddedTasksByDay sums, per day, the tasks pulled into a sprint.
func AddedTasksByDay(tasks []tracker.Task, history []tracker.HistoryEvent, sprint tracker.Sprint) map[string]DayChange {
	return sprintMovesByDay(tasks, history, sprint, isAddition)
}

// sprintMovesByDay scans sprint-field changes inside the window. Events for
// tasks outside the subset are skipped.
func sprintMovesByDay(tasks []tracker.Task, history []tracker.HistoryEvent, sprint tracker.Sprint, match func(string) bool) map[string]DayChange {
	result := make(map[string]DayChange)
	if len(history) == 0 {
		return result
	}

	estimations := make(map[int64]float64, len(tasks))
	for _, t := range tasks {
		estimations[t.EntityID] = t.Estimation
	}

	window := NewSprintWindow(sprint)
	seconds := make(map[string]float64)
	for _, e := range history {
		if !isSprintProperty(e.PropertyName) || !window.Contains(e.Date) || !match(e.Change) {
			continue
		}
		est, ok := estimations[e.EntityID]
		if !ok {
			continue
		}
		day := DayLabel(e.Date)
		seconds[day] += est
		dc := result[day]
		dc.Count++
		result[day] = dc
	}

	for day, dc := range result {
		dc.Hours = Round1(seconds[day] / 3600)
		result[day] = dc
	}
	return result
}
