package stats

import (
	"time"

	"sprint-health/internal/tracker"
)

// DayLayout is the key format of every per-day map in a metrics result.
const DayLayout = "2006-01-02"

// GracePeriod is how long after sprint start a created task still counts as initial scope.
const GracePeriod = 48 * time.Hour

// SprintWindow defines the temporal context of a sprint analysis.
type SprintWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewSprintWindow builds the window for a sprint. The raw boundaries are kept;
// day-level snapping is applied by the methods that need it.
func NewSprintWindow(s tracker.Sprint) SprintWindow {
	return SprintWindow{Start: s.Start, End: s.End}
}

// SnapToStart normalizes a timestamp to the beginning of its day (0:00:00).
func SnapToStart(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayLabel returns the calendar-day key of t.
func DayLabel(t time.Time) string {
	return t.Format(DayLayout)
}

// Cutoff returns the instant pct percent of the way through the sprint.
func (w SprintWindow) Cutoff(pct int) time.Time {
	span := w.End.Sub(w.Start)
	return w.Start.Add(time.Duration(float64(span) * float64(pct) / 100))
}

// GraceEnd is the last instant a task may be created and still count as initial scope.
func (w SprintWindow) GraceEnd() time.Time {
	return w.Start.Add(GracePeriod)
}

// Contains reports whether t lies within [Start, End], both bounds inclusive.
func (w SprintWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// DurationDays is the whole-day span of the sprint, never below 1.
func (w SprintWindow) DurationDays() int {
	days := int(w.End.Sub(w.Start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// LastDay returns the calendar-day key of the sprint end.
func (w SprintWindow) LastDay() string {
	return DayLabel(w.End)
}

// Days returns the keys of every calendar day the sprint touches.
func (w SprintWindow) Days() []string {
	var days []string
	end := SnapToStart(w.End)
	for current := SnapToStart(w.Start); !current.After(end); current = current.AddDate(0, 0, 1) {
		days = append(days, DayLabel(current))
	}
	return days
}
