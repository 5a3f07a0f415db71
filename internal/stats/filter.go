package stats

import (
	"fmt"
	"strings"
	"time"

	"sprint-health/internal/tracker"
)

// Query selects one sprint/group/time-frame slice of the snapshot.
type Query struct {
	SprintNames  []string `json:"selected_sprints"`
	GroupValues  []string `json:"selected_groups"`
	GroupField   string   `json:"group_field"` // "area" or "workgroup"
	TimeFramePct int      `json:"time_frame"`
}

// Validate checks the boundary contract of a query.
func (q Query) Validate() error {
	if len(nonEmpty(q.SprintNames)) == 0 {
		return &ValidationError{Field: "selected_sprints", Reason: "at least one sprint is required"}
	}
	if len(nonEmpty(q.GroupValues)) == 0 {
		return &ValidationError{Field: "selected_groups", Reason: "at least one group value is required"}
	}
	if q.TimeFramePct < 0 || q.TimeFramePct > 100 {
		return &ValidationError{Field: "time_frame", Reason: fmt.Sprintf("%d is outside [0, 100]", q.TimeFramePct)}
	}
	return nil
}

// GroupSelector matches tasks by their area or workgroup.
type GroupSelector struct {
	Field  string
	values map[string]struct{}
}

// NewGroupSelector builds a selector over the given values.
func NewGroupSelector(field string, values []string) GroupSelector {
	sel := GroupSelector{Field: field, values: make(map[string]struct{}, len(values))}
	for _, v := range nonEmpty(values) {
		sel.values[v] = struct{}{}
	}
	return sel
}

// Matches reports whether the task belongs to one of the selected groups.
func (g GroupSelector) Matches(t tracker.Task) bool {
	_, ok := g.values[strings.TrimSpace(t.GroupValue(g.Field))]
	return ok
}

// FilterTasks returns a fresh slice holding the sprint's tasks in the selected
// groups that were created or updated before the time-frame cutoff.
func FilterTasks(tasks []tracker.Task, sprint tracker.Sprint, sel GroupSelector, timeFramePct int) []tracker.Task {
	cutoff := NewSprintWindow(sprint).Cutoff(timeFramePct)

	result := make([]tracker.Task, 0)
	for _, t := range tasks {
		if !sprint.EntityIDs.Contains(t.EntityID) || !sel.Matches(t) {
			continue
		}
		if !visibleAt(t, cutoff) {
			continue
		}
		result = append(result, t)
	}
	return result
}

func visibleAt(t tracker.Task, cutoff time.Time) bool {
	if !t.CreateDate.After(cutoff) {
		return true
	}
	return t.UpdateDate != nil && !t.UpdateDate.After(cutoff)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
