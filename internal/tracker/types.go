package tracker

import (
	"encoding/json"
	"slices"
	"time"
)

// Property names carried by history events. Only status and sprint changes
// are consumed by the analytics.
const (
	PropertyStatus = "Статус"
	PropertySprint = "Спринт"

	// EmptyValue marks the missing side of a history change.
	EmptyValue = "<empty>"
)

// Task is one work item as exported by the tracker.
type Task struct {
	EntityID   int64      `json:"entity_id"`
	Name       string     `json:"name,omitempty"`
	Type       string     `json:"type,omitempty"`
	Priority   string     `json:"priority,omitempty"`
	Status     string     `json:"status"`
	Resolution string     `json:"resolution,omitempty"`
	Estimation float64    `json:"estimation"` // seconds
	CreateDate time.Time  `json:"create_date"`
	UpdateDate *time.Time `json:"update_date,omitempty"`
	Area       string     `json:"area,omitempty"`
	Workgroup  string     `json:"workgroup,omitempty"`
	Links      string     `json:"links,omitempty"`
	Assignee   string     `json:"assignee,omitempty"`
}

// Hours returns the estimation converted from seconds.
func (t Task) Hours() float64 {
	return t.Estimation / 3600
}

// GroupValue returns the organisational grouping key selected by field
// ("area" or "workgroup").
func (t Task) GroupValue(field string) string {
	if field == "workgroup" {
		return t.Workgroup
	}
	return t.Area
}

// EntitySet is an unordered set of task identifiers.
type EntitySet map[int64]struct{}

// NewEntitySet builds a set from ids, dropping duplicates.
func NewEntitySet(ids ...int64) EntitySet {
	s := make(EntitySet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is a member of the set.
func (s EntitySet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s EntitySet) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// MarshalJSON encodes the set as a sorted array.
func (s EntitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of ids.
func (s *EntitySet) UnmarshalJSON(data []byte) error {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewEntitySet(ids...)
	return nil
}

// Sprint is a time box with the set of tasks planned into it.
type Sprint struct {
	Name      string    `json:"sprint_name"`
	Status    string    `json:"sprint_status,omitempty"`
	Start     time.Time `json:"sprint_start_date"`
	End       time.Time `json:"sprint_end_date"`
	EntityIDs EntitySet `json:"entity_ids"`
}

// HistoryEvent is a single tracked field change.
type HistoryEvent struct {
	EntityID     int64     `json:"entity_id"`
	PropertyName string    `json:"history_property_name"`
	Date         time.Time `json:"history_date"`
	ChangeType   string    `json:"history_change_type,omitempty"`
	Change       string    `json:"history_change"`
}
