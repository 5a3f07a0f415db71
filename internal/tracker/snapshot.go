package tracker

import (
	"sort"
	"time"
)

// Snapshot is an immutable view of the three tracker tables. Consumers must
// treat every slice and map it exposes as read-only.
type Snapshot struct {
	Tasks   []Task         `json:"-"`
	Sprints []Sprint       `json:"-"`
	History []HistoryEvent `json:"-"`

	// HasLinks is false when the task export carried no links column.
	HasLinks bool `json:"has_links"`
	// HasHistoryChange is false when the history export lacked the change column.
	HasHistoryChange bool      `json:"has_history_change"`
	LoadedAt         time.Time `json:"loaded_at"`

	byID     map[int64]int
	bySprint map[string]int
}

// NewSnapshot indexes the tables. The slices are owned by the snapshot afterwards.
func NewSnapshot(tasks []Task, sprints []Sprint, history []HistoryEvent) *Snapshot {
	s := &Snapshot{
		Tasks:            tasks,
		Sprints:          sprints,
		History:          history,
		HasLinks:         true,
		HasHistoryChange: true,
		LoadedAt:         time.Now(),
		byID:             make(map[int64]int, len(tasks)),
		bySprint:         make(map[string]int, len(sprints)),
	}
	for i, t := range tasks {
		s.byID[t.EntityID] = i
	}
	for i, sp := range sprints {
		if _, dup := s.bySprint[sp.Name]; !dup {
			s.bySprint[sp.Name] = i
		}
	}
	return s
}

// Task returns the task with the given id.
func (s *Snapshot) Task(id int64) (Task, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Task{}, false
	}
	return s.Tasks[i], true
}

// Sprint returns the sprint with the given name.
func (s *Snapshot) Sprint(name string) (Sprint, bool) {
	i, ok := s.bySprint[name]
	if !ok {
		return Sprint{}, false
	}
	return s.Sprints[i], true
}

// DanglingRefs counts sprint members that have no matching task.
func (s *Snapshot) DanglingRefs() map[string]int {
	dangling := make(map[string]int)
	for _, sp := range s.Sprints {
		for id := range sp.EntityIDs {
			if _, ok := s.byID[id]; !ok {
				dangling[sp.Name]++
			}
		}
	}
	return dangling
}

// GroupCount is a distinct grouping value with the number of tasks carrying it.
type GroupCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GroupValues lists the distinct non-empty values of field ordered by name.
func (s *Snapshot) GroupValues(field string) []GroupCount {
	counts := make(map[string]int)
	for _, t := range s.Tasks {
		if v := t.GroupValue(field); v != "" {
			counts[v]++
		}
	}
	result := make([]GroupCount, 0, len(counts))
	for name, c := range counts {
		result = append(result, GroupCount{Name: name, Count: c})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
