package stats

import (
	"strings"

	"sprint-health/internal/tracker"
)

// Bucket is the canonical lifecycle bucket a task is counted in.
type Bucket string

const (
	BucketTodo       Bucket = "todo"
	BucketInProgress Bucket = "in_progress"
	BucketDone       Bucket = "done"
	BucketRemoved    Bucket = "removed"
)

// Buckets lists every bucket in reporting order.
var Buckets = []Bucket{BucketTodo, BucketInProgress, BucketDone, BucketRemoved}

type termSet map[string]struct{}

func newTermSet(terms ...string) termSet {
	s := make(termSet, len(terms))
	for _, t := range terms {
		s[normalize(t)] = struct{}{}
	}
	return s
}

func (s termSet) has(v string) bool {
	_, ok := s[normalize(v)]
	return ok
}

var (
	todoStatuses = newTermSet(
		"к выполнению", "создано", "готово к разработке", "новый",
		"открыто", "запланировано", "отложен", "в ожидании",
		"created", "to do", "todo", "open", "new", "backlog",
	)

	doneStatuses = newTermSet(
		"закрыто", "выполнено", "ст завершено", "завершено",
		"closed", "done", "completed", "resolved",
	)

	removedResolutions = newTermSet(
		"отклонено", "отменено инициатором", "дубликат", "отклонен исполнителем",
		"rejected", "duplicate", "cancelled by initiator", "rejected by assignee",
	)

	statusProperties = newTermSet(tracker.PropertyStatus, "status")
	sprintProperties = newTermSet(tracker.PropertySprint, "sprint")

	blockedMarkers = []string{"blocked", "заблокирован"}
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Classify maps a status/resolution pair to its bucket.
// Precedence: removed, done, todo, then everything else is in progress.
func Classify(status, resolution string) Bucket {
	done := doneStatuses.has(status)
	removed := removedResolutions.has(resolution)

	switch {
	case done && removed:
		return BucketRemoved
	case done:
		return BucketDone
	case todoStatuses.has(status) && !removed:
		return BucketTodo
	default:
		return BucketInProgress
	}
}

// IsDoneStatus reports whether status is terminal.
func IsDoneStatus(status string) bool {
	return doneStatuses.has(status)
}

// IsRemovedResolution reports whether resolution withdraws a task from delivery.
func IsRemovedResolution(resolution string) bool {
	return removedResolutions.has(resolution)
}

// IsBlocked reports whether an unfinished task links to a blocker.
func IsBlocked(t tracker.Task) bool {
	if t.Links == "" || IsDoneStatus(t.Status) {
		return false
	}
	links := strings.ToLower(t.Links)
	for _, m := range blockedMarkers {
		if strings.Contains(links, m) {
			return true
		}
	}
	return false
}

func isStatusProperty(name string) bool { return statusProperties.has(name) }
func isSprintProperty(name string) bool { return sprintProperties.has(name) }
