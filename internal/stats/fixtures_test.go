package stats

import (
	"time"

	"sprint-health/internal/tracker"
)

var sprintStart = time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return sprintStart.AddDate(0, 0, n)
}

func testSprint(ids ...int64) tracker.Sprint {
	return tracker.Sprint{
		Name:      "Sprint 42",
		Start:     sprintStart,
		End:       day(14),
		EntityIDs: tracker.NewEntitySet(ids...),
	}
}

func task(id int64, status, resolution string, seconds float64) tracker.Task {
	return tracker.Task{
		EntityID:   id,
		Status:     status,
		Resolution: resolution,
		Estimation: seconds,
		CreateDate: day(1),
		Area:       "Core",
		Workgroup:  "Alpha",
	}
}

func statusEvent(id int64, at time.Time, change string) tracker.HistoryEvent {
	return tracker.HistoryEvent{EntityID: id, PropertyName: tracker.PropertyStatus, Date: at, Change: change}
}

func sprintEvent(id int64, at time.Time, change string) tracker.HistoryEvent {
	return tracker.HistoryEvent{EntityID: id, PropertyName: tracker.PropertySprint, Date: at, Change: change}
}

func snapshotOf(tasks []tracker.Task, history []tracker.HistoryEvent) *tracker.Snapshot {
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.EntityID)
	}
	return tracker.NewSnapshot(tasks, []tracker.Sprint{testSprint(ids...)}, history)
}

func coreQuery(pct int) Query {
	return Query{
		SprintNames:  []string{"Sprint 42"},
		GroupValues:  []string{"Core"},
		GroupField:   "area",
		TimeFramePct: pct,
	}
}
