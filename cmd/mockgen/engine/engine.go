package engine

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sprint-health/internal/tracker"
)

// Scenarios shape how work moves through each generated sprint.
const (
	ScenarioSteady = "steady" // completions spread across the sprint
	ScenarioCrunch = "crunch" // most completions land on the last day
	ScenarioChurn  = "churn"  // heavy mid-sprint additions, exclusions and rejections
)

const (
	sprintLength = 14 * 24 * time.Hour
	dateLayout   = "2006-01-02 15:04:05.000000"
)

var (
	areas      = []string{"Core", "Billing", "Platform"}
	workgroups = []string{"Alpha", "Beta", "Gamma"}
	assignees  = []string{"ivanov", "petrova", "sidorov", "kuznetsova", "smirnov"}
	types      = []string{"История", "Задача", "Дефект"}
	priorities = []string{"Низкий", "Средний", "Высокий"}
)

type GeneratorConfig struct {
	Scenario       string
	Sprints        int
	TasksPerSprint int
	Seed           int64
	Start          time.Time
}

// Dataset holds the three generated tables.
type Dataset struct {
	Tasks   []tracker.Task
	Sprints []tracker.Sprint
	History []tracker.HistoryEvent
}

// Generate builds a deterministic dataset for the given seed. The last sprint
// is left active; earlier ones are closed.
func Generate(cfg GeneratorConfig) Dataset {
	if cfg.Sprints <= 0 {
		cfg.Sprints = 1
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now().UTC().Truncate(24*time.Hour).Add(-time.Duration(cfg.Sprints-1) * sprintLength).Add(9 * time.Hour)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	var ds Dataset
	nextID := int64(1)

	for s := 0; s < cfg.Sprints; s++ {
		start := cfg.Start.Add(time.Duration(s) * sprintLength)
		end := start.Add(sprintLength)
		name := fmt.Sprintf("Sprint %d", s+1)
		status := "Закрыт"
		if s == cfg.Sprints-1 {
			status = "Активный"
		}
		sprint := tracker.Sprint{Name: name, Status: status, Start: start, End: end, EntityIDs: tracker.EntitySet{}}

		for i := 0; i < cfg.TasksPerSprint; i++ {
			id := nextID
			nextID++

			// 1. Task attributes
			t := tracker.Task{
				EntityID:   id,
				Name:       fmt.Sprintf("Task %d", id),
				Type:       types[rng.Intn(len(types))],
				Priority:   priorities[rng.Intn(len(priorities))],
				Status:     "Создано",
				Estimation: float64(1+rng.Intn(16)) * 3600,
				Area:       areas[rng.Intn(len(areas))],
				Workgroup:  workgroups[rng.Intn(len(workgroups))],
				Assignee:   assignees[rng.Intn(len(assignees))],
				CreateDate: start.Add(-time.Duration(rng.Intn(5*24)) * time.Hour),
			}
			sprint.EntityIDs[id] = struct{}{}

			// 2. Scope churn: late additions and exclusions
			late := cfg.Scenario == ScenarioChurn && rng.Float64() < 0.3
			if late {
				t.CreateDate = start.Add(time.Duration(72+rng.Intn(6*24)) * time.Hour)
				ds.History = append(ds.History, sprintChange(id, t.CreateDate.Add(time.Hour), "<empty> -> "+name))
			}

			// 3. Status flow
			startWork := t.CreateDate.Add(time.Duration(4+rng.Intn(72)) * time.Hour)
			if startWork.Before(start) {
				startWork = start.Add(time.Duration(rng.Intn(48)) * time.Hour)
			}
			finish := completionTime(cfg.Scenario, rng, startWork, end)

			outcome := rng.Float64()
			switch {
			case outcome < 0.15:
				// Left in the backlog.
			case outcome < 0.35 || !finish.Before(end.Add(time.Hour)):
				t.Status = "В работе"
				ds.History = append(ds.History, statusChange(id, startWork, "Создано -> В работе"))
				if rng.Float64() < 0.3 {
					t.Links = fmt.Sprintf("is blocked by %d", 1+rng.Int63n(id))
				}
			default:
				t.Status = "Закрыто"
				t.Resolution = "Готово"
				if cfg.Scenario == ScenarioChurn && rng.Float64() < 0.2 {
					t.Resolution = "Отклонено"
				}
				ds.History = append(ds.History,
					statusChange(id, startWork, "Создано -> В работе"),
					statusChange(id, finish, "В работе -> Закрыто"),
				)
				updated := finish
				t.UpdateDate = &updated
			}

			if cfg.Scenario == ScenarioChurn && !late && rng.Float64() < 0.1 {
				at := start.Add(time.Duration(24+rng.Intn(11*24)) * time.Hour)
				ds.History = append(ds.History, sprintChange(id, at, name+" -> <empty>"))
			}
			ds.Tasks = append(ds.Tasks, t)
		}
		ds.Sprints = append(ds.Sprints, sprint)
	}
	return ds
}

// completionTime picks when a started task is closed.
func completionTime(scenario string, rng *rand.Rand, from, end time.Time) time.Time {
	if scenario == ScenarioCrunch && rng.Float64() < 0.7 {
		return end.Add(-time.Duration(1+rng.Intn(6)) * time.Hour)
	}
	span := end.Sub(from)
	if span <= 0 {
		return end
	}
	return from.Add(time.Duration(rng.Int63n(int64(span) + int64(24*time.Hour))))
}

func statusChange(id int64, at time.Time, change string) tracker.HistoryEvent {
	return tracker.HistoryEvent{EntityID: id, PropertyName: tracker.PropertyStatus, Date: at, ChangeType: "FIELD_CHANGED", Change: change}
}

func sprintChange(id int64, at time.Time, change string) tracker.HistoryEvent {
	return tracker.HistoryEvent{EntityID: id, PropertyName: tracker.PropertySprint, Date: at, ChangeType: "FIELD_CHANGED", Change: change}
}

// Save writes entities.csv, sprints.csv and history.csv to outDir.
func Save(outDir string, ds Dataset, delim rune) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	tasks := [][]string{{"entity_id", "name", "type", "priority", "status", "resolution", "estimation", "create_date", "update_date", "area", "workgroup", "links", "assignee"}}
	for _, t := range ds.Tasks {
		updated := ""
		if t.UpdateDate != nil {
			updated = t.UpdateDate.Format(dateLayout)
		}
		tasks = append(tasks, []string{
			strconv.FormatInt(t.EntityID, 10), t.Name, t.Type, t.Priority, t.Status, t.Resolution,
			strconv.FormatFloat(t.Estimation, 'f', -1, 64), t.CreateDate.Format(dateLayout), updated,
			t.Area, t.Workgroup, t.Links, t.Assignee,
		})
	}

	sprints := [][]string{{"sprint_name", "sprint_status", "sprint_start_date", "sprint_end_date", "entity_ids"}}
	for _, s := range ds.Sprints {
		ids := make([]string, 0, len(s.EntityIDs))
		for _, id := range s.EntityIDs.Sorted() {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		sprints = append(sprints, []string{
			s.Name, s.Status, s.Start.Format(dateLayout), s.End.Format(dateLayout), "{" + strings.Join(ids, ",") + "}",
		})
	}

	history := [][]string{{"entity_id", "history_property_name", "history_date", "history_version", "history_change_type", "history_change"}}
	versions := make(map[int64]int)
	for _, e := range ds.History {
		versions[e.EntityID]++
		history = append(history, []string{
			strconv.FormatInt(e.EntityID, 10), e.PropertyName, e.Date.Format(dateLayout),
			strconv.Itoa(versions[e.EntityID]), e.ChangeType, e.Change,
		})
	}

	files := map[string][][]string{
		"entities.csv": tasks,
		"sprints.csv":  sprints,
		"history.csv":  history,
	}
	for name, rows := range files {
		if err := writeCSV(filepath.Join(outDir, name), rows, delim); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, rows [][]string, delim rune) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Comma = delim
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
