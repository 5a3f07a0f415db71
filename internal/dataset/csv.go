package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"sprint-health/internal/tracker"

	"github.com/rs/zerolog/log"
)

// Files locates the three tracker exports.
type Files struct {
	Tasks     string
	Sprints   string
	History   string
	Delimiter rune
}

// historyPositional is the column order of history exports that ship
// without a usable header row.
var historyPositional = []string{
	"entity_id", "history_property_name", "history_date",
	"history_version", "history_change_type", "history_change",
}

type table struct {
	name   string
	header map[string]int
	rows   [][]string
}

func (t *table) has(col string) bool {
	_, ok := t.header[col]
	return ok
}

func (t *table) get(row []string, col string) string {
	i, ok := t.header[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readTable(path string, delim rune, name string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	t := &table{name: name, header: make(map[string]int)}
	headerSeen := false
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: read %q: %w", name, path, err)
		}

		if !headerSeen {
			// Spreadsheet exports prepend a single "Table 1" caption row.
			if len(rec) == 1 && strings.HasPrefix(strings.TrimSpace(rec[0]), "Table") {
				continue
			}
			for i, col := range rec {
				col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
				if _, dup := t.header[col]; !dup && col != "" {
					t.header[col] = i
				}
			}
			headerSeen = true
			continue
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// LoadCSV parses the exports into a snapshot. The history file is optional;
// tasks and sprints are required.
func LoadCSV(files Files) (*tracker.Snapshot, error) {
	// 1. Tasks
	tt, err := readTable(files.Tasks, files.Delimiter, "tasks")
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	tasks, hasLinks, err := parseTasks(tt)
	if err != nil {
		return nil, err
	}

	// 2. Sprints
	st, err := readTable(files.Sprints, files.Delimiter, "sprints")
	if err != nil {
		return nil, fmt.Errorf("failed to load sprints: %w", err)
	}
	sprints, err := parseSprints(st)
	if err != nil {
		return nil, err
	}

	// 3. History
	var history []tracker.HistoryEvent
	hasChange := false
	ht, err := readTable(files.History, files.Delimiter, "history")
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("path", files.History).Msg("History export not found, scope and transition metrics will be empty")
	case err != nil:
		return nil, fmt.Errorf("failed to load history: %w", err)
	default:
		history, hasChange = parseHistory(ht)
	}

	snap := tracker.NewSnapshot(tasks, sprints, history)
	snap.HasLinks = hasLinks
	snap.HasHistoryChange = hasChange

	for name, n := range snap.DanglingRefs() {
		log.Warn().Str("sprint", name).Int("missing", n).Msg("Sprint references tasks absent from the task export")
	}

	log.Info().
		Int("tasks", len(tasks)).
		Int("sprints", len(sprints)).
		Int("history", len(history)).
		Msg("Loaded tracker exports")
	return snap, nil
}

func parseTasks(t *table) ([]tracker.Task, bool, error) {
	for _, col := range []string{"entity_id", "status", "estimation", "create_date"} {
		if !t.has(col) {
			return nil, false, fmt.Errorf("tasks: missing required column %q", col)
		}
	}
	hasLinks := t.has("links")
	if !hasLinks {
		log.Warn().Msg("Task export has no links column, blocked hours will be 0")
	}

	var badIDs, badEstimates, badDates int
	tasks := make([]tracker.Task, 0, len(t.rows))
	for _, row := range t.rows {
		id, err := strconv.ParseInt(t.get(row, "entity_id"), 10, 64)
		if err != nil {
			badIDs++
			continue
		}
		est, ok := tracker.ParseEstimation(t.get(row, "estimation"))
		if !ok {
			badEstimates++
		}
		created, err := tracker.ParseTime(t.get(row, "create_date"))
		if err != nil {
			badDates++
		}

		task := tracker.Task{
			EntityID:   id,
			Name:       t.get(row, "name"),
			Type:       t.get(row, "type"),
			Priority:   t.get(row, "priority"),
			Status:     t.get(row, "status"),
			Resolution: t.get(row, "resolution"),
			Estimation: est,
			CreateDate: created,
			Area:       t.get(row, "area"),
			Workgroup:  t.get(row, "workgroup"),
			Links:      t.get(row, "links"),
			Assignee:   t.get(row, "assignee"),
		}
		if v := t.get(row, "update_date"); v != "" {
			if updated, err := tracker.ParseTime(v); err == nil {
				task.UpdateDate = &updated
			} else {
				badDates++
			}
		}
		tasks = append(tasks, task)
	}

	if badIDs+badEstimates+badDates > 0 {
		log.Warn().
			Int("skippedRows", badIDs).
			Int("zeroedEstimates", badEstimates).
			Int("badDates", badDates).
			Msg("Task export contains malformed values")
	}
	return tasks, hasLinks, nil
}

func parseSprints(t *table) ([]tracker.Sprint, error) {
	for _, col := range []string{"sprint_name", "sprint_start_date", "sprint_end_date", "entity_ids"} {
		if !t.has(col) {
			return nil, fmt.Errorf("sprints: missing required column %q", col)
		}
	}

	sprints := make([]tracker.Sprint, 0, len(t.rows))
	for _, row := range t.rows {
		name := t.get(row, "sprint_name")
		start, errStart := tracker.ParseTime(t.get(row, "sprint_start_date"))
		end, errEnd := tracker.ParseTime(t.get(row, "sprint_end_date"))
		if name == "" || errStart != nil || errEnd != nil || end.Before(start) {
			log.Warn().Str("sprint", name).Msg("Skipping sprint with missing or inverted boundaries")
			continue
		}

		ids, err := tracker.ParseEntityIDs(t.get(row, "entity_ids"))
		if err != nil {
			log.Warn().Err(err).Str("sprint", name).Msg("Malformed entity_ids, treating sprint as empty")
		}

		sprints = append(sprints, tracker.Sprint{
			Name:      name,
			Status:    t.get(row, "sprint_status"),
			Start:     start,
			End:       end,
			EntityIDs: ids,
		})
	}
	return sprints, nil
}

func parseHistory(t *table) ([]tracker.HistoryEvent, bool) {
	if !t.has("entity_id") || !t.has("history_property_name") {
		log.Warn().Msg("History export has no recognised header, using positional columns")
		t.header = make(map[string]int, len(historyPositional))
		for i, col := range historyPositional {
			t.header[col] = i
		}
	}
	hasChange := t.has("history_change")
	if !hasChange {
		log.Warn().Msg("History export has no history_change column")
	}

	skipped := 0
	events := make([]tracker.HistoryEvent, 0, len(t.rows))
	for _, row := range t.rows {
		id, err := strconv.ParseInt(t.get(row, "entity_id"), 10, 64)
		if err != nil {
			skipped++
			continue
		}
		at, err := tracker.ParseTime(t.get(row, "history_date"))
		if err != nil {
			skipped++
			continue
		}
		events = append(events, tracker.HistoryEvent{
			EntityID:     id,
			PropertyName: t.get(row, "history_property_name"),
			Date:         at,
			ChangeType:   t.get(row, "history_change_type"),
			Change:       t.get(row, "history_change"),
		})
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("Skipped malformed history rows")
	}
	return events, hasChange
}
