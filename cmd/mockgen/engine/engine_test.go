package engine

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"sprint-health/internal/dataset"
	"sprint-health/internal/stats"
)

var genStart = time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := GeneratorConfig{Scenario: ScenarioChurn, Sprints: 3, TasksPerSprint: 20, Seed: 7, Start: genStart}
	a := Generate(cfg)
	b := Generate(cfg)

	if len(a.Tasks) != 60 || len(a.Sprints) != 3 {
		t.Fatalf("Expected 60 tasks in 3 sprints, got %d/%d", len(a.Tasks), len(a.Sprints))
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("Expected the same seed to produce the same dataset")
	}
	if a.Sprints[2].Status != "Активный" || a.Sprints[0].Status != "Закрыт" {
		t.Errorf("Expected only the last sprint to be active, got %q/%q", a.Sprints[0].Status, a.Sprints[2].Status)
	}
	for _, task := range a.Tasks {
		if task.Estimation <= 0 {
			t.Errorf("Expected positive estimation for task %d", task.EntityID)
		}
	}
}

func TestSave_RoundTripsThroughLoader(t *testing.T) {
	dir := t.TempDir()
	ds := Generate(GeneratorConfig{Scenario: ScenarioCrunch, Sprints: 2, TasksPerSprint: 25, Seed: 1, Start: genStart})
	if err := Save(dir, ds, ';'); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snap, err := dataset.LoadCSV(dataset.Files{
		Tasks:     filepath.Join(dir, "entities.csv"),
		Sprints:   filepath.Join(dir, "sprints.csv"),
		History:   filepath.Join(dir, "history.csv"),
		Delimiter: ';',
	})
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if len(snap.Tasks) != len(ds.Tasks) || len(snap.Sprints) != 2 || len(snap.History) != len(ds.History) {
		t.Fatalf("Expected all rows to load, got %d/%d/%d", len(snap.Tasks), len(snap.Sprints), len(snap.History))
	}
	if !snap.HasLinks || !snap.HasHistoryChange {
		t.Error("Expected links and history change columns")
	}

	res, err := stats.ComputeMetrics(snap, stats.Query{
		SprintNames:  []string{"Sprint 1"},
		GroupValues:  areas,
		GroupField:   "area",
		TimeFramePct: 100,
	}, stats.Options{})
	if err != nil {
		t.Fatalf("ComputeMetrics failed: %v", err)
	}
	sum := res.Todo + res.InProgress + res.Done + res.Removed
	if sum <= 0 {
		t.Errorf("Expected generated sprint to carry hours, got %+v", res)
	}
	if res.HealthScore < 0 || res.HealthScore > 100 {
		t.Errorf("Expected score in [0,100], got %v", res.HealthScore)
	}
}
