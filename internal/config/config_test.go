package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TasksFile != filepath.Join(dir, "entities.csv") {
		t.Errorf("Expected tasks file under data path, got %s", cfg.TasksFile)
	}
	if cfg.CSVDelimiter != ';' {
		t.Errorf("Expected ';' delimiter, got %q", cfg.CSVDelimiter)
	}
	if cfg.GroupField != GroupByArea {
		t.Errorf("Expected group field %s, got %s", GroupByArea, cfg.GroupField)
	}
	if cfg.HealthModel != ModelPenalty {
		t.Errorf("Expected model %s, got %s", ModelPenalty, cfg.HealthModel)
	}
	if _, err := os.Stat(cfg.CacheDir); err != nil {
		t.Errorf("Expected cache dir to be created: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_PATH", dir)
	t.Setenv("GROUP_FIELD", "Workgroup")
	t.Setenv("HEALTH_MODEL", "weighted")
	t.Setenv("CSV_DELIMITER", "tab")
	t.Setenv("SPRINTS_FILE", "/abs/sprints.csv")
	t.Setenv("WATCH_DATA", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GroupField != GroupByWorkgroup {
		t.Errorf("Expected workgroup, got %s", cfg.GroupField)
	}
	if cfg.HealthModel != ModelWeighted {
		t.Errorf("Expected weighted, got %s", cfg.HealthModel)
	}
	if cfg.CSVDelimiter != '\t' {
		t.Errorf("Expected tab delimiter, got %q", cfg.CSVDelimiter)
	}
	if cfg.SprintsFile != "/abs/sprints.csv" {
		t.Errorf("Expected absolute path to be kept, got %s", cfg.SprintsFile)
	}
	if !cfg.WatchData {
		t.Error("Expected WatchData to be true")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"GroupField", "GROUP_FIELD", "department"},
		{"HealthModel", "HEALTH_MODEL", "blended"},
		{"Delimiter", "CSV_DELIMITER", ";;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATA_PATH", t.TempDir())
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestGodotenvQuoting(t *testing.T) {
	content := `TASKS_FILE='tasks "export".csv'`
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `tasks "export".csv`
	if env["TASKS_FILE"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["TASKS_FILE"])
	}
}
