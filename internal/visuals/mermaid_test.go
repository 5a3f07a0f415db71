package visuals

import (
	"strings"
	"testing"
	"time"

	"sprint-health/internal/stats"
)

func sampleResult() *stats.MetricsResult {
	start := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	return &stats.MetricsResult{
		Sprint:      "Sprint 42",
		SprintStart: start,
		SprintEnd:   start.AddDate(0, 0, 2),
		Todo:        4,
		InProgress:  2,
		Done:        10,
		StatusTransitions: stats.TransitionAnalysis{
			DailyDistribution: map[string]stats.DayTransitions{
				"2024-10-01": {ToInProgress: 2, TotalChanges: 3},
				"2024-10-03": {ToDone: 4, TotalChanges: 5},
			},
			Evenness: 42.5,
		},
		AddedTasks:    map[string]stats.DayChange{"2024-10-02": {Hours: 3, Count: 1}},
		ExcludedTasks: map[string]stats.DayChange{},
		HealthDetails: map[string]float64{"todo_penalty": 5, "evenness_penalty": 13.8},
		HealthModel:   stats.ModelPenalty,
	}
}

func TestGenerateBucketChart(t *testing.T) {
	chart := GenerateBucketChart(sampleResult())
	if !strings.HasPrefix(chart, "```mermaid\nxychart-beta") {
		t.Errorf("Expected mermaid xychart fence, got %q", chart)
	}
	if !strings.Contains(chart, "bar [4.0, 2.0, 10.0, 0.0]") {
		t.Errorf("Expected bucket hours in bar series, got:\n%s", chart)
	}
	if !strings.Contains(chart, `y-axis "Hours" 0 --> 1`) {
		t.Errorf("Expected y-axis headroom above the max, got:\n%s", chart)
	}

	if got := GenerateBucketChart(&stats.MetricsResult{}); got != "" {
		t.Errorf("Expected no chart for an empty result, got %q", got)
	}
}

func TestGenerateTransitionsChart(t *testing.T) {
	res := sampleResult()
	days := stats.SprintWindow{Start: res.SprintStart, End: res.SprintEnd}.Days()
	chart := GenerateTransitionsChart(res.StatusTransitions, days)

	if !strings.Contains(chart, `x-axis ["10-01", "10-02", "10-03"]`) {
		t.Errorf("Expected every sprint day on the x-axis, got:\n%s", chart)
	}
	if !strings.Contains(chart, "bar [3, 0, 5]") {
		t.Errorf("Expected zero-filled totals, got:\n%s", chart)
	}
	if !strings.Contains(chart, "line [0, 0, 4]") {
		t.Errorf("Expected completions line, got:\n%s", chart)
	}
	if !strings.Contains(chart, "Evenness 42.5%") {
		t.Errorf("Expected evenness in title, got:\n%s", chart)
	}

	if got := GenerateTransitionsChart(stats.TransitionAnalysis{}, days); got != "" {
		t.Errorf("Expected no chart without transitions, got %q", got)
	}
}

func TestGeneratePenaltyChart(t *testing.T) {
	chart := GeneratePenaltyChart(sampleResult().HealthDetails, stats.ModelPenalty)
	// Factors are sorted by name.
	if !strings.Contains(chart, `x-axis ["evenness_penalty", "todo_penalty"]`) {
		t.Errorf("Expected sorted factor labels, got:\n%s", chart)
	}
	if !strings.Contains(chart, "bar [13.8, 5.0]") {
		t.Errorf("Expected penalty values, got:\n%s", chart)
	}

	weighted := GeneratePenaltyChart(map[string]float64{"delivery": 80}, stats.ModelWeighted)
	if !strings.Contains(weighted, "Health Factors") || !strings.Contains(weighted, "0 --> 100") {
		t.Errorf("Expected weighted chart on a 0-100 axis, got:\n%s", weighted)
	}
}

func TestCharts(t *testing.T) {
	charts := Charts(sampleResult())
	for _, name := range []string{"buckets", "daily_transitions", "scope_changes", "health_penalties"} {
		if charts[name] == "" {
			t.Errorf("Expected chart %q to be present", name)
		}
	}

	empty := Charts(&stats.MetricsResult{})
	if len(empty) != 0 {
		t.Errorf("Expected no charts for an empty result, got %v", empty)
	}
}
