package stats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sprint-health/internal/tracker"
)

// totalsOf builds bucket totals from hour values in todo, in-progress, done, removed order.
func totalsOf(todo, inProgress, done, removed float64) BucketTotals {
	var tasks []tracker.Task
	for i, h := range []float64{todo, inProgress, done, removed} {
		if h == 0 {
			continue
		}
		status, resolution := "Создано", ""
		switch i {
		case 1:
			status = "В работе"
		case 2:
			status = "Закрыто"
		case 3:
			status, resolution = "Закрыто", "Дубликат"
		}
		tasks = append(tasks, task(int64(i+1), status, resolution, h*3600))
	}
	return SumBuckets(tasks)
}

func TestPenaltyScorer(t *testing.T) {
	scorer := PenaltyScorer{Policy: DefaultHealthPolicy()}

	tests := []struct {
		name     string
		input    HealthInput
		expected float64
		details  map[string]float64
	}{
		{
			name: "Healthy",
			input: HealthInput{
				Totals:      totalsOf(1, 4, 5, 0),
				Transitions: TransitionAnalysis{Evenness: 85, LastDayCompletionPct: 20},
			},
			expected: 100,
			details:  map[string]float64{},
		},
		{
			name: "EachFactorBelowCap",
			input: HealthInput{
				Totals:           totalsOf(3, 3, 2, 2), // todo 30%, removed 20%
				BacklogChangePct: 25,
				Transitions:      TransitionAnalysis{Evenness: 60, LastDayCompletionPct: 40},
			},
			// 5 + 5 + 10 + 15 + 5
			expected: 60,
			details: map[string]float64{
				"transition_evenness": 5,
				"last_day_completion": 5,
				"todo_ratio":          10,
				"removed_ratio":       15,
				"backlog_change":      5,
			},
		},
		{
			name: "AllCapsReached",
			input: HealthInput{
				Totals:           totalsOf(8, 0, 0, 2), // todo 80%, removed 20%
				BacklogChangePct: 300,
				Transitions:      TransitionAnalysis{Evenness: 0, LastDayCompletionPct: 100},
			},
			// 25 + 25 + 20 + 15 + 15
			expected: 0,
			details: map[string]float64{
				"transition_evenness": 25,
				"last_day_completion": 25,
				"todo_ratio":          20,
				"removed_ratio":       15,
				"backlog_change":      15,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scorer.Score(tt.input)
			if res.Score != tt.expected {
				t.Errorf("Expected score %v, got %v", tt.expected, res.Score)
			}
			if res.Model != ModelPenalty {
				t.Errorf("Expected model %s, got %s", ModelPenalty, res.Model)
			}
			if len(res.Details) != len(tt.details) {
				t.Fatalf("Expected details %v, got %v", tt.details, res.Details)
			}
			for k, v := range tt.details {
				if res.Details[k] != v {
					t.Errorf("Expected %s=%v, got %v", k, v, res.Details[k])
				}
			}
		})
	}
}

func TestScorers_ZeroTotal(t *testing.T) {
	in := HealthInput{
		Totals:      SumBuckets(nil),
		Transitions: TransitionAnalysis{Evenness: 0, LastDayCompletionPct: 100},
	}
	for _, s := range []HealthScorer{PenaltyScorer{Policy: DefaultHealthPolicy()}, WeightedScorer{Policy: DefaultHealthPolicy()}} {
		res := s.Score(in)
		if res.Score != 0 || len(res.Details) != 0 {
			t.Errorf("%s: expected zero score with no details, got %+v", s.Name(), res)
		}
	}
}

func TestWeightedScorer(t *testing.T) {
	scorer := WeightedScorer{Policy: DefaultHealthPolicy()}
	res := scorer.Score(HealthInput{
		Totals:           totalsOf(0, 5, 5, 0), // 50% complete
		BlockedHours:     1,                    // 10% blocked
		BacklogChangePct: 10,
		Transitions:      TransitionAnalysis{LastDayCompletionPct: 40},
	})

	// 50*.25 + 90*.2 + 90*.2 + 60*.2 + 80*.15
	if res.Score != 72.5 {
		t.Errorf("Expected score 72.5, got %v", res.Score)
	}
	expected := map[string]float64{
		"delivery_score":      50,
		"stability_score":     90,
		"flow_score":          90,
		"quality_score":       60,
		"team_load_score":     80,
		"completion_rate":     50,
		"blocked_ratio":       10,
		"last_day_completion": 40,
	}
	for k, v := range expected {
		if res.Details[k] != v {
			t.Errorf("Expected %s=%v, got %v", k, v, res.Details[k])
		}
	}
}

func TestWeightedScorer_TeamLoad(t *testing.T) {
	scorer := WeightedScorer{Policy: DefaultHealthPolicy()}
	tests := []struct {
		name     string
		load     map[string]int
		expected float64
	}{
		{"SingleAssignee", map[string]int{"a": 5}, 80},
		{"Even", map[string]int{"a": 3, "b": 3}, 100},
		{"Moderate", map[string]int{"a": 1, "b": 3}, 100 * (1 - 0.2/0.7)},
		{"Skewed", map[string]int{"a": 1, "b": 1, "c": 1, "d": 1, "e": 1, "f": 1, "g": 1, "h": 1, "i": 1, "j": 30}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.teamLoad(tt.load)
			if Round1(got) != Round1(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNewScorer(t *testing.T) {
	if s, err := NewScorer("", DefaultHealthPolicy()); err != nil || s.Name() != ModelPenalty {
		t.Errorf("Expected penalty default, got %v (%v)", s, err)
	}
	if s, err := NewScorer(ModelWeighted, DefaultHealthPolicy()); err != nil || s.Name() != ModelWeighted {
		t.Errorf("Expected weighted scorer, got %v (%v)", s, err)
	}
	if _, err := NewScorer("blended", DefaultHealthPolicy()); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("Expected ErrInvalidQuery for unknown model, got %v", err)
	}
}

func TestLoadHealthPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `
todo_ratio:
  threshold: 35
backlog_change:
  cap: 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	policy, err := LoadHealthPolicy(path)
	if err != nil {
		t.Fatalf("LoadHealthPolicy failed: %v", err)
	}
	if policy.Todo.Threshold != 35 || policy.Todo.Cap != 20 {
		t.Errorf("Expected todo threshold override with default cap, got %+v", policy.Todo)
	}
	if policy.Backlog.Cap != 5 || policy.Backlog.Threshold != 20 {
		t.Errorf("Expected backlog cap override, got %+v", policy.Backlog)
	}
	if policy.Weights.Delivery != 0.25 {
		t.Errorf("Expected default weights to survive, got %+v", policy.Weights)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("weights:\n  delivery: 0.9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadHealthPolicy(bad); err == nil {
		t.Error("Expected weights that do not sum to 1 to be rejected")
	}

	if p, err := LoadHealthPolicy(""); err != nil || p != DefaultHealthPolicy() {
		t.Errorf("Expected defaults for empty path, got %+v (%v)", p, err)
	}
}
