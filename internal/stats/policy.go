package stats

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PenaltyRule deducts (value-Threshold)*Multiplier, capped at Cap, once the
// threshold is crossed. The evenness rule triggers below its threshold, all
// others above.
type PenaltyRule struct {
	Threshold  float64 `yaml:"threshold" json:"threshold"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
	Cap        float64 `yaml:"cap" json:"cap"`
}

// Weights configures the weighted health model.
type Weights struct {
	Delivery  float64 `yaml:"delivery" json:"delivery"`
	Stability float64 `yaml:"stability" json:"stability"`
	Flow      float64 `yaml:"flow" json:"flow"`
	Quality   float64 `yaml:"quality" json:"quality"`
	TeamLoad  float64 `yaml:"team_load" json:"team_load"`

	// DefaultTeamLoad is used when fewer than two assignees share the work.
	DefaultTeamLoad float64 `yaml:"default_team_load" json:"default_team_load"`
}

// HealthPolicy holds every tunable of both health models.
type HealthPolicy struct {
	Evenness PenaltyRule `yaml:"transition_evenness" json:"transition_evenness"`
	LastDay  PenaltyRule `yaml:"last_day_completion" json:"last_day_completion"`
	Todo     PenaltyRule `yaml:"todo_ratio" json:"todo_ratio"`
	Removed  PenaltyRule `yaml:"removed_ratio" json:"removed_ratio"`
	Backlog  PenaltyRule `yaml:"backlog_change" json:"backlog_change"`
	Weights  Weights     `yaml:"weights" json:"weights"`
}

// DefaultHealthPolicy returns the canonical thresholds.
func DefaultHealthPolicy() HealthPolicy {
	return HealthPolicy{
		Evenness: PenaltyRule{Threshold: 70, Multiplier: 0.5, Cap: 25},
		LastDay:  PenaltyRule{Threshold: 30, Multiplier: 0.5, Cap: 25},
		Todo:     PenaltyRule{Threshold: 20, Multiplier: 1, Cap: 20},
		Removed:  PenaltyRule{Threshold: 10, Multiplier: 1.5, Cap: 15},
		Backlog:  PenaltyRule{Threshold: 20, Multiplier: 1, Cap: 15},
		Weights: Weights{
			Delivery:        0.25,
			Stability:       0.20,
			Flow:            0.20,
			Quality:         0.20,
			TeamLoad:        0.15,
			DefaultTeamLoad: 80,
		},
	}
}

// LoadHealthPolicy reads a YAML policy file. Fields absent from the file keep
// their default values.
func LoadHealthPolicy(path string) (HealthPolicy, error) {
	policy := DefaultHealthPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("health policy: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, fmt.Errorf("health policy: parse yaml: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return policy, fmt.Errorf("health policy: %w", err)
	}
	return policy, nil
}

// Validate rejects negative caps and multipliers and weights that do not sum to 1.
func (p HealthPolicy) Validate() error {
	rules := map[string]PenaltyRule{
		"transition_evenness": p.Evenness,
		"last_day_completion": p.LastDay,
		"todo_ratio":          p.Todo,
		"removed_ratio":       p.Removed,
		"backlog_change":      p.Backlog,
	}
	for name, r := range rules {
		if r.Cap < 0 || r.Multiplier < 0 {
			return fmt.Errorf("%s: cap and multiplier must be non-negative", name)
		}
	}

	w := p.Weights
	sum := w.Delivery + w.Stability + w.Flow + w.Quality + w.TeamLoad
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("weights must sum to 1, got %.3f", sum)
	}
	return nil
}
