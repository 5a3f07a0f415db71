package stats

import (
	"fmt"
	"math"
	"sort"
)

// Health model names.
const (
	ModelPenalty  = "penalty"
	ModelWeighted = "weighted"
)

// HealthInput carries the aggregates a health model scores.
type HealthInput struct {
	Totals           BucketTotals
	BlockedHours     float64
	BacklogChangePct float64
	Transitions      TransitionAnalysis
	AssigneeLoad     map[string]int
}

// HealthResult is a 0-100 score with the factors that produced it.
type HealthResult struct {
	Score   float64            `json:"health_score"`
	Details map[string]float64 `json:"health_details"`
	Model   string             `json:"health_model"`
}

// HealthScorer turns sprint aggregates into a health score.
type HealthScorer interface {
	Name() string
	Score(in HealthInput) HealthResult
}

// NewScorer returns the named health model configured with policy.
func NewScorer(model string, policy HealthPolicy) (HealthScorer, error) {
	switch model {
	case "", ModelPenalty:
		return PenaltyScorer{Policy: policy}, nil
	case ModelWeighted:
		return WeightedScorer{Policy: policy}, nil
	default:
		return nil, &ValidationError{Field: "model", Reason: fmt.Sprintf("unknown health model %q", model)}
	}
}

func emptyHealth(model string) HealthResult {
	return HealthResult{Score: 0, Details: map[string]float64{}, Model: model}
}

// PenaltyScorer starts from 100 and subtracts independently capped penalties.
type PenaltyScorer struct {
	Policy HealthPolicy
}

func (PenaltyScorer) Name() string { return ModelPenalty }

func (p PenaltyScorer) Score(in HealthInput) HealthResult {
	if in.Totals.Total.Seconds == 0 {
		return emptyHealth(ModelPenalty)
	}

	penalties := []struct {
		name  string
		value float64
	}{
		{"transition_evenness", p.Policy.Evenness.below(in.Transitions.Evenness)},
		{"last_day_completion", p.Policy.LastDay.above(in.Transitions.LastDayCompletionPct)},
		{"todo_ratio", p.Policy.Todo.above(in.Totals.Share(BucketTodo))},
		{"removed_ratio", p.Policy.Removed.above(in.Totals.Share(BucketRemoved))},
		{"backlog_change", p.Policy.Backlog.above(in.BacklogChangePct)},
	}

	score := 100.0
	details := make(map[string]float64)
	for _, pen := range penalties {
		if pen.value <= 0 {
			continue
		}
		score -= pen.value
		details[pen.name] = Round1(pen.value)
	}

	return HealthResult{
		Score:   Round1(Clamp(score, 0, 100)),
		Details: details,
		Model:   ModelPenalty,
	}
}

func (r PenaltyRule) above(v float64) float64 {
	if v <= r.Threshold {
		return 0
	}
	return math.Min((v-r.Threshold)*r.Multiplier, r.Cap)
}

func (r PenaltyRule) below(v float64) float64 {
	if v >= r.Threshold {
		return 0
	}
	return math.Min((r.Threshold-v)*r.Multiplier, r.Cap)
}

// WeightedScorer blends delivery, stability, flow, quality and team-load
// sub-scores, each in [0,100].
type WeightedScorer struct {
	Policy HealthPolicy
}

func (WeightedScorer) Name() string { return ModelWeighted }

func (w WeightedScorer) Score(in HealthInput) HealthResult {
	if in.Totals.Total.Seconds == 0 {
		return emptyHealth(ModelWeighted)
	}

	totalHours := in.Totals.Total.Seconds / 3600
	completion := in.Totals.Share(BucketDone)
	blockedRatio := Percent(in.BlockedHours, totalHours)
	lastDay := in.Transitions.LastDayCompletionPct

	delivery := Clamp(completion, 0, 100)
	stability := Clamp(100-in.BacklogChangePct, 0, 100)
	flow := Clamp(100-blockedRatio, 0, 100)
	quality := Clamp(100-lastDay, 0, 100)
	teamLoad := w.teamLoad(in.AssigneeLoad)

	weights := w.Policy.Weights
	score := delivery*weights.Delivery +
		stability*weights.Stability +
		flow*weights.Flow +
		quality*weights.Quality +
		teamLoad*weights.TeamLoad

	return HealthResult{
		Score: Round1(Clamp(score, 0, 100)),
		Details: map[string]float64{
			"delivery_score":      Round1(delivery),
			"stability_score":     Round1(stability),
			"flow_score":          Round1(flow),
			"quality_score":       Round1(quality),
			"team_load_score":     Round1(teamLoad),
			"completion_rate":     Round1(completion),
			"blocked_ratio":       Round1(blockedRatio),
			"last_day_completion": Round1(lastDay),
		},
		Model: ModelWeighted,
	}
}

// teamLoad scores how evenly tasks are spread across assignees using the
// coefficient of variation of their task counts.
func (w WeightedScorer) teamLoad(load map[string]int) float64 {
	if len(load) < 2 {
		return w.Policy.Weights.DefaultTeamLoad
	}

	names := make([]string, 0, len(load))
	for name := range load {
		names = append(names, name)
	}
	sort.Strings(names)
	counts := make([]float64, 0, len(names))
	for _, name := range names {
		counts = append(counts, float64(load[name]))
	}

	cv := CoefficientOfVariation(counts)
	switch {
	case cv <= 0.3:
		return 100
	case cv <= 1.0:
		return math.Max(0.3, 1-(cv-0.3)/0.7) * 100
	default:
		return 30
	}
}
