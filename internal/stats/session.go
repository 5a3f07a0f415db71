package stats

import (
	"fmt"
	"strings"

	"sprint-health/internal/tracker"

	"github.com/rs/zerolog/log"
)

// Options tune a metrics computation.
type Options struct {
	// Scorer defaults to the penalty model with the default policy.
	Scorer HealthScorer
	// ScopeTransitions limits the transition analysis to the filtered tasks
	// instead of every task in the history log.
	ScopeTransitions bool
}

// AnalysisSession orchestrates the analytical pipeline for a single request.
// It only reads the snapshot; everything it derives is local to the session.
type AnalysisSession struct {
	snapshot *tracker.Snapshot
	query    Query
	opts     Options

	sprint   tracker.Sprint
	tasks    []tracker.Task
	resolved bool
}

// NewAnalysisSession creates a new orchestration session.
func NewAnalysisSession(snapshot *tracker.Snapshot, query Query, opts Options) *AnalysisSession {
	if opts.Scorer == nil {
		opts.Scorer = PenaltyScorer{Policy: DefaultHealthPolicy()}
	}
	return &AnalysisSession{snapshot: snapshot, query: query, opts: opts}
}

// Resolve validates the query, picks the sprint and filters its tasks.
func (s *AnalysisSession) Resolve() error {
	if s.resolved {
		return nil
	}
	if s.snapshot == nil {
		return ErrNoData
	}

	// 1. Validate selectors
	if err := s.query.Validate(); err != nil {
		return err
	}

	// 2. First requested sprint that exists
	found := false
	for _, name := range nonEmpty(s.query.SprintNames) {
		if sp, ok := s.snapshot.Sprint(name); ok {
			s.sprint = sp
			found = true
			break
		}
		log.Warn().Str("sprint", name).Msg("Requested sprint not found")
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownSprint, strings.Join(s.query.SprintNames, ", "))
	}

	// 3. Filter tasks for the selection
	sel := NewGroupSelector(s.query.GroupField, s.query.GroupValues)
	s.tasks = FilterTasks(s.snapshot.Tasks, s.sprint, sel, s.query.TimeFramePct)

	log.Debug().
		Str("sprint", s.sprint.Name).
		Strs("groups", s.query.GroupValues).
		Int("timeFrame", s.query.TimeFramePct).
		Int("tasks", len(s.tasks)).
		Msg("Resolved metrics selection")

	s.resolved = true
	return nil
}

// Sprint returns the resolved sprint.
func (s *AnalysisSession) Sprint() tracker.Sprint {
	return s.sprint
}

// Tasks returns the filtered task subset.
func (s *AnalysisSession) Tasks() []tracker.Task {
	return s.tasks
}

// Run computes the full metrics payload.
func (s *AnalysisSession) Run() (*MetricsResult, error) {
	if err := s.Resolve(); err != nil {
		return nil, err
	}

	history := s.history()

	// 1. Bucket sums and scope aggregates
	totals := SumBuckets(s.tasks)
	blocked := 0.0
	if s.snapshot.HasLinks {
		blocked = BlockedHours(s.tasks)
	}
	backlog := BacklogChange(s.tasks, s.sprint)
	excluded := ExcludedTasksByDay(s.tasks, history, s.sprint)
	added := AddedTasksByDay(s.tasks, history, s.sprint)

	// 2. Status transitions
	var scope tracker.EntitySet
	if s.opts.ScopeTransitions {
		scope = make(tracker.EntitySet, len(s.tasks))
		for _, t := range s.tasks {
			scope[t.EntityID] = struct{}{}
		}
	}
	transitions := AnalyzeTransitions(history, s.sprint, scope)

	// 3. Health
	health := s.opts.Scorer.Score(HealthInput{
		Totals:           totals,
		BlockedHours:     blocked,
		BacklogChangePct: backlog,
		Transitions:      transitions,
		AssigneeLoad:     AssigneeLoad(s.tasks),
	})

	result := &MetricsResult{
		Sprint:            s.sprint.Name,
		SprintStart:       s.sprint.Start,
		SprintEnd:         s.sprint.End,
		TimeFrame:         s.query.TimeFramePct,
		Todo:              totals.Hours(BucketTodo),
		InProgress:        totals.Hours(BucketInProgress),
		Done:              totals.Hours(BucketDone),
		Removed:           totals.Hours(BucketRemoved),
		BacklogChanges:    backlog,
		BlockedTasks:      blocked,
		ExcludedTasks:     excluded,
		AddedTasks:        added,
		StatusTransitions: transitions,
		HealthScore:       health.Score,
		HealthDetails:     health.Details,
		HealthModel:       health.Model,
		TaskCounts:        totals.Counts(),
	}
	if totals.Total.Seconds > 0 {
		result.HealthMetrics = HealthMetrics{
			TodoPct:          Round1(totals.Share(BucketTodo)),
			RemovedPct:       Round1(totals.Share(BucketRemoved)),
			BacklogChangePct: backlog,
			Evenness:         transitions.Evenness,
			LastDayPct:       transitions.LastDayCompletionPct,
		}
	}

	log.Debug().
		Str("sprint", s.sprint.Name).
		Float64("score", health.Score).
		Str("model", health.Model).
		Msg("Computed sprint metrics")
	return result, nil
}

// history returns the change log, or nil when the export carried no change column.
func (s *AnalysisSession) history() []tracker.HistoryEvent {
	if !s.snapshot.HasHistoryChange {
		log.Warn().Msg("History has no change column, scope and transition metrics are empty")
		return nil
	}
	return s.snapshot.History
}

// ComputeMetrics runs a session for one selection.
func ComputeMetrics(snapshot *tracker.Snapshot, query Query, opts Options) (*MetricsResult, error) {
	return NewAnalysisSession(snapshot, query, opts).Run()
}

// CompareSprints computes every requested sprint separately. Any unknown
// sprint fails the whole comparison.
func CompareSprints(snapshot *tracker.Snapshot, query Query, opts Options) (*SprintComparison, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	comparison := &SprintComparison{Sprints: make([]*MetricsResult, 0, len(query.SprintNames))}
	var (
		scores []float64
		names  []string
	)
	for _, name := range nonEmpty(query.SprintNames) {
		single := query
		single.SprintNames = []string{name}
		res, err := ComputeMetrics(snapshot, single, opts)
		if err != nil {
			return nil, err
		}
		comparison.Sprints = append(comparison.Sprints, res)
		scores = append(scores, res.HealthScore)
		names = append(names, res.Sprint)
	}
	if len(scores) > 0 {
		comparison.AverageHealthScore = Round1(CalculateMean(scores))
	}
	if len(scores) > 1 {
		trend := AnalyzeHealthTrend(scores, names)
		comparison.Trend = &trend
	}
	return comparison, nil
}
