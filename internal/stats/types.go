package stats

import "time"

// MetricsResult is the full analytics payload for one sprint selection.
// Every field is populated, zeroed when nothing matched.
type MetricsResult struct {
	Sprint      string    `json:"sprint"`
	SprintStart time.Time `json:"sprint_start_date"`
	SprintEnd   time.Time `json:"sprint_end_date"`
	TimeFrame   int       `json:"time_frame"`

	Todo       float64 `json:"todo"`
	InProgress float64 `json:"in_progress"`
	Done       float64 `json:"done"`
	Removed    float64 `json:"removed"`

	BacklogChanges float64              `json:"backlog_changes"`
	BlockedTasks   float64              `json:"blocked_tasks"`
	ExcludedTasks  map[string]DayChange `json:"excluded_tasks"`
	AddedTasks     map[string]DayChange `json:"added_tasks"`

	StatusTransitions TransitionAnalysis `json:"status_transitions"`

	HealthScore   float64            `json:"health_score"`
	HealthDetails map[string]float64 `json:"health_details"`
	HealthModel   string             `json:"health_model"`
	HealthMetrics HealthMetrics      `json:"health_metrics"`

	TaskCounts map[string]int `json:"task_counts"`
}

// HealthMetrics are the ratios the penalty model compares against its thresholds.
type HealthMetrics struct {
	TodoPct          float64 `json:"todo_percentage"`
	RemovedPct       float64 `json:"removed_percentage"`
	BacklogChangePct float64 `json:"backlog_change_percentage"`
	Evenness         float64 `json:"transition_evenness"`
	LastDayPct       float64 `json:"last_day_completion_percentage"`
}

// SprintComparison holds per-sprint results and their mean health score.
// Trend is set when at least two sprints were compared.
type SprintComparison struct {
	Sprints            []*MetricsResult `json:"sprints"`
	AverageHealthScore float64          `json:"average_health_score"`
	Trend              *HealthTrend     `json:"trend,omitempty"`
}
