package visuals

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"sprint-health/internal/stats"
)

// Charts builds every chart available for a metrics result, keyed by name.
// Charts without data are omitted.
func Charts(res *stats.MetricsResult) map[string]string {
	charts := make(map[string]string)
	add := func(name, chart string) {
		if chart != "" {
			charts[name] = chart
		}
	}
	days := stats.SprintWindow{Start: res.SprintStart, End: res.SprintEnd}.Days()

	add("buckets", GenerateBucketChart(res))
	add("daily_transitions", GenerateTransitionsChart(res.StatusTransitions, days))
	add("scope_changes", GenerateScopeChart(res.AddedTasks, res.ExcludedTasks, days))
	add("health_penalties", GeneratePenaltyChart(res.HealthDetails, res.HealthModel))
	return charts
}

// GenerateBucketChart creates a Mermaid bar chart of estimated hours per bucket.
func GenerateBucketChart(res *stats.MetricsResult) string {
	values := []float64{res.Todo, res.InProgress, res.Done, res.Removed}
	maxVal := 0.0
	for _, v := range values {
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Scope by Status (Hours)\"\n")
	sb.WriteString("    x-axis [\"To Do\", \"In Progress\", \"Done\", \"Removed\"]\n")
	sb.WriteString(fmt.Sprintf("    y-axis \"Hours\" 0 --> %d\n", int(math.Ceil(maxVal*1.1))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", joinFloats(values)))
	sb.WriteString("```")
	return sb.String()
}

// GenerateTransitionsChart shows status changes per sprint day with the
// completions as a line.
func GenerateTransitionsChart(tr stats.TransitionAnalysis, days []string) string {
	if len(tr.DailyDistribution) == 0 || len(days) == 0 {
		return ""
	}

	var labels, totals, done []string
	maxVal := 0
	for _, d := range days {
		dt := tr.DailyDistribution[d]
		labels = append(labels, fmt.Sprintf("\"%s\"", d[5:]))
		totals = append(totals, fmt.Sprintf("%d", dt.TotalChanges))
		done = append(done, fmt.Sprintf("%d", dt.ToDone))
		if dt.TotalChanges > maxVal {
			maxVal = dt.TotalChanges
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Status Changes per Day (Evenness %.1f%%)\"\n", tr.Evenness))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Changes\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(totals, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(done, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateScopeChart plots hours pulled into and taken out of the sprint per day.
func GenerateScopeChart(added, excluded map[string]stats.DayChange, days []string) string {
	if (len(added) == 0 && len(excluded) == 0) || len(days) == 0 {
		return ""
	}

	var labels []string
	addedVals := make([]float64, 0, len(days))
	excludedVals := make([]float64, 0, len(days))
	maxVal := 0.0
	for _, d := range days {
		labels = append(labels, fmt.Sprintf("\"%s\"", d[5:]))
		a, e := added[d].Hours, excluded[d].Hours
		addedVals = append(addedVals, a)
		excludedVals = append(excludedVals, e)
		maxVal = math.Max(maxVal, math.Max(a, e))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Scope Changes (Hours Added vs Excluded)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Hours\" 0 --> %d\n", int(math.Ceil(math.Max(1, maxVal*1.1)))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", joinFloats(addedVals)))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", joinFloats(excludedVals)))
	sb.WriteString("```")
	return sb.String()
}

// GeneratePenaltyChart renders the health factors. For the penalty model these
// are deductions, for the weighted model the sub-scores.
func GeneratePenaltyChart(details map[string]float64, model string) string {
	if len(details) == 0 {
		return ""
	}

	names := make([]string, 0, len(details))
	for name := range details {
		names = append(names, name)
	}
	sort.Strings(names)

	var labels []string
	values := make([]float64, 0, len(names))
	for _, name := range names {
		labels = append(labels, fmt.Sprintf("\"%s\"", name))
		values = append(values, details[name])
	}

	title, axis, top := "Health Penalties", "Points Deducted", 25
	if model == stats.ModelWeighted {
		title, axis, top = "Health Factors", "Score", 100
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"%s\"\n", title))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"%s\" 0 --> %d\n", axis, top))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", joinFloats(values)))
	sb.WriteString("```")
	return sb.String()
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.1f", v)
	}
	return strings.Join(parts, ", ")
}
