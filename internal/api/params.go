package api

import (
	"fmt"
	"strconv"
	"strings"

	"sprint-health/internal/config"
	"sprint-health/internal/stats"

	"github.com/gin-gonic/gin"
)

// defaultTimeFrame analyses the whole sprint.
const defaultTimeFrame = 100

// paramError is a malformed query parameter. It maps to 400.
type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid value %q for parameter %s", e.value, e.name)
}

// listParam collects a list parameter given either as name[]=a&name[]=b,
// as repeated name=a&name=b, or as a comma separated name=a,b.
func listParam(c *gin.Context, names ...string) []string {
	var values []string
	for _, name := range names {
		for _, key := range []string{name + "[]", name} {
			for _, raw := range c.QueryArray(key) {
				for _, v := range strings.Split(raw, ",") {
					if v = strings.TrimSpace(v); v != "" {
						values = append(values, v)
					}
				}
			}
		}
	}
	return values
}

// intParam parses an optional integer parameter.
func intParam(c *gin.Context, name string, fallback int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &paramError{name: name, value: raw}
	}
	return v, nil
}

// floatParam parses an optional number and reports whether it was present.
func floatParam(c *gin.Context, name string) (float64, bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false, &paramError{name: name, value: raw}
	}
	return v, true, nil
}

// groupSelection picks the grouping field from whichever selector the client sent.
// Areas win over teams; the generic selected_groups uses the configured field.
func (s *Server) groupSelection(c *gin.Context, areaKeys ...string) (string, []string) {
	if areas := listParam(c, areaKeys...); len(areas) > 0 {
		return config.GroupByArea, areas
	}
	if teams := listParam(c, "selected_teams"); len(teams) > 0 {
		return config.GroupByWorkgroup, teams
	}
	return s.cfg.GroupField, listParam(c, "selected_groups")
}

// metricsQuery builds the engine query for /api/metrics.
func (s *Server) metricsQuery(c *gin.Context, sprintKey, timeKey string, areaKeys ...string) (stats.Query, error) {
	field, groups := s.groupSelection(c, areaKeys...)
	timeFrame, err := intParam(c, timeKey, defaultTimeFrame)
	if err != nil {
		return stats.Query{}, err
	}
	return stats.Query{
		SprintNames:  listParam(c, sprintKey),
		GroupValues:  groups,
		GroupField:   field,
		TimeFramePct: timeFrame,
	}, nil
}

// analysisOptions resolves the health model and applies threshold overrides
// on top of the server policy.
func (s *Server) analysisOptions(c *gin.Context) (stats.Options, error) {
	policy := s.policy

	overrides := []struct {
		name string
		rule *stats.PenaltyRule
	}{
		{"max_todo_percentage", &policy.Todo},
		{"max_removed_percentage", &policy.Removed},
		{"max_backlog_change", &policy.Backlog},
	}
	for _, o := range overrides {
		v, ok, err := floatParam(c, o.name)
		if err != nil {
			return stats.Options{}, err
		}
		if ok {
			o.rule.Threshold = v
		}
	}

	model := strings.ToLower(c.DefaultQuery("model", s.cfg.HealthModel))
	scorer, err := stats.NewScorer(model, policy)
	if err != nil {
		return stats.Options{}, err
	}

	scoped := false
	if raw, ok := c.GetQuery("scoped_transitions"); ok {
		if scoped, err = strconv.ParseBool(raw); err != nil {
			return stats.Options{}, &paramError{name: "scoped_transitions", value: raw}
		}
	}

	return stats.Options{Scorer: scorer, ScopeTransitions: scoped}, nil
}
