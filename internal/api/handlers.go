package api

import (
	"errors"
	"net/http"
	"time"

	"sprint-health/internal/stats"
	"sprint-health/internal/visuals"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type sprintInfo struct {
	Name       string    `json:"sprint_name"`
	Status     string    `json:"sprint_status,omitempty"`
	Start      time.Time `json:"sprint_start_date"`
	End        time.Time `json:"sprint_end_date"`
	TasksCount int       `json:"tasks_count"`
}

// metricsResponse adds rendered charts to a metrics result when enabled.
type metricsResponse struct {
	*stats.MetricsResult
	Charts map[string]string `json:"charts,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	snap, err := s.data.Snapshot()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":      "error",
			"data_loaded": false,
			"detail":      err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"data_loaded":    true,
		"entities_count": len(snap.Tasks),
		"sprints_count":  len(snap.Sprints),
		"history_count":  len(snap.History),
		"loaded_at":      snap.LoadedAt,
	})
}

func (s *Server) handleSprints(c *gin.Context) {
	snap, err := s.data.Snapshot()
	if err != nil {
		writeError(c, err)
		return
	}
	sprints := make([]sprintInfo, 0, len(snap.Sprints))
	for _, sp := range snap.Sprints {
		sprints = append(sprints, sprintInfo{
			Name:       sp.Name,
			Status:     sp.Status,
			Start:      sp.Start,
			End:        sp.End,
			TasksCount: len(sp.EntityIDs),
		})
	}
	c.JSON(http.StatusOK, gin.H{"sprints": sprints})
}

func (s *Server) handleGroups(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := s.data.Snapshot()
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"field": field, "values": snap.GroupValues(field)})
	}
}

func (s *Server) handleMetrics(c *gin.Context) {
	snap, err := s.data.Snapshot()
	if err != nil {
		writeError(c, err)
		return
	}

	// 1. Parse the selection
	query, err := s.metricsQuery(c, "selected_sprints", "time_frame", "selected_areas")
	if err != nil {
		writeError(c, err)
		return
	}
	opts, err := s.analysisOptions(c)
	if err != nil {
		writeError(c, err)
		return
	}

	// 2. Compute
	result, err := stats.ComputeMetrics(snap, query, opts)
	if err != nil {
		writeError(c, err)
		return
	}

	// 3. Decorate
	resp := metricsResponse{MetricsResult: result}
	if s.cfg.EnableMermaidCharts {
		resp.Charts = visuals.Charts(result)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSprintHealth(c *gin.Context) {
	snap, err := s.data.Snapshot()
	if err != nil {
		writeError(c, err)
		return
	}

	query, err := s.metricsQuery(c, "sprint_ids", "time_point", "selected_areas", "area_ids")
	if err != nil {
		writeError(c, err)
		return
	}
	opts, err := s.analysisOptions(c)
	if err != nil {
		writeError(c, err)
		return
	}

	comparison, err := stats.CompareSprints(snap, query, opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

func (s *Server) handlePolicy(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"model":  s.cfg.HealthModel,
		"policy": s.policy,
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.data.Refresh(); err != nil {
		log.Error().Err(err).Msg("Manual refresh failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	snap, err := s.data.Snapshot()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"entities_count": len(snap.Tasks),
		"loaded_at":      snap.LoadedAt,
	})
}

// writeError maps engine errors onto HTTP status codes with a {"detail": ...} body.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var pe *paramError
	var ve *stats.ValidationError
	switch {
	case errors.As(err, &pe):
		status = http.StatusBadRequest
	case errors.As(err, &ve) && ve.Field == "time_frame":
		status = http.StatusBadRequest
	case errors.Is(err, stats.ErrInvalidQuery):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, stats.ErrUnknownSprint):
		status = http.StatusNotFound
	case errors.Is(err, stats.ErrNoData):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}
