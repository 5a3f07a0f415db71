package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sprint-health/internal/config"
	"sprint-health/internal/stats"
	"sprint-health/internal/tracker"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SnapshotSource supplies the data the handlers read. dataset.Service
// implements it.
type SnapshotSource interface {
	Snapshot() (*tracker.Snapshot, error)
	Refresh() error
}

// Server exposes the metrics engine over HTTP.
type Server struct {
	cfg    *config.AppConfig
	data   SnapshotSource
	policy stats.HealthPolicy
	router *gin.Engine
}

// NewServer wires the routes. policy is the base health policy that
// per-request threshold overrides start from.
func NewServer(cfg *config.AppConfig, data SnapshotSource, policy stats.HealthPolicy) (*Server, error) {
	if data == nil {
		return nil, fmt.Errorf("api: snapshot source is required")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{cfg: cfg, data: data, policy: policy}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(corsPolicy())
	s.registerRoutes(router)
	s.router = router
	return s, nil
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on cfg.HTTPAddr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("HTTP server shutdown failed")
		}
	}()

	log.Info().Str("addr", s.cfg.HTTPAddr).Msg("HTTP API listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api: %w", err)
	}
	log.Info().Msg("HTTP API stopped")
	return nil
}

func (s *Server) registerRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/sprints", s.handleSprints)
	api.GET("/teams", s.handleGroups(config.GroupByWorkgroup))
	api.GET("/areas", s.handleGroups(config.GroupByArea))
	api.GET("/metrics", s.handleMetrics)
	api.GET("/sprint-health", s.handleSprintHealth)
	api.GET("/policy", s.handlePolicy)
	api.POST("/refresh", s.handleRefresh)
}
