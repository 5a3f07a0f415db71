package dataset

import (
	"sync"

	"sprint-health/internal/config"
	"sprint-health/internal/stats"
	"sprint-health/internal/tracker"

	"github.com/rs/zerolog/log"
)

// Service owns the current snapshot. Readers get an immutable pointer; a
// refresh swaps it atomically and a failed refresh keeps the previous one.
type Service struct {
	files    Files
	cacheDir string
	useCache bool

	// refreshMu serializes refreshes from the watcher and the API.
	refreshMu sync.Mutex

	mu      sync.RWMutex
	current *tracker.Snapshot
}

// NewService creates a service for the exports named in cfg. Nothing is read
// until Load is called.
func NewService(cfg *config.AppConfig) *Service {
	return &Service{
		files: Files{
			Tasks:     cfg.TasksFile,
			Sprints:   cfg.SprintsFile,
			History:   cfg.HistoryFile,
			Delimiter: cfg.CSVDelimiter,
		},
		cacheDir: cfg.CacheDir,
		useCache: cfg.UseCache,
	}
}

// Files returns the export locations the service reads.
func (s *Service) Files() Files {
	return s.files
}

// Load publishes a snapshot, preferring a cache that is newer than the exports.
func (s *Service) Load() error {
	if s.useCache && cacheFresh(s.cacheDir, s.files.Tasks, s.files.Sprints, s.files.History) {
		snap, err := LoadCache(s.cacheDir)
		if err != nil {
			log.Warn().Err(err).Msg("Cache unreadable, falling back to exports")
		} else if snap != nil {
			s.publish(snap)
			return nil
		}
	}
	return s.Refresh()
}

// Refresh re-reads the exports and, when caching is enabled, rewrites the cache.
func (s *Service) Refresh() error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	snap, err := LoadCSV(s.files)
	if err != nil {
		return err
	}
	if s.useCache {
		if err := SaveCache(s.cacheDir, snap); err != nil {
			log.Warn().Err(err).Msg("Failed to write snapshot cache")
		}
	}
	s.publish(snap)
	return nil
}

// Current returns the published snapshot, or nil before the first Load.
func (s *Service) Current() *tracker.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Snapshot returns the published snapshot or stats.ErrNoData.
func (s *Service) Snapshot() (*tracker.Snapshot, error) {
	snap := s.Current()
	if snap == nil {
		return nil, stats.ErrNoData
	}
	return snap, nil
}

func (s *Service) publish(snap *tracker.Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
}
