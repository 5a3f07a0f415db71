package dataset

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// watchDebounce coalesces the burst of events a single export produces.
const watchDebounce = 500 * time.Millisecond

// Watch refreshes the snapshot whenever one of the exports is written. It
// watches the parent directories so atomic saves that replace the file are
// seen too. A failed refresh is logged and the previous snapshot stays
// active. Watch runs until ctx is cancelled.
func (s *Service) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	tracked := make(map[string]bool)
	for _, f := range []string{s.files.Tasks, s.files.Sprints, s.files.History} {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		tracked[abs] = true
		dir := filepath.Dir(abs)
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	log.Info().Int("files", len(tracked)).Msg("Watching tracker exports for changes")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !tracked[abs] {
				continue
			}
			log.Debug().Str("file", abs).Msg("Export changed")
			pending = time.After(watchDebounce)

		case <-pending:
			pending = nil
			if err := s.Refresh(); err != nil {
				log.Error().Err(err).Msg("Reload failed, keeping previous snapshot")
				continue
			}
			log.Info().Msg("Snapshot reloaded")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}
