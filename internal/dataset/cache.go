package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sprint-health/internal/tracker"

	"github.com/rs/zerolog/log"
)

// CacheFileName is the JSONL snapshot written inside the cache directory.
const CacheFileName = "snapshot.jsonl"

// Record kinds of the cache file. The meta record comes first.
const (
	kindMeta   = "meta"
	kindTask   = "task"
	kindSprint = "sprint"
	kindEvent  = "event"
)

type cacheRecord struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type cacheMeta struct {
	HasLinks         bool      `json:"has_links"`
	HasHistoryChange bool      `json:"has_history_change"`
	LoadedAt         time.Time `json:"loaded_at"`
}

// SaveCache persists the snapshot as JSONL via a temp file and atomic rename.
func SaveCache(cacheDir string, snap *tracker.Snapshot) error {
	path := filepath.Join(cacheDir, CacheFileName)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	write := func(kind string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return encoder.Encode(cacheRecord{Kind: kind, Data: data})
	}

	fail := func(err error) error {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	meta := cacheMeta{HasLinks: snap.HasLinks, HasHistoryChange: snap.HasHistoryChange, LoadedAt: snap.LoadedAt}
	if err := write(kindMeta, meta); err != nil {
		return fail(err)
	}
	for _, t := range snap.Tasks {
		if err := write(kindTask, t); err != nil {
			return fail(err)
		}
	}
	for _, s := range snap.Sprints {
		if err := write(kindSprint, s); err != nil {
			return fail(err)
		}
	}
	for _, e := range snap.History {
		if err := write(kindEvent, e); err != nil {
			return fail(err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("tasks", len(snap.Tasks)).
		Int("history", len(snap.History)).
		Msg("Snapshot saved to cache")
	return nil
}

// LoadCache reads a snapshot written by SaveCache. A missing cache returns
// (nil, nil).
func LoadCache(cacheDir string) (*tracker.Snapshot, error) {
	path := filepath.Join(cacheDir, CacheFileName)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	defer file.Close()

	var (
		meta    cacheMeta
		tasks   []tracker.Task
		sprints []tracker.Sprint
		history []tracker.HistoryEvent
		skipped int
	)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var rec cacheRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			skipped++
			continue
		}
		var err error
		switch rec.Kind {
		case kindMeta:
			err = json.Unmarshal(rec.Data, &meta)
		case kindTask:
			var t tracker.Task
			if err = json.Unmarshal(rec.Data, &t); err == nil {
				tasks = append(tasks, t)
			}
		case kindSprint:
			var s tracker.Sprint
			if err = json.Unmarshal(rec.Data, &s); err == nil {
				sprints = append(sprints, s)
			}
		case kindEvent:
			var e tracker.HistoryEvent
			if err = json.Unmarshal(rec.Data, &e); err == nil {
				history = append(history, e)
			}
		}
		if err != nil {
			skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading cache: %w", err)
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Str("path", path).Msg("Skipping invalid JSON lines in cache")
	}

	snap := tracker.NewSnapshot(tasks, sprints, history)
	snap.HasLinks = meta.HasLinks
	snap.HasHistoryChange = meta.HasHistoryChange
	if !meta.LoadedAt.IsZero() {
		snap.LoadedAt = meta.LoadedAt
	}

	log.Info().Str("path", path).Int("tasks", len(tasks)).Msg("Loaded snapshot from cache")
	return snap, nil
}

// cacheFresh reports whether the cache is newer than every existing source file.
func cacheFresh(cacheDir string, sources ...string) bool {
	info, err := os.Stat(filepath.Join(cacheDir, CacheFileName))
	if err != nil {
		return false
	}
	for _, src := range sources {
		si, err := os.Stat(src)
		if err != nil {
			continue
		}
		if si.ModTime().After(info.ModTime()) {
			return false
		}
	}
	return true
}
