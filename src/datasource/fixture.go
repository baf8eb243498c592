package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/username/mejoravivienda/backend/src/logger"
	"github.com/username/mejoravivienda/backend/src/models"
)

// FixtureSource serves rows from a local JSON fixture file (an array of
// objects). It watches the file with fsnotify and reloads on change, so
// editing fixtures during development behaves like a row-store refresh:
// each reload is a full snapshot replacement.
type FixtureSource struct {
	path    string
	watcher *fsnotify.Watcher

	mu   sync.RWMutex
	snap Snapshot
}

// NewFixtureSource loads the fixture file and starts the change watcher.
// The initial load failure is not fatal; the source starts in the failed
// state and a later file change or manual refresh can recover it.
func NewFixtureSource(path string) (*FixtureSource, error) {
	s := &FixtureSource{
		path: path,
		snap: Snapshot{State: StateIdle},
	}

	if err := s.Refresh(context.Background()); err != nil {
		logger.L.Warn("Initial fixture load failed", "path", path, "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fixture watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files on save and
	// a file-level watch would be lost after the first rename.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching fixture dir %s: %w", filepath.Dir(path), err)
	}
	s.watcher = watcher
	go s.watch()

	return s, nil
}

func (s *FixtureSource) watch() {
	base := filepath.Base(s.path)
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.L.Debug("Fixture file changed, reloading", "path", s.path, "op", ev.Op.String())
			if err := s.Refresh(context.Background()); err != nil {
				logger.L.Warn("Fixture reload failed", "path", s.path, "error", err)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logger.L.Warn("Fixture watcher error", "path", s.path, "error", err)
		}
	}
}

// Close stops the file watcher.
func (s *FixtureSource) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// Snapshot returns the current load state without blocking.
func (s *FixtureSource) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Refresh re-reads the fixture file and replaces the snapshot. A failed read
// keeps the previous rows and marks the snapshot failed.
func (s *FixtureSource) Refresh(_ context.Context) error {
	rows, err := s.load()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.snap.State = StateFailed
		s.snap.Err = err
		return err
	}

	s.snap = Snapshot{
		ID:        uuid.New().String(),
		Rows:      rows,
		State:     StateReady,
		FetchedAt: time.Now().UTC(),
	}
	return nil
}

func (s *FixtureSource) load() ([]models.RawRow, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", s.path, err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", s.path, err)
	}
	return StringifyRows(raw), nil
}
