package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// Watch imports the watch file into the session, then re-imports it every
// time it is written until ctx is cancelled. Re-imports merge like any other
// import: entries already resident keep their data. It returns immediately
// when no watch file is configured.
func (s *Server) Watch(ctx context.Context) error {
	if s.watchFile == "" {
		return nil
	}
	path, err := filepath.Abs(s.watchFile)
	if err != nil {
		return fmt.Errorf("failed to resolve watch file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	s.importFile(path)
	s.watchLoop(ctx, watcher, path)
	return nil
}

// watchLoop handles file system events.
func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	var (
		mu            sync.Mutex
		debounceTimer *time.Timer
	)
	defer func() {
		mu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			mu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				s.logger.Info("change detected", "file", filepath.Base(path))
				s.importFile(path)
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", "error", err)
		}
	}
}

// importFile merges the file into the session. Unreadable files are logged
// and skipped; the next save retries.
func (s *Server) importFile(path string) {
	fragment, err := graph.ReadFile(path)
	if err != nil {
		s.logger.Warn("failed to import watch file", "file", path, "error", err)
		return
	}
	s.session.Import(fragment)
}
