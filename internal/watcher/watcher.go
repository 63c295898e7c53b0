// Package watcher triggers index rebuilds when the source document
// changes on disk. Editors tend to emit bursts of write events for one
// save, so events are debounced before the rebuild fires.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultDebounce is how long the document must stay quiet before a
// rebuild fires.
const DefaultDebounce = 2 * time.Second

// RebuildFunc performs the index rebuild.
type RebuildFunc func(ctx context.Context) error

// Watcher rebuilds the index when the watched document changes.
type Watcher struct {
	path     string
	debounce time.Duration
	rebuild  RebuildFunc
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New creates a watcher for the document at path.
func New(path string, rebuild RebuildFunc, opts ...Option) *Watcher {
	w := &Watcher{
		path:     path,
		debounce: DefaultDebounce,
		rebuild:  rebuild,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. The parent directory is watched
// rather than the file itself so that atomic saves (write to temp,
// rename over) keep being observed.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	logger.Info("Watching %s for changes", w.path)

	var timer *time.Timer
	var fire <-chan time.Time

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Document changed (%s), debouncing", event.Op)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			logger.Info("Rebuilding index after document change")
			if err := w.rebuild(ctx); err != nil {
				// Keep watching; the next save gets another chance.
				logger.Error("Rebuild failed: %v", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watch error: %v", err)
		}
	}
}
