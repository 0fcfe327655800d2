// Package watch reruns work when a schema file changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mcncl/pollinate/internal/errors"
	"github.com/mcncl/pollinate/internal/logging"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period used when none is given.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches one file. fsnotify watches the parent directory so that
// editors replacing the file atomically are still noticed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *logrus.Entry
}

// New creates a Watcher for path. Bursts of events are coalesced until no
// event has arrived for debounce.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewInputError("failed to resolve watch path", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewInputError("failed to create file watcher", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, errors.NewInputError("failed to watch "+filepath.Dir(abs), err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:  watcher,
		path:     abs,
		debounce: debounce,
		logger:   logging.NewLogger("watch"),
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls onChange after each settled burst of changes to the file. It
// blocks until ctx is cancelled and closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	defer func() {
		_ = w.watcher.Close()
	}()

	// armed only while a burst is settling
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	w.logger.WithField("path", w.path).Debug("Watching for changes")

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)

			if !w.relevant(event) {
				continue
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			w.logger.Infof("Schema changed: %s", filepath.Base(w.path))
			onChange(w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			timer.Stop()
			return nil
		}
	}
}

// Close stops the watcher without waiting for Run.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
