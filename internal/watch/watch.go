// Package watch re-runs an audit when a collection changes on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDelay is the quiet period after the last event before the
// callback runs. Copying an album produces a burst of events.
const DefaultDebounceDelay = 500 * time.Millisecond

// Logger receives watcher problems.
type Logger interface {
	Debug(message string)
	Error(message string)
}

// Watcher watches collection roots and every directory below them.
type Watcher struct {
	watcher  *fsnotify.Watcher
	log      Logger
	Debounce time.Duration
}

// New creates a Watcher for roots and all their subdirectories.
func New(roots []string, log Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{watcher: fw, log: log, Debounce: DefaultDebounceDelay}
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addRecursive adds dir and all directories below it.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) || os.IsPermission(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			if os.IsPermission(err) {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run calls fn once the collection has been quiet for Debounce after a
// change, until ctx is done. Calls to fn never overlap. New directories are
// watched as they appear.
func (w *Watcher) Run(ctx context.Context, fn func()) error {
	defer w.watcher.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.log.Debug(fmt.Sprintf("Watcher event: %s", event))
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.log.Error(err.Error())
					}
				}
			}
			timer.Reset(w.Debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error(fmt.Sprintf("Watcher error: %v", err))

		case <-timer.C:
			fn()
		}
	}
}
