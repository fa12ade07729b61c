// Package watch re-checks templates as they change on disk and pushes the
// resulting diagnostics to websocket clients.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher batches file system events under a directory tree.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	debounce time.Duration
	relevant func(path string) bool
	log      *slog.Logger
}

// Change is a debounced file change.
type Change struct {
	Path    string
	Removed bool
}

// New watches root and every directory below it. relevant filters the files
// whose changes are reported.
func New(root string, debounce time.Duration, relevant func(string) bool, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		fs:       fw,
		root:     root,
		debounce: debounce,
		relevant: relevant,
		log:      logger.With(slog.String("component", "watch")),
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and its subdirectories, skipping hidden directories
// and node_modules.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// Run delivers batches of changes to handle until ctx is done or the
// watcher is closed. Changes to the same path within one batch are merged.
func (w *Watcher) Run(ctx context.Context, handle func([]Change)) error {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	var pending []fsnotify.Event

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
					if err := w.addTree(event.Name); err != nil {
						w.log.Warn("failed to watch directory", slog.String("dir", event.Name), slog.String("error", err.Error()))
					}
					continue
				}
			}

			if !w.relevant(event.Name) {
				continue
			}
			pending = append(pending, event)
			debounce.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", slog.String("error", err.Error()))

		case <-debounce.C:
			changes := Coalesce(pending)
			pending = nil
			if len(changes) > 0 {
				handle(changes)
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	if errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return err
}

// Coalesce merges events into one change per path, in first-seen order.
// The last event for a path decides whether it counts as removed.
func Coalesce(events []fsnotify.Event) []Change {
	index := make(map[string]int)
	var changes []Change
	for _, e := range events {
		removed := e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename)
		if i, ok := index[e.Name]; ok {
			changes[i].Removed = removed
			continue
		}
		index[e.Name] = len(changes)
		changes = append(changes, Change{Path: e.Name, Removed: removed})
	}
	return changes
}
