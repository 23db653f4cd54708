// Package watch triggers rebuild cycles when content bundles or documents
// change on disk. Each settled burst of filesystem events starts exactly one
// new build cycle; cycles never overlap because the trigger callback runs to
// completion before the next burst is dispatched.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a set of directories and invokes a callback per debounced
// change burst.
type Watcher struct {
	dirs     []string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// New constructs a watcher over dirs. debounce <= 0 selects 500ms, enough to
// let bundlers finish writing multi-file output.
func New(dirs []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create file watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := addTree(fsw, dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return &Watcher{dirs: dirs, debounce: debounce, watcher: fsw}, nil
}

// addTree registers dir and every subdirectory beneath it; fsnotify watches
// are not recursive.
func addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		if !entry.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

// Run blocks, invoking trigger once per settled event burst, until ctx is done.
// A trigger failure is logged and watching continues: the next change gets a
// fresh cycle.
func (w *Watcher) Run(ctx context.Context, trigger func(context.Context) error) error {
	defer func() { _ = w.watcher.Close() }()

	slog.Info("Watching for changes", "dirs", w.dirs, "debounce", w.debounce)

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if err := addTree(w.watcher, event.Name); err != nil {
						slog.Error("Failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			slog.Debug("Change detected", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", "error", err)
		case <-timerC:
			timer = nil
			timerC = nil
			if err := trigger(ctx); err != nil {
				slog.Error("Rebuild failed", "error", err)
			}
		}
	}
}
