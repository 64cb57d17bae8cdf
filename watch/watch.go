// Package watch reports changed files after filesystem activity settles.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last event before changes
// are reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches files and directory trees.
type Watcher struct {
	Debounce time.Duration

	w      *fsnotify.Watcher
	log    *zap.Logger
	ignore func(path string) bool
	files  map[string]struct{} // explicitly watched files
	trees  []string            // recursively watched directories
}

// New creates watcher. Events for paths accepted by ignore are dropped, it
// could be nil.
func New(log *zap.Logger, ignore func(path string) bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if ignore == nil {
		ignore = func(string) bool { return false }
	}
	return &Watcher{
		Debounce: DefaultDebounce,
		w:        fw,
		log:      log.Named("watch"),
		ignore:   ignore,
		files:    make(map[string]struct{}),
	}, nil
}

// Close stops delivering events.
func (w *Watcher) Close() error {
	return w.w.Close()
}

// Add starts watching path. Directories are watched recursively, for files
// their directory is watched since editors often replace files on save.
func (w *Watcher) Add(path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		w.files[path] = struct{}{}
		return w.w.Add(filepath.Dir(path))
	}
	w.trees = append(w.trees, path)
	return w.addTree(path)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warn("Unable to watch path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignore(path) {
			return filepath.SkipDir
		}
		if err := w.w.Add(path); err != nil {
			return err
		}
		w.log.Debug("Watching directory", zap.String("dir", path))
		return nil
	})
}

func (w *Watcher) interesting(path string) bool {
	if w.ignore(path) {
		return false
	}
	if _, ok := w.files[path]; ok {
		return true
	}
	for _, root := range w.trees {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Run delivers batches of changed paths to fn until ctx is canceled. fn is
// called synchronously, events arriving meanwhile are reported in the next
// batch.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context, changed []string)) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod || !w.interesting(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.log.Warn("Unable to watch new directory", zap.String("dir", ev.Name), zap.Error(err))
					}
				}
			}
			w.log.Debug("Change detected", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			pending[ev.Name] = struct{}{}
			timer.Reset(w.Debounce)

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("Watcher error", zap.Error(err))

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			slices.Sort(changed)
			fn(ctx, changed)
		}
	}
}
