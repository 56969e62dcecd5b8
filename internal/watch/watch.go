// Package watch re-runs the documentation pipeline when Python files
// change under the watched paths.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// RunFunc handles one batch of changed files.
type RunFunc func(ctx context.Context, files []string) error

// Watcher debounces file events and invokes the run callback with the
// batch of changed Python files.
type Watcher struct {
	watcher  *fsnotify.Watcher
	log      *zap.Logger
	debounce time.Duration
	run      RunFunc
}

var skipDirs = map[string]bool{
	".git":        true,
	".hg":         true,
	".tox":        true,
	".venv":       true,
	"venv":        true,
	"__pycache__": true,
	".gopydoc":    true,
}

// New creates a watcher over the given paths, registering every
// subdirectory. Rapid saves are folded together by the debounce window.
func New(paths []string, debounce time.Duration, log *zap.Logger, run RunFunc) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		log:      log,
		debounce: debounce,
		run:      run,
	}

	for _, path := range paths {
		if err := w.addRecursive(path); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.watcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}

// Run blocks until the context is cancelled, invoking the callback for
// each debounced batch of changes.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !skipDirs[filepath.Base(event.Name)] {
						_ = w.watcher.Add(event.Name)
					}
					continue
				}
			}
			if !isPythonFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			timer = nil
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			pending = make(map[string]bool)
			sort.Strings(files)

			w.log.Info("files changed, re-running", zap.Strings("files", files))
			if err := w.run(ctx, files); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.log.Warn("run failed", zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func isPythonFile(path string) bool {
	return strings.HasSuffix(path, ".py") || strings.HasSuffix(path, ".pyi")
}
