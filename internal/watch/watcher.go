// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/exp/maps"
)

// Watcher reports debounced file changes below a base directory. Run may
// be called once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	ignores  []string
	baseDir  string
	debounce time.Duration
	logger   *log.Logger
	stdout   io.Writer
	started  atomic.Bool
}

// New validates cfg, creates the fsnotify watcher and registers every
// non-ignored directory below BaseDir.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  append(DefaultIgnores(), cfg.Ignore...),
		baseDir:  absBase,
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
		stdout:   cfg.Stdout,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	if w.stdout == nil {
		w.stdout = os.Stdout
	}

	if err := w.addTree(absBase); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			w.logger.Warn("close after init failure", "error", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// BaseDir returns the absolute watched directory.
func (w *Watcher) BaseDir() string { return w.baseDir }

// Run processes events until ctx is done. It returns nil on cancellation
// and an error when the watcher can no longer operate.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			w.logger.Warn("previous change handler still running, retrying")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.ClearScreen {
			fmt.Fprint(w.stdout, "\033[2J\033[H")
		}
		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("change handler failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			rel, ok := w.accept(evt.Name)
			if !ok {
				continue
			}
			w.logger.Debug("change", "path", rel, "op", evt.Op.String())

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatalWatchError(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// accept maps an event path to a root-relative slash path and applies the
// ignores, patterns and filter.
func (w *Watcher) accept(name string) (string, bool) {
	rel, err := filepath.Rel(w.baseDir, name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || w.ignored(rel) {
		return "", false
	}
	if len(w.cfg.Patterns) > 0 && !matchAny(w.cfg.Patterns, rel) {
		return "", false
	}
	if w.cfg.Filter != nil && !w.cfg.Filter(rel) {
		return "", false
	}
	return rel, true
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel) || matchAny(w.ignores, rel+"/")
}

// addTree registers dir and every non-ignored directory below it.
// Unreadable directories are logged and skipped.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "error", walkErr)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, err := filepath.Rel(w.baseDir, path); err == nil && rel != "." && w.ignored(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", dir, err)
	}
	return nil
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "error", err)
	}
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if doublestar.MatchUnvalidated(p, rel) {
			return true
		}
	}
	return false
}
