// Package watch re-runs an action when replay files appear in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/scdash/internal/pathcheck"
)

// Default timings.
const (
	DefaultDebounce    = 2 * time.Second
	DefaultMinInterval = 30 * time.Second
)

// Watcher calls OnChange after replay files are created or written under Dir.
// Bursts of events within Debounce collapse into one call, and calls are
// spaced at least MinInterval apart.
type Watcher struct {
	Dir         string
	Recursive   bool
	Debounce    time.Duration
	MinInterval time.Duration
	OnChange    func(ctx context.Context) error
	Logger      *slog.Logger
}

// Run blocks until ctx is done. Errors returned by OnChange are logged and
// do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) (err error) {
	if w.OnChange == nil {
		return errors.New("watch: OnChange is required")
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	interval := w.MinInterval
	if interval < 0 {
		interval = 0
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := w.addDirs(watcher, w.Dir); err != nil {
		return err
	}
	logger.Info("watching replay directory", "dir", w.Dir, "recursive", w.Recursive)

	// rate.Every(0) is rate.Inf, so a zero interval never waits.
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
		} else {
			timer.Stop()
			timer.Reset(debounce)
		}
		fire = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.handle(ctx, watcher, event, logger) {
				schedule()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "err", werr)
		case <-fire:
			fire = nil
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			logger.Info("replay directory changed, re-running analysis")
			if err := w.OnChange(ctx); err != nil {
				logger.Warn("re-run failed", "err", err)
			}
		}
	}
}

// handle reports whether event should trigger a re-run.
func (w *Watcher) handle(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event, logger *slog.Logger) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	if w.Recursive && event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirs(watcher, event.Name); err != nil {
				logger.Warn("failed to watch new directory", "dir", event.Name, "err", err)
				return false
			}
			// Files may land before the directory is watched.
			n, err := pathcheck.CountReplays(ctx, event.Name, true)
			return err == nil && n > 0
		}
	}
	return pathcheck.IsReplay(event.Name)
}

func (w *Watcher) addDirs(watcher *fsnotify.Watcher, root string) error {
	if !w.Recursive {
		if err := watcher.Add(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
