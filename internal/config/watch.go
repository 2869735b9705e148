package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/alert-monitor/internal/logger"
)

// DefaultDebounce coalesces the bursts of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

var errNoReloadHandler = errors.New("reload handler must be provided")

// ReloadFunc receives every successfully reloaded configuration.
type ReloadFunc func(ctx context.Context, cfg *Config)

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	// path is the watched config file.
	path string
	// onReload is called with each valid reload.
	onReload ReloadFunc
	// debounce delays reloads after the last event.
	debounce time.Duration
}

// NewWatcher creates a watcher for path.
func NewWatcher(path string, onReload ReloadFunc) (*Watcher, error) {
	if onReload == nil {
		return nil, errNoReloadHandler
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	return &Watcher{
		path:     absPath,
		onReload: onReload,
		debounce: DefaultDebounce,
	}, nil
}

// Name identifies the watcher as a hosted service.
func (w *Watcher) Name() string {
	return "config-watcher"
}

// Run watches the directory holding the config file until ctx ends.
// The directory is watched rather than the file so that atomic saves
// (write to temp, rename over target) are seen.
func (w *Watcher) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, w.Name())

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}

	defer func() {
		_ = fsWatcher.Close()
	}()

	if err = fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	logger.InfoKV(ctx, "Watching config file", "path", w.path)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}

			if !w.relevant(event) {
				continue
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(w.debounce, func() {
				w.reload(ctx)
			})
			mu.Unlock()
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}

			logger.WarnKV(ctx, "Config watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}

	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	// Load turns a missing file into defaults; a file moved away keeps
	// the settings in effect instead.
	if _, err := os.Stat(w.path); errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Config file is gone, keeping current settings", "path", w.path)
		return
	}

	cfg, err := Load(w.path)
	if err != nil {
		logger.WarnKV(ctx, "Ignoring invalid config change", "path", w.path, "error", err)
		return
	}

	logger.InfoKV(ctx, "Config reloaded", "interval", cfg.Interval.String(), "threshold", cfg.Threshold)
	w.onReload(ctx, cfg)
}
