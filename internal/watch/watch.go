// Package watch reconverts item files when they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cambridge-collection/cudl-pack/internal/batch"
)

// ErrNoHandler is returned by New when Config.Handler is nil.
var ErrNoHandler = errors.New("watch: no handler")

// DefaultDebounce is how long a file must be quiet before it is converted.
const DefaultDebounce = 100 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	Dir       string
	OutputDir string
	Pattern   string // matched against file names (default: "*.json")
	Debounce  time.Duration
	Logger    *slog.Logger

	// Handler converts a changed file.
	Handler batch.Handler

	// OnResult, if set, receives the outcome of each conversion.
	OnResult func(batch.Result)

	// DestFunc maps an input file to its output path. Defaults to the same
	// file name in OutputDir.
	DestFunc func(outDir, src string) string
}

// Watcher converts matching files in a directory each time they are
// written.
type Watcher struct {
	cfg     Config
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// New creates a Watcher and starts watching cfg.Dir. Events are only acted
// on once Run is called.
func New(cfg Config) (*Watcher, error) {
	if cfg.Handler == nil {
		return nil, ErrNoHandler
	}
	if cfg.Pattern == "" {
		cfg.Pattern = "*.json"
	}
	if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", cfg.Pattern, err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.DestFunc == nil {
		cfg.DestFunc = func(outDir, src string) string {
			return filepath.Join(outDir, filepath.Base(src))
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(cfg.Dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", cfg.Dir, err)
	}

	return &Watcher{
		cfg:     cfg,
		logger:  logger.With("dir", cfg.Dir),
		watcher: fw,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run handles file events until ctx is cancelled. Conversions already
// started are allowed to finish before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	w.logger.Info("watching for item changes", "pattern", w.cfg.Pattern)

	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				w.stop()
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				w.stop()
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if ok, _ := filepath.Match(w.cfg.Pattern, filepath.Base(event.Name)); !ok {
		return
	}
	w.schedule(ctx, event.Name)
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if prev, ok := w.pending[path]; ok && prev.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.cfg.Debounce, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.pending[path] != t {
			w.mu.Unlock()
			return
		}
		delete(w.pending, path)
		w.mu.Unlock()

		w.convert(ctx, path)
	})
	w.pending[path] = t
}

func (w *Watcher) convert(ctx context.Context, path string) {
	unit := batch.NewWorkUnit(path, w.cfg.DestFunc(w.cfg.OutputDir, path))
	start := time.Now()
	err := w.cfg.Handler(ctx, unit)
	result := batch.Result{Unit: unit, Err: err, Duration: time.Since(start)}

	if err != nil {
		w.logger.Error("conversion failed", "source", path, "error", err)
	} else {
		w.logger.Info("converted item", "source", path, "dest", unit.Dest, "duration", result.Duration)
	}
	if w.cfg.OnResult != nil {
		w.cfg.OnResult(result)
	}
}

// stop cancels pending conversions and waits for running ones.
func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
