// Package watch recompiles Prolog-like source files as they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"hornkb/internal/config"
	"hornkb/internal/kb"
	"hornkb/internal/metrics"
)

// Options configures a Watcher.
type Options struct {
	Extensions []string      // watched file extensions, with leading dot
	Debounce   time.Duration // quiet period before a changed file is compiled
	Decode     kb.Options
}

// OptionsFromConfig maps the watch, decoder and batch sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Extensions: cfg.Watch.Extensions,
		Debounce:   cfg.GetWatchDebounce(),
		Decode:     kb.OptionsFromConfig(cfg),
	}
}

// Result is the outcome of compiling one changed file. Removed is set when
// the file no longer exists; KB and Err are then empty.
type Result struct {
	Path    string
	KB      *kb.KnowledgeBase
	Err     error
	Removed bool
}

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Compiled      int
	Failed        int
	Removed       int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
}

// Watcher watches one directory and emits a Result per settled change.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	dir         string
	opts        Options
	logger      *zap.Logger
	debounceMap map[string]time.Time
	results     chan Result
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	closeOnce   sync.Once
	stats       Stats
}

// New creates a watcher for dir. Call Start to begin watching and Stop to
// release the underlying file watcher.
func New(dir string, opts Options, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = config.DefaultConfig().Watch.Extensions
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:     fw,
		dir:         dir,
		opts:        opts,
		logger:      logger,
		debounceMap: make(map[string]time.Time),
		results:     make(chan Result, 16),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Results delivers compile results. It is closed when the watcher stops.
func (w *Watcher) Results() <-chan Result { return w.results }

// Start begins watching. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("watching directory", zap.String("dir", w.dir), zap.Strings("extensions", w.opts.Extensions))
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	w.closeOnce.Do(func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("error closing watcher", zap.Error(err))
		}
		if !wasRunning {
			close(w.results)
		}
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.results)

	tick := w.opts.Debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("context cancelled")
			return

		case <-w.stopCh:
			w.logger.Debug("stop signal received")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			if !w.processDebounced(ctx) {
				return
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.watched(event.Name) {
		return
	}
	op := opName(event.Op)
	if op == "" {
		return
	}

	w.logger.Debug("file event", zap.String("path", event.Name), zap.Stringer("op", event.Op))
	metrics.WatchEvent(op)

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	}
	return ""
}

// processDebounced compiles files whose last event is older than the
// debounce window. It returns false if the watcher is shutting down.
func (w *Watcher) processDebounced(ctx context.Context) bool {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.opts.Debounce {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()
	sort.Strings(settled)

	for _, path := range settled {
		res := w.compile(path)
		select {
		case w.results <- res:
		case <-w.stopCh:
			return false
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (w *Watcher) compile(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.logger.Info("source removed", zap.String("path", path))
			w.mu.Lock()
			w.stats.Removed++
			w.mu.Unlock()
			return Result{Path: path, Removed: true}
		}
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return Result{Path: path, Err: fmt.Errorf("failed to read %s: %w", path, err)}
	}

	start := time.Now()
	base, err := kb.Compile(string(data), w.opts.Decode, w.logger.With(zap.String("source", path)))
	metrics.ObserveCompile(start, err)
	w.mu.Lock()
	if err != nil {
		w.stats.Failed++
	} else {
		w.stats.Compiled++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("source failed to compile", zap.String("path", path), zap.Error(err))
		return Result{Path: path, Err: err}
	}
	metrics.RecordKnowledgeBase(base)
	stats := base.Stats()
	w.logger.Info("source compiled",
		zap.String("path", path),
		zap.Int("facts", stats.Facts),
		zap.Int("rules", stats.Rules),
		zap.Int("queries", stats.Queries))
	return Result{Path: path, KB: base}
}

// Scan compiles every watched file currently in the directory, in name
// order. Failures are reported per file in the results.
func (w *Watcher) Scan() ([]Result, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", w.dir, err)
	}
	var out []Result
	for _, entry := range entries {
		path := filepath.Join(w.dir, entry.Name())
		if entry.IsDir() || !w.watched(path) {
			continue
		}
		out = append(out, w.compile(path))
	}
	return out, nil
}

func (w *Watcher) watched(path string) bool {
	return config.WatchConfig{Extensions: w.opts.Extensions}.HasExtension(filepath.Ext(path))
}

// GetStats returns the current watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching returns true if the watcher is currently running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
