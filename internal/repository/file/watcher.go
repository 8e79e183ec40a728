package file

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors produce for one save
const DefaultDebounce = 100 * time.Millisecond

// ChangeFunc is called once per settled change of a project file
type ChangeFunc func(ctx context.Context, projectID string) error

// Watcher reports project file changes in the nodes directory
type Watcher struct {
	dir      string
	logger   *slog.Logger
	onChange ChangeFunc
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

// WatcherOption customizes a Watcher
type WatcherOption func(*Watcher)

// WithDebounce sets how long a project must stay quiet before onChange runs
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher creates a watcher over dir
func NewWatcher(dir string, logger *slog.Logger, onChange ChangeFunc, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:      dir,
		logger:   logger,
		onChange: onChange,
		debounce: DefaultDebounce,
		timers:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. Pending notifications are dropped on exit.
func (w *Watcher) Run(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.logger.Enabled(ctx, slog.LevelDebug) {
				w.logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer w.stop()

	w.logger.Info("watching project files", "dir", w.dir)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", wErr)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	projectID, ok := ProjectIDFromPath(event.Name)
	if !ok {
		return
	}
	w.logger.Debug("project file event", "project_id", projectID, "op", event.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()
	if prev, ok := w.timers[projectID]; ok && prev.Stop() {
		w.wg.Done()
	}

	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.timers[projectID] == t {
			delete(w.timers, projectID)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := w.onChange(ctx, projectID); err != nil {
			w.logger.Warn("project change handler failed", "project_id", projectID, "error", err)
		}
	})
	w.timers[projectID] = t
}

// stop cancels pending timers and waits for running callbacks
func (w *Watcher) stop() {
	w.mu.Lock()
	for id, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, id)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
