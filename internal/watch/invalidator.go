// Package watch clears the search cache when the record directory changes.
//
// The staleness check in the index cannot see a record rewritten with an
// older modification time. Watching the directory closes most of that gap
// for long-running servers.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events a single record write produces.
const DefaultDebounce = 250 * time.Millisecond

// Clearer is the cache being invalidated. *search.Service and
// *index.Builder implement it.
type Clearer interface {
	ClearCache()
}

// Invalidator watches one directory and clears a cache after record files
// are created, written, removed or renamed.
type Invalidator struct {
	dir      string
	target   Clearer
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	pending int
	done    chan struct{}
}

// Option configures an Invalidator.
type Option func(*Invalidator)

// WithDebounce sets the quiet period before the cache is cleared.
func WithDebounce(d time.Duration) Option {
	return func(i *Invalidator) {
		if d > 0 {
			i.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Invalidator) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New creates an invalidator for dir. Call Start to begin watching.
func New(dir string, target Clearer, opts ...Option) *Invalidator {
	i := &Invalidator{
		dir:      dir,
		target:   target,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Start begins watching. It returns once the watch is registered; events
// are handled in the background until ctx is done or Close is called.
func (i *Invalidator) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.watcher != nil {
		return fmt.Errorf("watcher already started for %s", i.dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(i.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", i.dir, err)
	}

	i.watcher = watcher
	i.done = make(chan struct{})
	go i.run(ctx, watcher, i.done)

	i.logger.Info("Watching records", "dir", i.dir, "debounce", i.debounce)
	return nil
}

// Close stops watching and waits for the event loop to exit.
func (i *Invalidator) Close() error {
	watcher, done := i.detach()
	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	<-done
	return err
}

// detach hands the running watcher to the caller, which must close it.
func (i *Invalidator) detach() (*fsnotify.Watcher, chan struct{}) {
	i.mu.Lock()
	defer i.mu.Unlock()

	watcher, done := i.watcher, i.done
	i.watcher = nil
	if i.timer != nil {
		i.timer.Stop()
	}
	return watcher, done
}

func (i *Invalidator) run(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			i.logger.Error("Watcher panic", "panic", r)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if w, _ := i.detach(); w != nil {
				_ = w.Close()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isRecordEvent(event) {
				continue
			}
			i.logger.Debug("Record change", "name", event.Name, "op", event.Op.String())
			i.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// Some events were dropped; assume something changed.
				i.schedule()
			}
			i.logger.Error("fsnotify error", "error", err)
		}
	}
}

// schedule (re)arms the debounce timer.
func (i *Invalidator) schedule() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.pending++
	if i.timer == nil {
		i.timer = time.AfterFunc(i.debounce, i.flush)
		return
	}
	i.timer.Reset(i.debounce)
}

func (i *Invalidator) flush() {
	i.mu.Lock()
	events := i.pending
	i.pending = 0
	i.mu.Unlock()

	if events == 0 {
		return
	}
	i.target.ClearCache()
	i.logger.Info("Record directory changed, search cache cleared", "events", events)
}

// isRecordEvent reports whether event touches a record or sidecar file.
func isRecordEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".md":
		return true
	default:
		return false
	}
}
