// Package watcher reports settled changes to a single file.
//
// The parent directory is watched rather than the file itself, so editors that
// save by writing a temporary file and renaming it over the original are seen
// as one modification instead of a removal.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long a file must stay unchanged before an event fires.
const DefaultSettleDelay = 200 * time.Millisecond

// Options configures the file watcher behavior.
type Options struct {
	// SettleDelay is the quiet period required after the last write.
	SettleDelay time.Duration
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
}

// Watcher monitors one file for changes.
type Watcher struct {
	path    string
	opts    Options
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex // protects timer, stopped and the pending snapshot
	timer   *time.Timer
	stopped bool
	size    int64
	modTime time.Time

	events   chan Event
	errors   chan error
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher for the regular file at path.
func New(logger *slog.Logger, path string, opts Options) (*Watcher, error) {
	opts.setDefaults()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", abs)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to add watch: %w", err)
	}

	return &Watcher{
		path:    abs,
		opts:    opts,
		logger:  logger,
		watcher: fw,
		events:  make(chan Event, 16),
		errors:  make(chan error, 4),
		done:    make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Start processes file system events until ctx is canceled or Stop is called.
// Start returns at once if Stop has already run.
func (w *Watcher) Start(ctx context.Context) error {
	// Add under mu so Stop never waits on a loop it cannot see.
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	w.logger.Debug("watching file", "path", w.path, "settle_delay", w.opts.SettleDelay)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("dropping watcher error", "error", err)
			}
		}
	}
}

// handle schedules a settle check for any change touching the watched path.
func (w *Watcher) handle(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op == fsnotify.Chmod {
		return
	}
	w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
	w.startSettling()
}

// startSettling (re)arms the settle timer with the file's current state.
func (w *Watcher) startSettling() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isStopped() {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}

	w.size, w.modTime = w.snapshot()
	w.timer = time.AfterFunc(w.opts.SettleDelay, w.checkSettled)
}

// checkSettled emits an event once the file has stopped changing.
func (w *Watcher) checkSettled() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isStopped() {
		return
	}

	info, err := os.Stat(w.path)
	if err != nil {
		w.timer = nil
		w.emit(Event{Type: EventRemoved, Path: w.path})
		return
	}

	if info.Size() != w.size || !info.ModTime().Equal(w.modTime) {
		w.size, w.modTime = info.Size(), info.ModTime()
		w.timer = time.AfterFunc(w.opts.SettleDelay, w.checkSettled)
		return
	}

	w.timer = nil
	w.emit(Event{
		Type:    EventModified,
		Path:    w.path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
}

// snapshot returns the file's size and mtime, or zero values if it is missing.
func (w *Watcher) snapshot() (int64, time.Time) {
	info, err := os.Stat(w.path)
	if err != nil {
		return -1, time.Time{}
	}
	return info.Size(), info.ModTime()
}

// emit sends an event; callers hold mu.
func (w *Watcher) emit(event Event) {
	select {
	case w.events <- event:
	case <-w.done:
	}
}

func (w *Watcher) isStopped() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// Events returns the channel for receiving settled file events.
// It is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel for receiving watcher errors.
// It is closed by Stop.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher and releases resources. It is safe to call twice.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		w.stopped = true
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		w.mu.Unlock()

		err = w.watcher.Close()
		w.wg.Wait()

		close(w.events)
		close(w.errors)
	})
	if errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return err
}
