// Package watcher notifies when targets change on disk between
// synchronization passes, so watch mode can re-run a pass instead of
// acting on a stale generation.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Event reports an external change to one watched target.
type Event struct {
	// Target is the path of the target that changed.
	Target string
}

// Watcher watches a fixed set of target files for external edits.
//
// Directories are watched rather than the files themselves: editors and
// the engine's own atomic writes replace files via rename, which would
// silently drop a direct file watch.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	running bool

	// watched maps absolute target path to true; events for other files
	// in the same directories are dropped.
	watched map[string]bool
}

// New creates a watcher for the given target paths. Start must be called
// before events are emitted.
func New(targets []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	watched := make(map[string]bool, len(targets))
	for _, target := range targets {
		abs, err := filepath.Abs(target)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", target, err)
		}
		watched[abs] = true
	}

	return &Watcher{
		watcher: fsw,
		events:  make(chan Event, 16),
		errors:  make(chan error, 4),
		done:    make(chan struct{}),
		watched: watched,
	}, nil
}

// Start begins watching the parent directory of every target.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	dirs := make(map[string]bool)
	for target := range w.watched {
		dirs[filepath.Dir(target)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.running = true
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop stops the watcher and blocks until its loop has exited. The
// Events and Errors channels are closed afterwards.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	w.wg.Wait()

	close(w.events)
	close(w.errors)
	return nil
}

// Events returns the channel emitting target change notifications.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel emitting watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !w.watched[abs] {
				continue
			}
			select {
			case w.events <- Event{Target: abs}:
			case <-w.done:
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}
