package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atomicstack/navstate/internal/graph"
	"github.com/atomicstack/navstate/internal/logging"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	KindGraph Kind = iota
)

// Event carries a freshly parsed graph or the error that prevented it.
// Changes is the number of file events the reload covers.
type Event struct {
	Kind    Kind
	Path    string
	Graph   *graph.Graph
	Err     error
	Changes int
}

// Options tunes how eagerly the watcher reloads.
type Options struct {
	// Debounce is the quiet period after the last write before a reload.
	Debounce time.Duration
	// MinInterval is the least time between two reloads. Writes arriving
	// sooner are coalesced into the next reload.
	MinInterval time.Duration
}

// Watcher reloads the graph file whenever it changes on disk and publishes
// the result. Bursts of writes within the debounce window produce one reload.
type Watcher struct {
	path     string
	debounce time.Duration
	fs       *fsnotify.Watcher
	gate     *reloadGate

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts watching path. The parent directory is watched rather
// than the file so editors that save by rename are still noticed.
func NewWatcher(path string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     abs,
		debounce: opts.Debounce,
		fs:       fsw,
		gate:     newReloadGate(opts.MinInterval),
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 4),
	}

	w.wg.Add(1)
	go w.run()

	go func() {
		w.wg.Wait()
		fsw.Close()
		close(w.events)
	}()

	return w, nil
}

// Events returns a channel of reload events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Path is the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Stop cancels the watcher. A reload in progress completes first; use Wait
// if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the watcher goroutine has exited and the events channel
// is closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	arm := func(d time.Duration) {
		if timer == nil {
			timer = time.NewTimer(d)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(d)
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
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.gate.note()
			arm(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logging.Error(fmt.Errorf("graph watcher: %w", err))
		case <-fire:
			fire = nil
			wait, changes := w.gate.admit()
			if wait > 0 {
				logging.Trace("watch.defer", map[string]interface{}{"path": w.path, "wait": wait.String()})
				arm(wait)
				continue
			}
			if !w.emit(w.reload(changes)) {
				return
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) reload(changes int) Event {
	g, err := graph.Load(w.path)
	return Event{Kind: KindGraph, Path: w.path, Graph: g, Err: err, Changes: changes}
}

func (w *Watcher) emit(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}
