package dispatcher

import (
	"sync"

	"github.com/atomicstack/navstate/internal/backend"
	"github.com/atomicstack/navstate/internal/graph"
	"github.com/atomicstack/navstate/internal/logging/events"
	"github.com/atomicstack/navstate/internal/nav"
)

// Recorder is told about every reload attempt. *metrics.Metrics satisfies it.
type Recorder interface {
	GraphReloaded(err error)
}

type Result struct {
	GraphUpdated bool
	Graph        *graph.Graph
	Err          error
}

// Dispatcher applies backend events to the live navigation state. A reloaded
// graph replaces the store's mutator; the tree itself is left alone.
type Dispatcher struct {
	store    *nav.Store
	keys     nav.KeyGen
	recorder Recorder

	mu      sync.RWMutex
	current *graph.Graph
}

func New(store *nav.Store, g *graph.Graph, keys nav.KeyGen, recorder Recorder) *Dispatcher {
	return &Dispatcher{store: store, keys: keys, recorder: recorder, current: g}
}

// Graph returns the graph currently in effect.
func (d *Dispatcher) Graph() *graph.Graph {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

func (d *Dispatcher) Handle(evt backend.Event) Result {
	var res Result
	switch evt.Kind {
	case backend.KindGraph:
		events.Graph.Reload(evt.Path, evt.Changes, evt.Err)
		if d.recorder != nil {
			d.recorder.GraphReloaded(evt.Err)
		}
		if evt.Err != nil || evt.Graph == nil {
			res.Err = evt.Err
			return res
		}
		reg := evt.Graph.Registry()
		d.store.SetMutator(nav.NewMutator(reg, reg, d.keys))
		d.mu.Lock()
		d.current = evt.Graph
		d.mu.Unlock()
		res.GraphUpdated = true
		res.Graph = evt.Graph
	}
	return res
}
