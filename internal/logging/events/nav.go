package events

import (
	"github.com/atomicstack/navstate/internal/logging"
	"github.com/atomicstack/navstate/internal/nav"
)

type NavTracer struct{}

var Nav = NavTracer{}

// Observer returns a store observer that traces every operation.
func (NavTracer) Observer() nav.Observer {
	return nav.ObserverFunc(Nav.Operation)
}

func (NavTracer) Operation(ev nav.Event) {
	if !logging.TraceEnabled() {
		return
	}
	payload := map[string]any{
		"op":      ev.Op,
		"outcome": ev.Outcome,
		"depth":   nav.Depth(ev.After),
	}
	if leaf := nav.ActiveLeaf(ev.After); leaf != nil {
		payload["leaf"] = leaf.Destination.Route
		payload["key"] = string(leaf.ID)
	}
	if ev.Reason != "" {
		payload["target"] = string(ev.Key)
		payload["reason"] = ev.Reason
	}
	logging.Trace("nav."+ev.Op, payload)
}

func (NavTracer) Expanded(expanded bool) {
	logging.Trace("nav.expanded", map[string]any{"expanded": expanded})
}
