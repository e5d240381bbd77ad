package events

import "github.com/atomicstack/navstate/internal/logging"

type LifecycleTracer struct{}

var Lifecycle = LifecycleTracer{}

func (LifecycleTracer) Surface(key, kind string, attached bool) {
	logging.Trace("lifecycle.surface", map[string]any{"key": key, "kind": kind, "attached": attached})
}

func (LifecycleTracer) Destroy(key, kind string) {
	logging.Trace("lifecycle.destroy", map[string]any{"key": key, "kind": kind})
}
