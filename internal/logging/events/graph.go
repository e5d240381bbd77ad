package events

import "github.com/atomicstack/navstate/internal/logging"

type GraphTracer struct{}

var Graph = GraphTracer{}

func (GraphTracer) Load(path string, routes, containers int) {
	logging.Trace("graph.load", map[string]any{"path": path, "routes": routes, "containers": containers})
}

func (GraphTracer) Reload(path string, changes int, err error) {
	payload := map[string]any{"path": path, "changes": changes}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("graph.reload", payload)
}
