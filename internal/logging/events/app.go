package events

import "github.com/atomicstack/navstate/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]any) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Restore(session string, restored bool, err error) {
	payload := map[string]any{"session": session, "restored": restored}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("app.restore", payload)
}

func (AppTracer) Save(session string, err error) {
	payload := map[string]any{"session": session}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("app.save", payload)
}

func (AppTracer) Exit(reason string) {
	logging.Trace("app.exit", map[string]any{"reason": reason})
}
