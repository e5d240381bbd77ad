package events

import "github.com/atomicstack/navstate/internal/logging"

type DeepLinkTracer struct{}

var DeepLink = DeepLinkTracer{}

func (DeepLinkTracer) Prompt() {
	logging.Trace("deeplink.prompt", nil)
}

func (DeepLinkTracer) Resolve(link, mode, route string) {
	logging.Trace("deeplink.resolve", map[string]any{"link": link, "mode": mode, "route": route})
}

func (DeepLinkTracer) NoMatch(link string, suggestions []string) {
	logging.Trace("deeplink.nomatch", map[string]any{"link": link, "suggestions": suggestions})
}

func (DeepLinkTracer) Cancel() {
	logging.Trace("deeplink.cancel", nil)
}
