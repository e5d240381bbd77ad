package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/atomicstack/navstate/internal/app"
	"github.com/atomicstack/navstate/internal/config"
	"github.com/atomicstack/navstate/internal/graph"
	"github.com/atomicstack/navstate/internal/logging"
	"github.com/atomicstack/navstate/internal/logging/events"
	"golang.org/x/term"
)

func main() {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)

	startup, err := preflight(runtimeCfg.App)
	if err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Startup error: %v\n", err)
		os.Exit(2)
	}
	tty := terminalFor(runtimeCfg.App)
	if !tty.Interactive {
		logging.Trace("app.non-interactive", map[string]any{"source": tty.Source})
	}
	events.App.Start(startupTracePayload(runtimeCfg, startup, tty))

	if err := app.Run(runtimeCfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// startupGraph describes the graph the session is about to open.
type startupGraph struct {
	Path         string       `json:"path"`
	Format       graph.Format `json:"format"`
	Start        string       `json:"start"`
	Destinations int          `json:"destinations"`
	Patterns     int          `json:"patterns"`
	LinkRoute    string       `json:"link_route,omitempty"`
}

// preflight loads the graph and checks that the start destination exists and
// that a startup link matches a pattern, so a bad invocation fails before the
// terminal is taken over.
func preflight(cfg app.Config) (startupGraph, error) {
	format, err := graph.FormatFor(cfg.GraphPath)
	if err != nil {
		return startupGraph{}, err
	}
	g, err := graph.Load(cfg.GraphPath)
	if err != nil {
		return startupGraph{}, err
	}
	start := g.StartDestination().Route
	if cfg.Start != "" {
		start = cfg.Start
	}
	dests := g.Destinations()
	if !slices.Contains(dests, start) {
		return startupGraph{}, fmt.Errorf("start destination %q is not in %s", start, cfg.GraphPath)
	}
	info := startupGraph{
		Path:         cfg.GraphPath,
		Format:       format,
		Start:        start,
		Destinations: len(dests),
		Patterns:     len(g.Router().Patterns()),
	}
	if cfg.Link != "" {
		m, ok := g.Router().Match(cfg.Link)
		if !ok {
			err := fmt.Errorf("link %q matches no pattern in %s", cfg.Link, cfg.GraphPath)
			if hints := g.Router().Suggest(cfg.Link, 3); len(hints) > 0 {
				err = fmt.Errorf("%w (did you mean %s?)", err, strings.Join(hints, ", "))
			}
			return startupGraph{}, err
		}
		info.LinkRoute = m.Destination.Route
	}
	return info, nil
}

// terminal is the screen the picker will draw on.
type terminal struct {
	Interactive bool   `json:"interactive"`
	Source      string `json:"source,omitempty"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Override    bool   `json:"override"`
}

// terminalFor reports whether stdin and stdout are a terminal and the size
// the picker will use. Explicit --width/--height win over the detected size.
func terminalFor(cfg app.Config) terminal {
	var t terminal
	in, out := int(os.Stdin.Fd()), int(os.Stdout.Fd())
	t.Interactive = term.IsTerminal(in) && term.IsTerminal(out)
	for _, fd := range []struct {
		name string
		fd   int
	}{{"stdout", out}, {"stdin", in}} {
		if w, h, err := term.GetSize(fd.fd); err == nil {
			t.Source, t.Width, t.Height = fd.name, w, h
			break
		}
	}
	return applySizeOverride(t, cfg.Width, cfg.Height)
}

func applySizeOverride(t terminal, width, height int) terminal {
	if width > 0 {
		t.Width, t.Override = width, true
	}
	if height > 0 {
		t.Height, t.Override = height, true
	}
	return t
}

// startupTracePayload bundles the session identity, the graph being opened
// and the terminal for the app.start trace.
func startupTracePayload(cfg config.Config, g startupGraph, tty terminal) map[string]any {
	c := cfg.App
	session := map[string]any{
		"name":     c.Session,
		"stateDir": c.StateDir,
		"persist":  c.StateDir != "",
	}
	link := map[string]any{}
	if c.Link != "" {
		link["url"] = c.Link
		link["mode"] = c.LinkMode
		link["route"] = g.LinkRoute
	}
	payload := map[string]any{
		"argv":     cfg.Args,
		"graph":    g,
		"session":  session,
		"link":     link,
		"expanded": c.Expanded,
		"locale":   c.Locale,
		"watch":    map[string]any{"enabled": c.Watch, "interval": c.WatchEvery.String()},
		"terminal": tty,
		"logging":  map[string]any{"file": cfg.Logging.FilePath, "trace": cfg.Logging.Trace},
	}
	if c.MetricsAddr != "" {
		payload["metricsAddr"] = c.MetricsAddr
	}
	return payload
}
