package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/atomicstack/navstate/internal/backend"
	"github.com/atomicstack/navstate/internal/data/dispatcher"
	"github.com/atomicstack/navstate/internal/deeplink"
	"github.com/atomicstack/navstate/internal/graph"
	"github.com/atomicstack/navstate/internal/labels"
	"github.com/atomicstack/navstate/internal/logging"
	"github.com/atomicstack/navstate/internal/logging/events"
	"github.com/atomicstack/navstate/internal/metrics"
	"github.com/atomicstack/navstate/internal/nav"
	"github.com/atomicstack/navstate/internal/snapshot"
	"github.com/atomicstack/navstate/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

const watchDebounce = 200 * time.Millisecond

// Config describes user-provided application options.
type Config struct {
	GraphPath   string `validate:"required"`
	Start       string
	Link        string
	LinkMode    string `validate:"oneof=replace graft"`
	StateDir    string
	Session     string `validate:"required"`
	Expanded    bool
	Locale      string `validate:"omitempty,bcp47_language_tag"`
	Width       int    `validate:"min=0"`
	Height      int    `validate:"min=0"`
	ShowFooter  bool
	Verbose     bool
	MetricsAddr string `validate:"omitempty,hostname_port"`
	Watch       bool
	WatchEvery  time.Duration `validate:"min=0"`
}

// Session is the navigation engine assembled from a Config: the loaded
// graph, a store seeded with the start tree, and its collaborators.
type Session struct {
	Graph     *graph.Graph
	Store     *nav.Store
	Labels    *labels.Labels
	Metrics   *metrics.Metrics
	Keys      nav.KeyGen
	LinkMode  deeplink.Mode
	Snapshots *snapshot.Store
}

// Build loads the graph and seeds a store. With cfg.Link set the tree comes
// from the link; otherwise it holds the start destination.
func Build(cfg Config) (*Session, error) {
	g, err := graph.Load(cfg.GraphPath)
	if err != nil {
		return nil, err
	}
	events.Graph.Load(g.Path(), len(g.Destinations()), len(g.Tabs)+len(g.Panes))

	mode, err := deeplink.ParseMode(cfg.LinkMode)
	if err != nil {
		return nil, err
	}
	l, err := labels.New(cfg.Locale, g.Labels, labelFiles(cfg.GraphPath)...)
	if err != nil {
		return nil, err
	}
	keys := nav.UUIDKeys{}
	reg := g.Registry()
	mut := nav.NewMutator(reg, reg, keys)

	start := g.StartDestination()
	if cfg.Start != "" {
		start = nav.To(cfg.Start)
	}
	root, err := InitialRoot(g, mut, start)
	if err != nil {
		return nil, err
	}
	if cfg.Link != "" {
		root, err = deeplink.NewResolver(g.Router(), reg, keys).Resolve(root, cfg.Link, mode)
		if err != nil {
			return nil, fmt.Errorf("open link: %w", err)
		}
	}

	m := metrics.New()
	store, err := nav.NewStore(root, mut, events.Nav.Observer(), m)
	if err != nil {
		return nil, err
	}
	store.SetExpanded(cfg.Expanded)
	m.Observe(root)

	s := &Session{
		Graph:    g,
		Store:    store,
		Labels:   l,
		Metrics:  m,
		Keys:     keys,
		LinkMode: mode,
	}
	if cfg.StateDir != "" {
		s.Snapshots, err = snapshot.Open(snapshot.Config{Path: cfg.StateDir, Verbose: cfg.Verbose})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// InitialRoot builds the root stack holding start.
func InitialRoot(g *graph.Graph, mut *nav.Mutator, start nav.Destination) (nav.Node, error) {
	if !slices.Contains(g.Destinations(), start.Route) {
		return nil, fmt.Errorf("start destination %q is not in the graph", start.Route)
	}
	var keys nav.KeyGen = nav.UUIDKeys{}
	if mut.Keys != nil {
		keys = mut.Keys
	}
	rootID := keys.Next()
	child, err := mut.NewNode(start, rootID)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", start.Route, err)
	}
	return &nav.StackNode{ID: rootID, Children: []nav.Node{child}}, nil
}

// labelFiles finds message files next to the graph named like
// "labels.de.toml".
func labelFiles(graphPath string) []string {
	var out []string
	for _, ext := range []string{"toml", "yaml", "yml"} {
		matches, _ := filepath.Glob(filepath.Join(filepath.Dir(graphPath), "labels.*."+ext))
		out = append(out, matches...)
	}
	slices.Sort(out)
	return out
}

// Restore loads the snapshot saved under name. A missing snapshot is not an
// error; the returned root is nil.
func (s *Session) Restore(ctx context.Context, name string) (nav.Node, error) {
	if s.Snapshots == nil {
		return nil, nil
	}
	root, err := s.Snapshots.Load(ctx, name)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := nav.Validate(root); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", name, err)
	}
	return root, nil
}

// Save stores the current tree under name.
func (s *Session) Save(ctx context.Context, name string) error {
	if s.Snapshots == nil {
		return nil
	}
	return s.Snapshots.Save(ctx, name, s.Store.Root())
}

func (s *Session) Close() error {
	if s.Snapshots == nil {
		return nil
	}
	return s.Snapshots.Close()
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	s, err := Build(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logging.Error(err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := s.Metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				logging.Error(fmt.Errorf("metrics: %w", err))
			}
		}()
	}

	var watcher *backend.Watcher
	if cfg.Watch {
		watcher, err = backend.NewWatcher(cfg.GraphPath, backend.Options{
			Debounce:    watchDebounce,
			MinInterval: cfg.WatchEvery,
		})
		if err != nil {
			logging.Error(err)
			watcher = nil
		} else {
			defer watcher.Stop()
		}
	}

	model := ui.NewModel(ui.Options{
		Store:      s.Store,
		Graph:      s.Graph,
		Labels:     s.Labels,
		Keys:       s.Keys,
		Watcher:    watcher,
		Dispatcher: dispatcher.New(s.Store, s.Graph, s.Keys, s.Metrics),
		LinkMode:   s.LinkMode,
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Verbose:    cfg.Verbose,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// An explicit link wins over the saved session.
	if s.Snapshots != nil && cfg.Link == "" {
		go func() {
			root, err := s.Restore(ctx, cfg.Session)
			events.App.Restore(cfg.Session, root != nil, err)
			if root == nil && err == nil {
				return
			}
			program.Send(ui.RestoredMsg{Source: cfg.Session, Root: root, Err: err})
		}()
	}

	_, err = program.Run()
	model.Close()
	if s.Snapshots != nil {
		serr := s.Save(context.Background(), cfg.Session)
		events.App.Save(cfg.Session, serr)
		if serr != nil {
			logging.Error(serr)
		}
	}
	events.App.Exit(model.ExitReason())
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
