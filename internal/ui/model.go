package ui

import (
	"reflect"
	"time"

	"github.com/atomicstack/navstate/internal/backend"
	"github.com/atomicstack/navstate/internal/data/dispatcher"
	"github.com/atomicstack/navstate/internal/deeplink"
	"github.com/atomicstack/navstate/internal/graph"
	"github.com/atomicstack/navstate/internal/labels"
	"github.com/atomicstack/navstate/internal/nav"
	"github.com/atomicstack/navstate/internal/theme"
	"github.com/atomicstack/navstate/internal/ui/command"
	uistate "github.com/atomicstack/navstate/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
)

type picker = uistate.Picker

type Mode int

const (
	ModePicker Mode = iota
	ModeLinkPrompt
)

const (
	breadcrumbSeparator = "→"
	defaultRootTitle    = "navigation"
	destinationsPicker  = "destinations"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options wires the model to the navigation engine and its collaborators.
// Store and Graph are required; the rest may be left zero.
type Options struct {
	Store      *nav.Store
	Graph      *graph.Graph
	Labels     *labels.Labels
	Keys       nav.KeyGen
	Watcher    *backend.Watcher
	Dispatcher *dispatcher.Dispatcher
	LinkMode   deeplink.Mode
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
}

// Model implements the Bubble Tea model that drives a navigation store.
type Model struct {
	picker            *picker
	pending           bool
	pendingOp         string
	queuedRestore     *RestoredMsg
	errMsg            string
	infoMsg           string
	infoExpire        time.Time
	width             int
	height            int
	fixedWidth        bool
	fixedHeight       bool
	backend           *backend.Watcher
	showFooter        bool
	verbose           bool
	linkForm          *linkForm
	filterCursor      cursor.Model
	filterCursorDirty bool
	treeOffset        int
	staticCursor      bool
	exitReason        string

	handlers map[reflect.Type]msgHandler

	store      *nav.Store
	graph      *graph.Graph
	labels     *labels.Labels
	keys       nav.KeyGen
	bus        *command.Bus
	dispatcher *dispatcher.Dispatcher
	linkMode   deeplink.Mode
	mode       Mode
	surfaces   *surfaces
}

// NewModel initialises the UI state over an existing store.
func NewModel(opts Options) *Model {
	keys := opts.Keys
	if keys == nil {
		keys = nav.UUIDKeys{}
	}
	m := &Model{
		store:      opts.Store,
		graph:      opts.Graph,
		labels:     opts.Labels,
		keys:       keys,
		bus:        command.New(opts.Store),
		backend:    opts.Watcher,
		dispatcher: opts.Dispatcher,
		linkMode:   opts.LinkMode,
		showFooter: opts.ShowFooter,
		verbose:    opts.Verbose,
		mode:       ModePicker,
		surfaces:   newSurfaces(),
	}
	m.picker = uistate.NewPicker(destinationsPicker, defaultRootTitle, m.destinationItems())
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c
	m.syncViewport(m.picker)
	m.surfaces.sync(m.root())
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handled, cmd := m.handleLinkForm(msg); handled {
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, m.finishUpdate(cmds)
	}

	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.MouseMsg{}):      m.handleMouseMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(command.ResultMsg{}): m.handleResultMsg,
		reflect.TypeOf(RestoredMsg{}):       m.handleRestoredMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
		reflect.TypeOf(linkResolvedMsg{}):   m.handleLinkResolvedMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) root() nav.Node {
	if m.store == nil {
		return nil
	}
	return m.store.Root()
}

// currentGraph prefers the dispatcher's copy, which follows reloads.
func (m *Model) currentGraph() *graph.Graph {
	if m.dispatcher != nil {
		if g := m.dispatcher.Graph(); g != nil {
			return g
		}
	}
	return m.graph
}

// Close detaches every surface the model still holds. Call once the program
// has exited.
func (m *Model) Close() {
	m.surfaces.sync(nil)
}

// ExitReason reports why the program asked to quit.
func (m *Model) ExitReason() string {
	return m.exitReason
}
