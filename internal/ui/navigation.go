package ui

import (
	"slices"

	"github.com/atomicstack/navstate/internal/logging/events"
	"github.com/atomicstack/navstate/internal/nav"
	"github.com/atomicstack/navstate/internal/ui/command"
	uistate "github.com/atomicstack/navstate/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

// destinationItems lists every route of the current graph, labelled for the
// active locale. Detail carries the owning scope, or "container".
func (m *Model) destinationItems() []uistate.Item {
	g := m.currentGraph()
	if g == nil {
		return nil
	}
	reg := g.Registry()
	routes := g.Destinations()
	items := make([]uistate.Item, 0, len(routes))
	for _, route := range routes {
		item := uistate.Item{ID: route, Label: m.routeLabel(route)}
		if reg.IsContainer(route) {
			item.Detail = "container"
		} else if scope, ok := reg.ScopeKey(route); ok {
			item.Detail = string(scope)
		}
		items = append(items, item)
	}
	return items
}

// routeLabel looks up "route.<name>" and falls back to the bare route.
func (m *Model) routeLabel(route string) string {
	id := "route." + route
	if label := m.labels.Label(id); label != id {
		return label
	}
	return route
}

func (m *Model) refreshPicker() {
	items := m.destinationItems()
	m.picker.UpdateItems(items)
	events.UI.PickerRefresh(m.picker.ID, len(items))
	m.syncViewport(m.picker)
}

// run dispatches a navigation request through the bus. Only one request is
// in flight at a time so results apply in order.
func (m *Model) run(req command.Request) tea.Cmd {
	if m.pending {
		return nil
	}
	m.pending = true
	m.pendingOp = req.Op
	m.errMsg = ""
	m.forceClearInfo()
	return m.bus.Execute(req)
}

func (m *Model) handleEscapeKey() tea.Cmd {
	if m.editFilter(clearFilter) {
		return nil
	}
	if m.store == nil {
		return tea.Quit
	}
	return m.run(command.Back())
}

// selectedDestinations returns the marked items in marking order, or the
// item under the cursor when nothing is marked.
func (m *Model) selectedDestinations() []nav.Destination {
	p := m.picker
	if p.MultiSelect {
		if selected := p.SelectedItems(); len(selected) > 0 {
			dests := make([]nav.Destination, len(selected))
			for i, item := range selected {
				dests[i] = nav.To(item.ID)
			}
			p.ClearSelection()
			p.MultiSelect = false
			return dests
		}
	}
	item, ok := p.Current()
	if !ok {
		return nil
	}
	return []nav.Destination{nav.To(item.ID)}
}

func (m *Model) handleEnterKey() tea.Cmd {
	return m.navigateTo(func(dests []nav.Destination) command.Request {
		if len(dests) == 1 {
			return command.Push(dests[0])
		}
		return command.PushAll(dests)
	})
}

func (m *Model) handleReplaceKey() tea.Cmd {
	return m.navigateTo(func(dests []nav.Destination) command.Request {
		return command.Replace(dests[len(dests)-1])
	})
}

func (m *Model) handleClearAndPushKey() tea.Cmd {
	return m.navigateTo(func(dests []nav.Destination) command.Request {
		return command.ClearAndPush(dests[len(dests)-1])
	})
}

func (m *Model) navigateTo(build func([]nav.Destination) command.Request) tea.Cmd {
	if m.pending || m.store == nil {
		return nil
	}
	item, _ := m.picker.Current()
	dests := m.selectedDestinations()
	if len(dests) == 0 {
		return nil
	}
	events.UI.PickerEnter(m.picker.ID, item.ID, item.Label, m.picker.Filter)
	before := m.picker.FilterCursorPos()
	m.picker.SetFilter("", 0)
	m.noteFilterCursorChange(m.picker, before)
	return m.run(build(dests))
}

// handleTabKey moves the innermost tab container on the active path by delta,
// wrapping around.
func (m *Model) handleTabKey(delta int) tea.Cmd {
	tab := nav.InnermostTab(m.root())
	if tab == nil || len(tab.Stacks) < 2 {
		m.setInfo("No tabs here.")
		return nil
	}
	n := len(tab.Stacks)
	next := ((tab.ActiveIndex+delta)%n + n) % n
	return m.run(command.SwitchTab(tab.ID, next))
}

// handlePaneKey focuses the next configured role of the innermost pane.
func (m *Model) handlePaneKey() tea.Cmd {
	pane := nav.InnermostPane(m.root())
	if pane == nil {
		m.setInfo("No panes here.")
		return nil
	}
	roles := pane.Roles()
	if len(roles) < 2 {
		return nil
	}
	idx := slices.Index(roles, pane.ActiveRole)
	return m.run(command.SwitchPane(pane.ID, roles[(idx+1)%len(roles)]))
}

func (m *Model) toggleExpanded() {
	if m.store == nil {
		return
	}
	expanded := !m.store.Expanded()
	m.store.SetExpanded(expanded)
	events.Nav.Expanded(expanded)
	if expanded {
		m.setInfo("Expanded layout: panes side by side.")
	} else {
		m.setInfo("Compact layout: one pane at a time.")
	}
}

func (m *Model) moveCursorUp() {
	if n := len(m.picker.Items); n > 0 {
		if m.picker.Cursor > 0 {
			m.picker.Cursor--
		} else {
			m.picker.Cursor = n - 1
		}
		events.UI.PickerCursor(m.picker.ID, m.picker.Cursor)
		m.syncViewport(m.picker)
	}
}

func (m *Model) moveCursorDown() {
	if n := len(m.picker.Items); n > 0 {
		if m.picker.Cursor < n-1 {
			m.picker.Cursor++
		} else {
			m.picker.Cursor = 0
		}
		events.UI.PickerCursor(m.picker.ID, m.picker.Cursor)
		m.syncViewport(m.picker)
	}
}

func (m *Model) moveCursor(move func(*picker) bool) {
	if move(m.picker) {
		events.UI.PickerCursor(m.picker.ID, m.picker.Cursor)
	}
	m.syncViewport(m.picker)
}

func (m *Model) syncViewport(p *picker) {
	if p == nil {
		return
	}
	p.EnsureCursorVisible(m.maxVisibleItems())
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if m.mode != ModePicker {
		return nil
	}
	if handled, cmd := m.handleTextInput(keyMsg); handled {
		return cmd
	}
	switch keyMsg.String() {
	case "ctrl+c":
		m.exitReason = "interrupt"
		return tea.Quit
	case "esc":
		return m.handleEscapeKey()
	case "enter":
		return m.handleEnterKey()
	case "ctrl+r":
		return m.handleReplaceKey()
	case "ctrl+x":
		return m.handleClearAndPushKey()
	case "tab":
		return m.handleTabKey(1)
	case "shift+tab":
		return m.handleTabKey(-1)
	case "ctrl+p":
		return m.handlePaneKey()
	case "ctrl+t":
		m.toggleExpanded()
	case "ctrl+o":
		return m.startLinkForm()
	case "up":
		m.moveCursorUp()
	case "down":
		m.moveCursorDown()
	case "pgup":
		page := m.maxVisibleItems()
		m.moveCursor(func(p *picker) bool { return p.MoveCursorPageUp(page) })
	case "pgdown":
		page := m.maxVisibleItems()
		m.moveCursor(func(p *picker) bool { return p.MoveCursorPageDown(page) })
	case "home":
		m.moveCursor((*picker).MoveCursorHome)
	case "end":
		m.moveCursor((*picker).MoveCursorEnd)
	}
	return nil
}
