package ui

import (
	"fmt"

	"github.com/atomicstack/navstate/internal/backend"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

// applyBackendEvent swaps in a reloaded graph. A broken file keeps the
// previous graph and surfaces the parse error.
func (m *Model) applyBackendEvent(evt backend.Event) {
	if m.dispatcher == nil {
		return
	}
	res := m.dispatcher.Handle(evt)
	if res.Err != nil {
		m.errMsg = fmt.Sprintf("graph reload: %v", res.Err)
		return
	}
	if res.GraphUpdated {
		m.errMsg = ""
		m.refreshPicker()
		if evt.Changes > 1 {
			m.setInfo(fmt.Sprintf("Reloaded %s (%d changes).", evt.Path, evt.Changes))
		} else {
			m.setInfo(fmt.Sprintf("Reloaded %s.", evt.Path))
		}
	}
}
