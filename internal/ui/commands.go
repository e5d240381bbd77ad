package ui

import (
	"fmt"

	"github.com/atomicstack/navstate/internal/logging/events"
	"github.com/atomicstack/navstate/internal/nav"
	"github.com/atomicstack/navstate/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

// handleResultMsg applies the outcome of a navigation request.
func (m *Model) handleResultMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(command.ResultMsg)
	if !ok {
		return nil
	}
	m.pending = false
	m.pendingOp = ""
	defer m.surfaces.sync(m.root())
	switch r := res.Result.(type) {
	case nav.Success, nav.Handled:
		m.errMsg = ""
		m.treeOffset = 0
		switch {
		case res.Op == "restore":
			m.setInfo(fmt.Sprintf("Restored %s.", res.Target))
		case m.verbose:
			m.setInfo(describeResult(res))
		}
		events.Action.Success(describeResult(res))
	case nav.NodeNotFound:
		m.errMsg = r.String()
		events.Action.Error(fmt.Errorf("%s", r.String()))
	case nav.DelegateToSystem:
		m.exitReason = "back"
		m.queuedRestore = nil
		return tea.Quit
	case nav.CannotHandle:
		m.errMsg = "back navigation could not be resolved"
	case error:
		m.errMsg = r.Error()
		events.Action.Error(r)
	}
	return m.runQueuedRestore()
}

func describeResult(res command.ResultMsg) string {
	if res.Target == "" {
		return res.Op
	}
	return fmt.Sprintf("%s %s", res.Op, res.Target)
}

// RestoredMsg carries a tree loaded outside the update loop, for example a
// saved snapshot. A nil Root with a nil Err means nothing was saved.
type RestoredMsg struct {
	Source string
	Root   nav.Node
	Err    error
}

func (m *Model) handleRestoredMsg(msg tea.Msg) tea.Cmd {
	restored, ok := msg.(RestoredMsg)
	if !ok {
		return nil
	}
	if restored.Err != nil {
		m.errMsg = fmt.Sprintf("restore %s: %v", restored.Source, restored.Err)
		return nil
	}
	if restored.Root == nil {
		return nil
	}
	if m.pending {
		m.queuedRestore = &restored
		events.Command.Hold("restore", restored.Source, m.pendingOp)
		return nil
	}
	return m.run(command.SetRoot("restore", restored.Source, restored.Root))
}

// runQueuedRestore applies a restore that arrived while another request was
// in flight. It still replaces whatever the user navigated to meanwhile.
func (m *Model) runQueuedRestore() tea.Cmd {
	restored := m.queuedRestore
	if restored == nil {
		return nil
	}
	m.queuedRestore = nil
	return m.run(command.SetRoot("restore", restored.Source, restored.Root))
}
