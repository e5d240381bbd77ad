package ui

import (
	"testing"

	"github.com/atomicstack/navstate/internal/nav"
	tea "github.com/charmbracelet/bubbletea"
)

func TestEnterPushesDestination(t *testing.T) {
	h := NewHarness(newTestModel(t, 0, 0))
	selectDestination(t, h.Model(), "settings")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	leaf := nav.ActiveLeaf(h.Model().root())
	if leaf == nil || leaf.Destination.Route != "settings" {
		t.Fatalf("expected settings on top, got %#v", leaf)
	}
	if h.Model().pending {
		t.Fatalf("expected request to complete")
	}
	if h.Model().errMsg != "" {
		t.Fatalf("unexpected error %q", h.Model().errMsg)
	}
}

func TestEnterWhilePendingIsIgnored(t *testing.T) {
	m := newTestModel(t, 0, 0)
	m.pending = true
	if cmd := m.handleEnterKey(); cmd != nil {
		t.Fatalf("expected no command while a request is in flight")
	}
}

func TestEscapeClearsFilterBeforeBack(t *testing.T) {
	h := NewHarness(newTestModel(t, 0, 0))
	m := h.Model()
	m.picker.SetFilter("set", 3)
	h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	if m.picker.Filter != "" {
		t.Fatalf("expected filter cleared, got %q", m.picker.Filter)
	}
	if h.Quit() {
		t.Fatalf("escape with a filter should not quit")
	}
}

func TestEscapeBacksThenDelegates(t *testing.T) {
	h := NewHarness(newTestModel(t, 0, 0))
	selectDestination(t, h.Model(), "settings")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	if leaf := nav.ActiveLeaf(h.Model().root()); leaf.Destination.Route != "home" {
		t.Fatalf("expected home after back, got %s", leaf.Destination.Route)
	}
	if h.Quit() {
		t.Fatalf("handled back should not quit")
	}

	h.Send(tea.KeyMsg{Type: tea.KeyEsc})
	if !h.Quit() {
		t.Fatalf("expected quit once back is delegated")
	}
	if reason := h.Model().ExitReason(); reason != "back" {
		t.Fatalf("expected exit reason back, got %q", reason)
	}
}

func TestReplaceSwapsTop(t *testing.T) {
	h := NewHarness(newTestModel(t, 0, 0))
	selectDestination(t, h.Model(), "article")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	selectDestination(t, h.Model(), "settings")
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlR})

	stack := nav.ActiveStack(h.Model().root())
	if leaf := nav.ActiveLeaf(h.Model().root()); leaf.Destination.Route != "settings" {
		t.Fatalf("expected settings on top, got %s", leaf.Destination.Route)
	}
	for _, n := range stack.Children {
		if s, ok := n.(*nav.ScreenNode); ok && s.Destination.Route == "article" {
			t.Fatalf("article should have been replaced")
		}
	}
}

func TestTabKeysWrap(t *testing.T) {
	h := NewHarness(newTestModel(t, 0, 0))
	h.Send(tea.KeyMsg{Type: tea.KeyShiftTab})
	tab := nav.InnermostTab(h.Model().root())
	if tab.ActiveIndex != len(tab.Stacks)-1 {
		t.Fatalf("expected wrap to last tab, got %d", tab.ActiveIndex)
	}
	h.Send(tea.KeyMsg{Type: tea.KeyTab})
	if tab := nav.InnermostTab(h.Model().root()); tab.ActiveIndex != 0 {
		t.Fatalf("expected wrap to first tab, got %d", tab.ActiveIndex)
	}
}

func TestPaneKeyCyclesRoles(t *testing.T) {
	h := NewHarness(newTestModel(t, 0, 0))
	h.Send(tea.KeyMsg{Type: tea.KeyTab})
	pane := nav.InnermostPane(h.Model().root())
	if pane == nil {
		t.Fatalf("expected the mail tab to hold a pane node")
	}
	if h.Model().surfaces.count() != 2 {
		t.Fatalf("expected tab and pane attached, got %d", h.Model().surfaces.count())
	}
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlP})
	if pane := nav.InnermostPane(h.Model().root()); pane.ActiveRole != nav.RoleSecondary {
		t.Fatalf("expected secondary role, got %s", pane.ActiveRole)
	}
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlP})
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlP})
	if pane := nav.InnermostPane(h.Model().root()); pane.ActiveRole != nav.RolePrimary {
		t.Fatalf("expected roles to wrap to primary, got %s", pane.ActiveRole)
	}
}

func TestPaneKeyWithoutPaneShowsInfo(t *testing.T) {
	m := newTestModel(t, 0, 0)
	if cmd := m.handlePaneKey(); cmd != nil {
		t.Fatalf("expected no request without a pane")
	}
	if m.infoMsg == "" {
		t.Fatalf("expected an info message")
	}
}

func TestToggleExpanded(t *testing.T) {
	h := NewHarness(newTestModel(t, 0, 0))
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlT})
	if !h.Model().store.Expanded() {
		t.Fatalf("expected expanded mode")
	}
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlT})
	if h.Model().store.Expanded() {
		t.Fatalf("expected compact mode")
	}
}

func TestMarkedDestinationsPushInOrder(t *testing.T) {
	h := NewHarness(newTestModel(t, 0, 0))
	m := h.Model()
	selectDestination(t, m, "article")
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlS})
	selectDestination(t, m, "settings")
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlS})
	if len(m.picker.Selected) != 2 {
		t.Fatalf("expected two marks, got %d", len(m.picker.Selected))
	}
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})

	if leaf := nav.ActiveLeaf(m.root()); leaf.Destination.Route != "settings" {
		t.Fatalf("expected settings on top, got %s", leaf.Destination.Route)
	}
	if m.picker.MultiSelect || len(m.picker.Selected) != 0 {
		t.Fatalf("expected marks cleared after push")
	}
}

func TestClearAndPushResetsRootStack(t *testing.T) {
	h := NewHarness(newTestModel(t, 0, 0))
	selectDestination(t, h.Model(), "settings")
	h.Send(tea.KeyMsg{Type: tea.KeyEnter})
	selectDestination(t, h.Model(), "compose")
	h.Send(tea.KeyMsg{Type: tea.KeyCtrlX})

	root, ok := h.Model().root().(*nav.StackNode)
	if !ok {
		t.Fatalf("expected a root stack")
	}
	for _, n := range root.Children {
		if s, ok := n.(*nav.ScreenNode); ok && s.Destination.Route == "settings" {
			t.Fatalf("settings should have been cleared")
		}
	}
}

func TestCursorWraps(t *testing.T) {
	m := newTestModel(t, 0, 0)
	m.moveCursorUp()
	if m.picker.Cursor != len(m.picker.Items)-1 {
		t.Fatalf("expected wrap to last item, got %d", m.picker.Cursor)
	}
	m.moveCursorDown()
	if m.picker.Cursor != 0 {
		t.Fatalf("expected wrap to first item, got %d", m.picker.Cursor)
	}
}
