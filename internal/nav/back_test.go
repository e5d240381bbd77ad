package nav

import (
	"slices"
	"testing"
)

func TestBackPopsWithinTabThenDelegates(t *testing.T) {
	main := tabs("tabs", "main", "main", 1,
		stack("s-home", screen("home", "home"), screen("a", "article")),
		stack("s-mail", screen("mail", "mail"), screen("m1", "message"), screen("m2", "message"), screen("m3", "compose")),
		stack("s-search", screen("search", "search")),
	)
	var root Node = stack("root", main)
	m := newTestMutator(nil)

	want := [][]string{
		{"mail", "message", "message"},
		{"mail", "message"},
		{"mail"},
	}
	for i := range 3 {
		root = mustHandled(t, m.PopWithContainerBehavior(root, false))
		tab := FindByKey(root, "tabs").(*TabNode)
		if tab.ActiveIndex != 1 {
			t.Fatalf("back %d switched to tab %d", i+1, tab.ActiveIndex)
		}
		if got := routes(FindByKey(root, "s-mail").(*StackNode)); !slices.Equal(got, want[i]) {
			t.Fatalf("back %d: expected %v, got %v", i+1, want[i], got)
		}
		if got := routes(FindByKey(root, "s-home").(*StackNode)); !slices.Equal(got, []string{"home", "article"}) {
			t.Fatalf("back %d touched an inactive tab: %v", i+1, got)
		}
	}
	if m.CanHandleBackNavigation(root, false) {
		t.Fatalf("expected back to be unhandled at the tab root")
	}
	res := m.PopWithContainerBehavior(root, false)
	if _, ok := res.(DelegateToSystem); !ok {
		t.Fatalf("expected DelegateToSystem, got %#v", res)
	}
	if _, ok := m.PopWithContainerBehavior(root, false).(DelegateToSystem); !ok {
		t.Fatalf("delegation must be stable for an unchanged tree")
	}
}

func TestBackCascadesOutOfExhaustedContainer(t *testing.T) {
	main := tabs("tabs", "main", "main", 0, stack("s-home", screen("home", "home")))
	root := stack("root", screen("splash", "splash"), main)
	m := newTestMutator(nil)

	if !m.CanHandleBackNavigation(root, false) {
		t.Fatalf("expected back to be handled")
	}
	next := mustHandled(t, m.PopWithContainerBehavior(root, false))
	if got := routes(next.(*StackNode)); !slices.Equal(got, []string{"splash"}) {
		t.Fatalf("expected tab node removed, got %v", got)
	}
	if FindByKey(root, "tabs") == nil {
		t.Fatalf("input tree was modified")
	}
}

func TestBackCascadesThroughNestedStacks(t *testing.T) {
	inner := stack("inner", screen("deep", "deep"))
	outer := stack("outer", inner)
	root := stack("root", screen("home", "home"), outer)
	m := newTestMutator(nil)
	next := mustHandled(t, m.PopWithContainerBehavior(root, false))
	if got := routes(next.(*StackNode)); !slices.Equal(got, []string{"home"}) {
		t.Fatalf("expected nested stacks removed, got %v", got)
	}
}

func mailPane(back PaneBackBehavior) *PaneNode {
	return panes("mail", "mail", "mail", RoleSecondary, back, map[PaneRole]*StackNode{
		RolePrimary:   stack("list", screen("inbox", "inbox")),
		RoleSecondary: stack("detail", screen("msg", "message")),
		RoleExtra:     stack("extra"),
	})
}

func TestBackPaneCompactReturnsToPrimary(t *testing.T) {
	root := stack("root", screen("home", "home"), mailPane(PaneBackPopLatest))
	m := newTestMutator(nil)
	next := mustHandled(t, m.PopWithContainerBehavior(root, false))
	pane := FindByKey(next, "mail").(*PaneNode)
	if pane.ActiveRole != RolePrimary {
		t.Fatalf("expected focus back on primary, got %s", pane.ActiveRole)
	}
	if len(pane.Panes[RoleSecondary].Stack.Children) != 1 {
		t.Fatalf("secondary history must survive a focus change")
	}

	next = mustHandled(t, m.PopWithContainerBehavior(next, false))
	if got := routes(next.(*StackNode)); !slices.Equal(got, []string{"home"}) {
		t.Fatalf("expected pane removed once primary is exhausted, got %v", got)
	}
}

func TestBackPaneExpandedRemovesWholePane(t *testing.T) {
	root := stack("root", screen("home", "home"), mailPane(PaneBackPopLatest))
	m := newTestMutator(nil)
	next := mustHandled(t, m.PopWithContainerBehavior(root, true))
	if got := routes(next.(*StackNode)); !slices.Equal(got, []string{"home"}) {
		t.Fatalf("expected pane removed in expanded mode, got %v", got)
	}
}

func TestBackPaneScaffoldChangeLeavesPane(t *testing.T) {
	root := stack("root", screen("home", "home"), mailPane(PaneBackPopUntilScaffoldChange))
	m := newTestMutator(nil)
	next := mustHandled(t, m.PopWithContainerBehavior(root, false))
	if FindByKey(next, "mail") != nil {
		t.Fatalf("expected scaffold-change policy to drop the pane")
	}
}

func TestBackPaneContentChangeStepsToPreviousRole(t *testing.T) {
	p := panes("mail", "mail", "mail", RoleExtra, PaneBackPopUntilContentChange, map[PaneRole]*StackNode{
		RolePrimary:   stack("list", screen("inbox", "inbox")),
		RoleSecondary: stack("detail", screen("msg", "message")),
		RoleExtra:     stack("extra", screen("att", "attachment")),
	})
	root := stack("root", p)
	m := newTestMutator(nil)
	next := mustHandled(t, m.PopWithContainerBehavior(root, false))
	if role := FindByKey(next, "mail").(*PaneNode).ActiveRole; role != RoleSecondary {
		t.Fatalf("expected secondary, got %s", role)
	}
	next = mustHandled(t, m.PopWithContainerBehavior(next, false))
	if role := FindByKey(next, "mail").(*PaneNode).ActiveRole; role != RolePrimary {
		t.Fatalf("expected primary, got %s", role)
	}
	if _, ok := m.PopWithContainerBehavior(next, false).(DelegateToSystem); !ok {
		t.Fatalf("expected delegation once the pane is the last thing on root")
	}
}

func TestBackPopsActiveStackBeforePanePolicy(t *testing.T) {
	p := panes("mail", "mail", "mail", RoleSecondary, PaneBackPopLatest, map[PaneRole]*StackNode{
		RolePrimary:   stack("list", screen("inbox", "inbox")),
		RoleSecondary: stack("detail", screen("msg", "message"), screen("reply", "compose")),
	})
	root := stack("root", p)
	m := newTestMutator(nil)
	for _, expanded := range []bool{false, true} {
		next := mustHandled(t, m.PopWithContainerBehavior(root, expanded))
		pane := FindByKey(next, "mail").(*PaneNode)
		if pane.ActiveRole != RoleSecondary || ActiveLeaf(next).ID != "msg" {
			t.Fatalf("expanded=%v: expected plain pop in the focused pane", expanded)
		}
	}
}

func TestCanHandleAgreesWithResolver(t *testing.T) {
	m := newTestMutator(nil)
	trees := []Node{
		sampleTree(),
		stack("root", screen("only", "only")),
		&StackNode{ID: "root"},
		stack("root", mailPane(PaneBackPopLatest)),
		stack("root", tabs("t", "main", "", 0, stack("s", screen("x", "x")))),
	}
	for i, root := range trees {
		for _, expanded := range []bool{false, true} {
			_, handled := m.PopWithContainerBehavior(root, expanded).(Handled)
			if got := m.CanHandleBackNavigation(root, expanded); got != handled {
				t.Fatalf("tree %d expanded=%v: CanHandle=%v, resolver handled=%v", i, expanded, got, handled)
			}
		}
	}
}

func TestBackTerminatesOnCyclicParentKeys(t *testing.T) {
	s := &StackNode{ID: "s", ParentID: "t", Children: []Node{
		&ScreenNode{ID: "a", ParentID: "s", Destination: To("a")},
	}}
	root := NewTab("t", "s", "main", "", []*StackNode{s}, 0, nil)
	m := newTestMutator(nil)
	if _, ok := m.PopWithContainerBehavior(root, false).(CannotHandle); !ok {
		t.Fatalf("expected CannotHandle for a cyclic tree")
	}
}

func TestBackOnEmptyTree(t *testing.T) {
	m := newTestMutator(nil)
	res := m.PopWithContainerBehavior(&StackNode{ID: "root"}, false)
	if _, ok := res.(DelegateToSystem); !ok {
		t.Fatalf("expected DelegateToSystem for an empty root, got %#v", res)
	}
}
