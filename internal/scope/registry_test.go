package scope

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/atomicstack/navstate/internal/nav"
)

func sampleRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewBuilder().
		Tabs(TabContainer{
			Route: "main",
			Tabs: []Tab{
				{Label: "tab.home", Root: "home", Routes: []string{"article"}},
				{Label: "tab.mail", Root: "mail"},
				{Label: "tab.search", Root: "search", Routes: []string{"result"}},
			},
		}).
		Panes(PaneContainer{
			Route: "mail",
			Back:  nav.PaneBackPopLatest,
			Panes: []Pane{
				{Role: nav.RolePrimary, Root: "inbox"},
				{Role: nav.RoleSecondary, Routes: []string{"message"}},
			},
		}).
		Scope("mail", "compose").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return r
}

func TestRegistryScopes(t *testing.T) {
	r := sampleRegistry(t)
	if !r.IsInScope("main", "article") || r.IsInScope("main", "message") {
		t.Fatalf("unexpected main scope membership: %v", r.Members("main"))
	}
	if s, ok := r.ScopeKey("message"); !ok || s != "mail" {
		t.Fatalf("expected mail to own message, got %q", s)
	}
	if s, ok := r.ScopeKey("mail"); !ok || s != "main" {
		t.Fatalf("expected main to own the mail container, got %q", s)
	}
	if _, ok := r.ScopeKey("settings"); ok {
		t.Fatalf("settings should have no owner")
	}
	if role, ok := r.PaneRole("mail", "message"); !ok || role != nav.RoleSecondary {
		t.Fatalf("expected secondary role for message, got %q", role)
	}
	if _, ok := r.PaneRole("mail", "compose"); ok {
		t.Fatalf("compose is in scope but declares no role")
	}
	if idx, ok := r.TabIndex("main", "result"); !ok || idx != 2 {
		t.Fatalf("expected result in tab 2, got %d", idx)
	}
	if got := r.Chain("message"); !slices.Equal(got, []string{"mail", "main"}) {
		t.Fatalf("unexpected chain %v", got)
	}
	if got := r.Scopes(); !slices.Equal(got, []nav.ScopeKey{"mail", "main"}) {
		t.Fatalf("unexpected scopes %v", got)
	}
	if !slices.Contains(r.Routes(), "compose") || !slices.Contains(r.Routes(), "main") {
		t.Fatalf("routes missing entries: %v", r.Routes())
	}
}

func TestMaterializeTabsRecursively(t *testing.T) {
	r := sampleRegistry(t)
	n, err := r.Materialize(nav.To("main"), "root", &nav.SequentialKeys{Prefix: "m"})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	tab, ok := n.(*nav.TabNode)
	if !ok {
		t.Fatalf("expected tab node, got %T", n)
	}
	if tab.ParentID != "root" || len(tab.Stacks) != 3 || tab.ActiveIndex != 0 {
		t.Fatalf("unexpected tab %#v", tab)
	}
	if tab.Tabs[1].Label != "tab.mail" {
		t.Fatalf("tab metadata not carried: %#v", tab.Tabs)
	}
	pane, ok := tab.Stacks[1].Top().(*nav.PaneNode)
	if !ok {
		t.Fatalf("expected mail tab to start with a pane node, got %T", tab.Stacks[1].Top())
	}
	if pane.ActiveRole != nav.RolePrimary || len(pane.Panes[nav.RoleSecondary].Stack.Children) != 0 {
		t.Fatalf("unexpected pane %#v", pane)
	}
	if err := nav.Validate(&nav.StackNode{ID: "root", Children: []nav.Node{tab}}); err != nil {
		t.Fatalf("materialised subtree invalid: %v", err)
	}
}

func TestRegistryDrivesPushRouting(t *testing.T) {
	r := sampleRegistry(t)
	m := nav.NewMutator(r, r, &nav.SequentialKeys{Prefix: "k"})
	root := nav.Node(&nav.StackNode{ID: "root"})
	for _, dest := range []string{"main", "article", "settings"} {
		res := m.Push(root, nav.To(dest))
		next, ok := nav.RootOf(res)
		if !ok {
			t.Fatalf("push %s: %#v", dest, res)
		}
		root = next
	}
	tab := nav.InnermostTab(root)
	if tab != nil {
		t.Fatalf("settings should cover the tab container")
	}
	top := root.(*nav.StackNode)
	if len(top.Children) != 2 {
		t.Fatalf("expected [main, settings] on root, got %d entries", len(top.Children))
	}
	main := top.Children[0].(*nav.TabNode)
	if n := len(main.Stacks[0].Children); n != 2 {
		t.Fatalf("expected article inside the home tab, got %d entries", n)
	}
}

func TestBuildRejects(t *testing.T) {
	cases := map[string]*Builder{
		"no tabs": NewBuilder().Tabs(TabContainer{Route: "main"}),
		"initial out of range": NewBuilder().Tabs(TabContainer{
			Route: "main", Initial: 1, Tabs: []Tab{{Label: "a", Root: "a"}},
		}),
		"no primary": NewBuilder().Panes(PaneContainer{
			Route: "p", Panes: []Pane{{Role: nav.RoleSecondary}},
		}),
		"unknown role": NewBuilder().Panes(PaneContainer{
			Route: "p", Panes: []Pane{{Role: nav.RolePrimary}, {Role: "sidebar"}},
		}),
		"duplicate container": NewBuilder().
			Tabs(TabContainer{Route: "main", Tabs: []Tab{{Label: "a", Root: "a"}}}).
			Tabs(TabContainer{Route: "main", Scope: "other", Tabs: []Tab{{Label: "b", Root: "b"}}}),
		"route in two scopes": NewBuilder().
			Tabs(TabContainer{Route: "one", Tabs: []Tab{{Label: "a", Root: "a"}}}).
			Tabs(TabContainer{Route: "two", Tabs: []Tab{{Label: "a", Root: "a"}}}),
		"cycle": NewBuilder().
			Tabs(TabContainer{Route: "one", Tabs: []Tab{{Label: "x", Root: "two"}}}).
			Tabs(TabContainer{Route: "two", Tabs: []Tab{{Label: "y", Root: "one"}}}),
		"dangling scope": NewBuilder().Scope("nowhere", "a"),
	}
	for name, b := range cases {
		_, err := b.Build()
		if err == nil {
			t.Fatalf("%s: expected build error", name)
		}
		if !errors.Is(err, ErrInvalidRegistry) {
			t.Fatalf("%s: expected ErrInvalidRegistry, got %v", name, err)
		}
	}
}

func TestMustBuildPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(r.(error).Error(), "no primary role") {
			t.Fatalf("expected panic about primary role, got %v", r)
		}
	}()
	NewBuilder().Panes(PaneContainer{Route: "p", Panes: []Pane{{Role: nav.RoleSecondary, Root: "x"}}}).MustBuild()
}
