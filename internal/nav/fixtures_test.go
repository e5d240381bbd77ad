package nav

import (
	"fmt"
	"slices"
	"testing"
)

func screen(id, route string) *ScreenNode {
	return &ScreenNode{ID: Key(id), Destination: Destination{Route: route}}
}

func stack(id string, children ...Node) *StackNode {
	out := make([]Node, len(children))
	for i, c := range children {
		out[i] = Reparent(c, Key(id))
	}
	return &StackNode{ID: Key(id), Children: out}
}

func tabs(id, route string, scope ScopeKey, active int, stacks ...*StackNode) *TabNode {
	out := make([]*StackNode, len(stacks))
	for i, s := range stacks {
		out[i] = s.withParent(Key(id))
	}
	return NewTab(Key(id), "", route, scope, out, active, nil)
}

func panes(id, route string, scope ScopeKey, active PaneRole, back PaneBackBehavior, byRole map[PaneRole]*StackNode) *PaneNode {
	cfg := make(map[PaneRole]PaneConfig, len(byRole))
	for role, s := range byRole {
		cfg[role] = PaneConfig{Stack: s.withParent(Key(id)), Adapt: AdaptHide, Visible: true}
	}
	return NewPane(Key(id), "", route, scope, cfg, active, back)
}

type fakeScopes struct {
	members map[ScopeKey][]string
	roles   map[ScopeKey]map[string]PaneRole
}

func (f fakeScopes) IsInScope(scope ScopeKey, route string) bool {
	return slices.Contains(f.members[scope], route)
}

func (f fakeScopes) ScopeKey(route string) (ScopeKey, bool) {
	for scope, routes := range f.members {
		if slices.Contains(routes, route) {
			return scope, true
		}
	}
	return "", false
}

func (f fakeScopes) PaneRole(scope ScopeKey, route string) (PaneRole, bool) {
	role, ok := f.roles[scope][route]
	return role, ok
}

// fakeContainers materialises "wizard" as a two-tab container.
type fakeContainers struct{}

func (fakeContainers) IsContainer(route string) bool { return route == "wizard" }

func (fakeContainers) Materialize(dest Destination, parent Key, keys KeyGen) (Node, error) {
	if dest.Route != "wizard" {
		return nil, fmt.Errorf("unknown container %s", dest.Route)
	}
	id := keys.Next()
	stacks := make([]*StackNode, 2)
	for i := range stacks {
		sid := keys.Next()
		stacks[i] = &StackNode{ID: sid, ParentID: id, Children: []Node{
			&ScreenNode{ID: keys.Next(), ParentID: sid, Destination: Destination{Route: fmt.Sprintf("wizard-step-%d", i+1)}},
		}}
	}
	return NewTab(id, parent, "wizard", "wizard", stacks, 0, []TabMeta{{Label: "one"}, {Label: "two"}}), nil
}

func newTestMutator(scopes ScopeResolver) *Mutator {
	return NewMutator(scopes, fakeContainers{}, &SequentialKeys{Prefix: "k"})
}

func mustSuccess(t *testing.T, r Result) Node {
	t.Helper()
	root, ok := RootOf(r)
	if !ok {
		t.Fatalf("expected Success, got %#v", r)
	}
	if err := Validate(root); err != nil {
		t.Fatalf("result tree invalid: %v", err)
	}
	return root
}

func mustHandled(t *testing.T, r BackResult) Node {
	t.Helper()
	h, ok := r.(Handled)
	if !ok {
		t.Fatalf("expected Handled, got %#v", r)
	}
	if err := Validate(h.Root); err != nil {
		t.Fatalf("result tree invalid: %v", err)
	}
	return h.Root
}

func routes(s *StackNode) []string {
	out := make([]string, 0, len(s.Children))
	for _, c := range s.Children {
		switch v := c.(type) {
		case *ScreenNode:
			out = append(out, v.Destination.Route)
		default:
			out = append(out, v.Kind().String()+":"+string(v.Key()))
		}
	}
	return out
}
