package nav

import (
	"fmt"
	"slices"
)

// ScopeResolver answers routing questions for push.
type ScopeResolver interface {
	// IsInScope reports whether route belongs inside the container scope.
	IsInScope(scope ScopeKey, route string) bool
	// ScopeKey reports which scope, if any, owns route.
	ScopeKey(route string) (ScopeKey, bool)
	// PaneRole reports the pane role route is declared for within scope.
	PaneRole(scope ScopeKey, route string) (PaneRole, bool)
}

// ContainerFactory turns a container destination into its initial subtree.
type ContainerFactory interface {
	IsContainer(route string) bool
	Materialize(dest Destination, parent Key, keys KeyGen) (Node, error)
}

// Mutator implements the structural tree operations. All methods are pure:
// the input tree is never modified.
type Mutator struct {
	Scopes     ScopeResolver
	Containers ContainerFactory
	Keys       KeyGen
}

// NewMutator wires a mutator. A nil scopes resolver puts every destination in
// every scope; nil containers means no destination is a container; nil keys
// falls back to UUIDs.
func NewMutator(scopes ScopeResolver, containers ContainerFactory, keys KeyGen) *Mutator {
	return &Mutator{Scopes: scopes, Containers: containers, Keys: keys}
}

func (m *Mutator) keys() KeyGen {
	if m.Keys == nil {
		return UUIDKeys{}
	}
	return m.Keys
}

func (m *Mutator) inScope(scope ScopeKey, route string) bool {
	if scope == "" || m.Scopes == nil {
		return true
	}
	return m.Scopes.IsInScope(scope, route)
}

// NewNode builds the node a destination materialises to under parent: a
// container subtree for registered containers, otherwise a screen.
func (m *Mutator) NewNode(dest Destination, parent Key) (Node, error) {
	if m.Containers != nil && m.Containers.IsContainer(dest.Route) {
		n, err := m.Containers.Materialize(dest, parent, m.keys())
		if err != nil {
			return nil, fmt.Errorf("materialize %s: %w", dest.Route, err)
		}
		return n, nil
	}
	return &ScreenNode{ID: m.keys().Next(), ParentID: parent, Destination: dest.clone()}, nil
}

type pushTarget struct {
	stack *StackNode
	pane  *PaneNode
	role  PaneRole
}

// target walks the active path from the deepest stack upward and returns
// the first stack whose enclosing container accepts route.
func (m *Mutator) target(root Node, route string) (pushTarget, bool) {
	path := ActivePath(root)
	var fallback *StackNode
	for i := len(path) - 1; i >= 0; i-- {
		s, ok := path[i].(*StackNode)
		if !ok {
			continue
		}
		if fallback == nil {
			fallback = s
		}
		c := nearestContainer(path, i)
		if c < 0 {
			return pushTarget{stack: s}, true
		}
		scope := scopeOf(path[c])
		if m.inScope(scope, route) {
			if p, ok := path[c].(*PaneNode); ok && m.Scopes != nil {
				if role, ok := m.Scopes.PaneRole(scope, route); ok {
					if cfg, ok := p.Panes[role]; ok && cfg.Stack != nil {
						return pushTarget{stack: cfg.Stack, pane: p, role: role}, true
					}
				}
			}
			return pushTarget{stack: s}, true
		}
		// bubble past the container
		i = c
	}
	if fallback != nil {
		return pushTarget{stack: fallback}, true
	}
	return pushTarget{}, false
}

func scopeOf(n Node) ScopeKey {
	switch v := n.(type) {
	case *TabNode:
		return v.Scope
	case *PaneNode:
		return v.Scope
	}
	return ""
}

// Push adds dest on top of the stack chosen by scope routing.
func (m *Mutator) Push(root Node, dest Destination) Result {
	t, ok := m.target(root, dest.Route)
	if !ok {
		return notFound(keyOf(root), "no stack to push %s onto", dest.Route)
	}
	child, err := m.NewNode(dest, t.stack.ID)
	if err != nil {
		return notFound(t.stack.ID, "%v", err)
	}
	stack := t.stack.withChildren(appendNode(t.stack.Children, child))
	if t.pane != nil {
		pane := t.pane.WithStack(t.role, stack).WithActiveRole(t.role)
		return Success{Root: replaceNode(root, pane)}
	}
	return Success{Root: replaceNode(root, stack)}
}

// Pop removes the top of the active stack. It never cascades; see
// PopWithContainerBehavior for back semantics.
func (m *Mutator) Pop(root Node) Result {
	s := ActiveStack(root)
	if s == nil {
		return notFound(keyOf(root), "no active stack")
	}
	if len(s.Children) <= 1 {
		return notFound(s.ID, "stack holds a single entry")
	}
	return Success{Root: replaceNode(root, popTop(s))}
}

// Replace swaps the active leaf for dest without growing history.
func (m *Mutator) Replace(root Node, dest Destination) Result {
	leaf := ActiveLeaf(root)
	if leaf == nil {
		return notFound(keyOf(root), "no active screen")
	}
	s, ok := Parent(root, leaf).(*StackNode)
	if !ok {
		return notFound(leaf.ParentID, "active screen is not in a stack")
	}
	child, err := m.NewNode(dest, s.ID)
	if err != nil {
		return notFound(s.ID, "%v", err)
	}
	children := slices.Clone(s.Children)
	children[len(children)-1] = child
	return Success{Root: replaceNode(root, s.withChildren(children))}
}

// PopTo trims the stack holding anchor back to anchor. With inclusive the
// anchor goes too; the stack must keep at least one entry.
func (m *Mutator) PopTo(root Node, anchor Key, inclusive bool) Result {
	s, keep, res := trimTo(root, anchor, inclusive)
	if res != nil {
		return res
	}
	if keep == 0 {
		return notFound(anchor, "popping to the first entry inclusively would empty the stack")
	}
	return Success{Root: replaceNode(root, s.withChildren(slices.Clone(s.Children[:keep])))}
}

// ClearOptions anchors ClearAndPush.
type ClearOptions struct {
	// UpTo is the entry to clear back to. Empty clears the whole root stack.
	UpTo Key
	// Inclusive removes UpTo itself as well.
	Inclusive bool
}

// ClearAndPush removes stack entries back to an anchor and pushes dest onto
// that same stack. Scope routing is bypassed: the anchor decides the stack.
func (m *Mutator) ClearAndPush(root Node, dest Destination, opts ClearOptions) Result {
	var (
		s    *StackNode
		keep int
	)
	if opts.UpTo != "" {
		var res Result
		s, keep, res = trimTo(root, opts.UpTo, opts.Inclusive)
		if res != nil {
			return res
		}
	} else if rs, ok := root.(*StackNode); ok {
		s = rs
	} else if s = ActiveStack(root); s == nil {
		return notFound(keyOf(root), "no stack to clear")
	}
	child, err := m.NewNode(dest, s.ID)
	if err != nil {
		return notFound(s.ID, "%v", err)
	}
	children := appendNode(s.Children[:keep:keep], child)
	return Success{Root: replaceNode(root, s.withChildren(children))}
}

// SwitchActiveTab selects tab index on the tab node tabKey. Stack contents
// are untouched.
func (m *Mutator) SwitchActiveTab(root Node, tabKey Key, index int) Result {
	tab, ok := FindByKey(root, tabKey).(*TabNode)
	if !ok {
		return notFound(tabKey, "no tab node with this key")
	}
	if index < 0 || index >= len(tab.Stacks) {
		return notFound(tabKey, "tab index %d out of range [0,%d)", index, len(tab.Stacks))
	}
	if index == tab.ActiveIndex {
		return Success{Root: root}
	}
	return Success{Root: replaceNode(root, tab.WithActiveIndex(index))}
}

// SwitchPane focuses role on the pane node paneKey.
func (m *Mutator) SwitchPane(root Node, paneKey Key, role PaneRole) Result {
	pane, ok := FindByKey(root, paneKey).(*PaneNode)
	if !ok {
		return notFound(paneKey, "no pane node with this key")
	}
	if _, ok := pane.Panes[role]; !ok {
		return notFound(paneKey, "pane has no %s role", role)
	}
	if role == pane.ActiveRole {
		return Success{Root: root}
	}
	return Success{Root: replaceNode(root, pane.WithActiveRole(role))}
}

func trimTo(root Node, anchor Key, inclusive bool) (*StackNode, int, Result) {
	n := FindByKey(root, anchor)
	if n == nil {
		return nil, 0, notFound(anchor, "anchor not in tree")
	}
	s, ok := Parent(root, n).(*StackNode)
	if !ok {
		return nil, 0, notFound(anchor, "anchor is not a stack entry")
	}
	idx := slices.IndexFunc(s.Children, func(c Node) bool { return c.Key() == anchor })
	keep := idx + 1
	if inclusive {
		keep = idx
	}
	return s, keep, nil
}

func keyOf(n Node) Key {
	if n == nil {
		return ""
	}
	return n.Key()
}

// appendNode returns a new slice; the input's backing array is never shared
// with the result, so older tree versions stay intact.
func appendNode(children []Node, n Node) []Node {
	out := make([]Node, len(children), len(children)+1)
	copy(out, children)
	return append(out, n)
}

func popTop(s *StackNode) *StackNode {
	return s.withChildren(slices.Clone(s.Children[:len(s.Children)-1]))
}

func removeChild(s *StackNode, key Key) *StackNode {
	return s.withChildren(slices.DeleteFunc(slices.Clone(s.Children), func(c Node) bool {
		return c.Key() == key
	}))
}

// replaceNode returns root with the node sharing n's key swapped for n.
// Subtrees off the path are shared between the old and new trees.
func replaceNode(root Node, n Node) Node {
	out, _ := rebuild(root, n)
	return out
}

func rebuild(cur, n Node) (Node, bool) {
	if cur == nil {
		return nil, false
	}
	if cur.Key() == n.Key() {
		return n, true
	}
	switch v := cur.(type) {
	case *StackNode:
		for i, c := range v.Children {
			if r, ok := rebuild(c, n); ok {
				children := slices.Clone(v.Children)
				children[i] = r
				return v.withChildren(children), true
			}
		}
	case *TabNode:
		for i, s := range v.Stacks {
			if s == nil {
				continue
			}
			if r, ok := rebuild(s, n); ok {
				if rs, ok := r.(*StackNode); ok {
					return v.WithStack(i, rs), true
				}
				return cur, false
			}
		}
	case *PaneNode:
		for _, role := range v.Roles() {
			s := v.Panes[role].Stack
			if s == nil {
				continue
			}
			if r, ok := rebuild(s, n); ok {
				if rs, ok := r.(*StackNode); ok {
					return v.WithStack(role, rs), true
				}
				return cur, false
			}
		}
	}
	return cur, false
}
