package deeplink

import (
	"fmt"

	"github.com/atomicstack/navstate/internal/nav"
	"github.com/atomicstack/navstate/internal/scope"
)

// Mode selects how a reconstructed path meets the current tree.
type Mode int

const (
	// ModeReplace builds a fresh root stack holding only the link's path.
	ModeReplace Mode = iota
	// ModeGraft pushes the link's path onto the current root stack.
	ModeGraft
)

func (m Mode) String() string {
	if m == ModeGraft {
		return "graft"
	}
	return "replace"
}

// ParseMode accepts "replace" and "graft".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "replace":
		return ModeReplace, nil
	case "graft":
		return ModeGraft, nil
	}
	return ModeReplace, fmt.Errorf("unknown deep link mode %q", s)
}

// Resolver rebuilds tree paths for links.
type Resolver struct {
	Router   *Router
	Registry *scope.Registry
	Keys     nav.KeyGen
}

func NewResolver(router *Router, registry *scope.Registry, keys nav.KeyGen) *Resolver {
	if keys == nil {
		keys = nav.UUIDKeys{}
	}
	return &Resolver{Router: router, Registry: registry, Keys: keys}
}

// Reconstruct builds the subtree for m under parent: the matched destination
// wrapped in every container that owns it, innermost first, each with the
// right tab or pane selected.
func (r *Resolver) Reconstruct(m Match, parent nav.Key) (nav.Node, error) {
	child, err := r.node(m.Destination)
	if err != nil {
		return nil, err
	}
	childRoute := m.Destination.Route
	if r.Registry != nil {
		for _, container := range r.Registry.Chain(childRoute) {
			wrapped, err := r.wrap(container, childRoute, child)
			if err != nil {
				return nil, err
			}
			child, childRoute = wrapped, container
		}
	}
	return nav.Reparent(child, parent), nil
}

// Resolve matches link and combines the reconstructed path with current. The
// returned tree is validated; on any failure current is left as it is.
func (r *Resolver) Resolve(current nav.Node, link string, mode Mode) (nav.Node, error) {
	m, ok := r.Router.Match(link)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, link)
	}
	var root nav.Node
	switch mode {
	case ModeGraft:
		stack, ok := current.(*nav.StackNode)
		if !ok {
			return nil, fmt.Errorf("graft %s: root is a %s, not a stack", link, kindOf(current))
		}
		sub, err := r.Reconstruct(m, stack.ID)
		if err != nil {
			return nil, err
		}
		children := make([]nav.Node, len(stack.Children), len(stack.Children)+1)
		copy(children, stack.Children)
		root = &nav.StackNode{ID: stack.ID, ParentID: stack.ParentID, Children: append(children, sub)}
	default:
		id := r.Keys.Next()
		sub, err := r.Reconstruct(m, id)
		if err != nil {
			return nil, err
		}
		root = &nav.StackNode{ID: id, Children: []nav.Node{sub}}
	}
	if err := nav.Validate(root); err != nil {
		return nil, fmt.Errorf("resolve %s: %w", link, err)
	}
	return root, nil
}

func (r *Resolver) node(dest nav.Destination) (nav.Node, error) {
	if r.Registry != nil {
		return r.Registry.Node(dest, "", r.Keys)
	}
	return &nav.ScreenNode{ID: r.Keys.Next(), Destination: dest}, nil
}

// wrap materialises container and places child in the slot it opens in. A
// child matching the slot's root destination takes the root's place;
// otherwise it sits on top of the root.
func (r *Resolver) wrap(container, childRoute string, child nav.Node) (nav.Node, error) {
	n, err := r.Registry.Materialize(nav.To(container), "", r.Keys)
	if err != nil {
		return nil, err
	}
	switch c := n.(type) {
	case *nav.TabNode:
		idx, ok := r.Registry.TabIndex(container, childRoute)
		if !ok {
			idx = c.ActiveIndex
		}
		return c.WithStack(idx, place(c.Stacks[idx], childRoute, child)).WithActiveIndex(idx), nil
	case *nav.PaneNode:
		role, ok := r.Registry.PaneRole(c.Scope, childRoute)
		if !ok {
			role = nav.RolePrimary
		}
		return c.WithStack(role, place(c.Panes[role].Stack, childRoute, child)).WithActiveRole(role), nil
	}
	return nil, fmt.Errorf("container %s materialised as %s", container, kindOf(n))
}

func place(s *nav.StackNode, route string, child nav.Node) *nav.StackNode {
	child = nav.Reparent(child, s.ID)
	if len(s.Children) == 1 && routeOf(s.Children[0]) == route {
		return &nav.StackNode{ID: s.ID, ParentID: s.ParentID, Children: []nav.Node{child}}
	}
	children := make([]nav.Node, len(s.Children), len(s.Children)+1)
	copy(children, s.Children)
	return &nav.StackNode{ID: s.ID, ParentID: s.ParentID, Children: append(children, child)}
}

func routeOf(n nav.Node) string {
	switch v := n.(type) {
	case *nav.ScreenNode:
		return v.Destination.Route
	case *nav.TabNode:
		return v.Route
	case *nav.PaneNode:
		return v.Route
	}
	return ""
}

func kindOf(n nav.Node) string {
	if n == nil {
		return "nil"
	}
	return n.Kind().String()
}
