// Package scope holds the host-supplied routing tables: which destinations
// live inside which container, and how a container destination turns into its
// initial subtree.
package scope

import (
	"fmt"
	"slices"

	"github.com/atomicstack/navstate/internal/nav"
)

// Tab declares one tab of a tab container.
type Tab struct {
	Label string `yaml:"label" toml:"label" validate:"required"`
	Icon  string `yaml:"icon,omitempty" toml:"icon"`
	// Root is the destination every fresh stack of this tab starts with.
	Root string `yaml:"root" toml:"root" validate:"required"`
	// Routes are additional destinations that open in this tab.
	Routes []string `yaml:"routes,omitempty" toml:"routes" validate:"dive,required"`
}

// TabContainer declares a tabbed container destination.
type TabContainer struct {
	Route   string       `yaml:"route" toml:"route" validate:"required"`
	Scope   nav.ScopeKey `yaml:"scope,omitempty" toml:"scope"`
	Tabs    []Tab        `yaml:"tabs" toml:"tabs" validate:"required,min=1,dive"`
	Initial int          `yaml:"initial,omitempty" toml:"initial" validate:"gte=0"`
}

// Pane declares one role of a pane container.
type Pane struct {
	Role nav.PaneRole `yaml:"role" toml:"role" validate:"required,panerole"`
	// Root is optional; a role without one starts empty.
	Root   string            `yaml:"root,omitempty" toml:"root"`
	Adapt  nav.AdaptStrategy `yaml:"adapt,omitempty" toml:"adapt" validate:"omitempty,oneof=hide levitate reflow"`
	Hidden bool              `yaml:"hidden,omitempty" toml:"hidden"`
	Routes []string          `yaml:"routes,omitempty" toml:"routes" validate:"dive,required"`
}

// PaneContainer declares a multi-pane container destination.
type PaneContainer struct {
	Route string               `yaml:"route" toml:"route" validate:"required"`
	Scope nav.ScopeKey         `yaml:"scope,omitempty" toml:"scope"`
	Panes []Pane               `yaml:"panes" toml:"panes" validate:"required,min=1,dive"`
	Back  nav.PaneBackBehavior `yaml:"back,omitempty" toml:"back" validate:"omitempty,oneof=pop-latest pop-until-content-change pop-until-scaffold-change"`
}

// Container is a registered container of either kind.
type Container struct {
	Kind nav.Kind
	Tab  *TabContainer
	Pane *PaneContainer
}

func (c Container) Route() string {
	if c.Tab != nil {
		return c.Tab.Route
	}
	return c.Pane.Route
}

func (c Container) Scope() nav.ScopeKey {
	if c.Tab != nil {
		return c.Tab.Scope
	}
	return c.Pane.Scope
}

// Registry answers scope and container questions. It is immutable once built
// and safe for concurrent use.
type Registry struct {
	containers map[string]Container
	byScope    map[nav.ScopeKey]string
	owner      map[string]nav.ScopeKey
	members    map[nav.ScopeKey]map[string]struct{}
}

var (
	_ nav.ScopeResolver    = (*Registry)(nil)
	_ nav.ContainerFactory = (*Registry)(nil)
)

func (r *Registry) IsInScope(scope nav.ScopeKey, route string) bool {
	_, ok := r.members[scope][route]
	return ok
}

// ScopeKey returns the scope that owns route. Each route has at most one owner.
func (r *Registry) ScopeKey(route string) (nav.ScopeKey, bool) {
	s, ok := r.owner[route]
	return s, ok
}

// PaneRole returns the role route is declared for inside the pane container
// owning scope.
func (r *Registry) PaneRole(scope nav.ScopeKey, route string) (nav.PaneRole, bool) {
	c, ok := r.ContainerForScope(scope)
	if !ok || c.Pane == nil {
		return "", false
	}
	for _, p := range c.Pane.Panes {
		if p.Root == route || slices.Contains(p.Routes, route) {
			return p.Role, true
		}
	}
	return "", false
}

// TabIndex returns the tab of container route that child opens in.
func (r *Registry) TabIndex(container, child string) (int, bool) {
	c, ok := r.containers[container]
	if !ok || c.Tab == nil {
		return 0, false
	}
	for i, t := range c.Tab.Tabs {
		if t.Root == child || slices.Contains(t.Routes, child) {
			return i, true
		}
	}
	return 0, false
}

func (r *Registry) IsContainer(route string) bool {
	_, ok := r.containers[route]
	return ok
}

func (r *Registry) Container(route string) (Container, bool) {
	c, ok := r.containers[route]
	return c, ok
}

func (r *Registry) ContainerForScope(scope nav.ScopeKey) (Container, bool) {
	route, ok := r.byScope[scope]
	if !ok {
		return Container{}, false
	}
	return r.containers[route], true
}

// Routes lists every route the registry knows about, sorted.
func (r *Registry) Routes() []string {
	seen := make(map[string]struct{}, len(r.owner)+len(r.containers))
	for route := range r.owner {
		seen[route] = struct{}{}
	}
	for route := range r.containers {
		seen[route] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for route := range seen {
		out = append(out, route)
	}
	slices.Sort(out)
	return out
}

// Scopes lists the registered scope keys, sorted.
func (r *Registry) Scopes() []nav.ScopeKey {
	out := make([]nav.ScopeKey, 0, len(r.members))
	for s := range r.members {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Members lists the routes inside scope, sorted.
func (r *Registry) Members(scope nav.ScopeKey) []string {
	out := make([]string, 0, len(r.members[scope]))
	for route := range r.members[scope] {
		out = append(out, route)
	}
	slices.Sort(out)
	return out
}

// Materialize builds the initial subtree for a container destination. Tab
// stacks start with their root destination, which is materialised in turn
// when it is itself a container.
func (r *Registry) Materialize(dest nav.Destination, parent nav.Key, keys nav.KeyGen) (nav.Node, error) {
	c, ok := r.containers[dest.Route]
	if !ok {
		return nil, fmt.Errorf("%s is not a container", dest.Route)
	}
	id := keys.Next()
	switch {
	case c.Tab != nil:
		stacks := make([]*nav.StackNode, len(c.Tab.Tabs))
		metas := make([]nav.TabMeta, len(c.Tab.Tabs))
		for i, t := range c.Tab.Tabs {
			s, err := r.rootStack(t.Root, id, keys)
			if err != nil {
				return nil, err
			}
			stacks[i] = s
			metas[i] = nav.TabMeta{Label: t.Label, Icon: t.Icon}
		}
		return nav.NewTab(id, parent, c.Tab.Route, c.Tab.Scope, stacks, c.Tab.Initial, metas), nil
	default:
		panes := make(map[nav.PaneRole]nav.PaneConfig, len(c.Pane.Panes))
		for _, p := range c.Pane.Panes {
			s, err := r.rootStack(p.Root, id, keys)
			if err != nil {
				return nil, err
			}
			adapt := p.Adapt
			if adapt == "" {
				adapt = nav.AdaptHide
			}
			panes[p.Role] = nav.PaneConfig{Stack: s, Adapt: adapt, Visible: !p.Hidden}
		}
		return nav.NewPane(id, parent, c.Pane.Route, c.Pane.Scope, panes, nav.RolePrimary, c.Pane.Back), nil
	}
}

// Node materialises route under parent: a container subtree or a screen.
func (r *Registry) Node(dest nav.Destination, parent nav.Key, keys nav.KeyGen) (nav.Node, error) {
	if r.IsContainer(dest.Route) {
		return r.Materialize(dest, parent, keys)
	}
	return &nav.ScreenNode{ID: keys.Next(), ParentID: parent, Destination: dest}, nil
}

func (r *Registry) rootStack(root string, parent nav.Key, keys nav.KeyGen) (*nav.StackNode, error) {
	s := &nav.StackNode{ID: keys.Next(), ParentID: parent}
	if root == "" {
		return s, nil
	}
	child, err := r.Node(nav.Destination{Route: root}, s.ID, keys)
	if err != nil {
		return nil, fmt.Errorf("materialize %s: %w", root, err)
	}
	s.Children = []nav.Node{child}
	return s, nil
}
