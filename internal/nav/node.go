package nav

import (
	"maps"
	"slices"
)

// Key identifies a node. Keys are assigned at creation and never reused.
type Key string

// ScopeKey names the set of destinations that belong inside a container.
type ScopeKey string

// Kind enumerates the four node variants.
type Kind int

const (
	KindScreen Kind = iota
	KindStack
	KindTab
	KindPane
)

func (k Kind) String() string {
	switch k {
	case KindScreen:
		return "screen"
	case KindStack:
		return "stack"
	case KindTab:
		return "tab"
	case KindPane:
		return "pane"
	default:
		return "unknown"
	}
}

// Node is a navigation tree node. The set of implementations is closed:
// *ScreenNode, *StackNode, *TabNode and *PaneNode. Nodes are never modified
// after construction; mutations build new nodes and share untouched subtrees.
type Node interface {
	Key() Key
	ParentKey() Key
	Kind() Kind
	node()
}

// Destination is a navigation target plus its payload.
type Destination struct {
	Route string            `json:"route"`
	Args  map[string]string `json:"args,omitempty"`
}

// To is shorthand for a destination with optional key/value args.
func To(route string, kv ...string) Destination {
	d := Destination{Route: route}
	if len(kv) > 1 {
		d.Args = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			d.Args[kv[i]] = kv[i+1]
		}
	}
	return d
}

func (d Destination) clone() Destination {
	return Destination{Route: d.Route, Args: maps.Clone(d.Args)}
}

// ScreenNode is a leaf holding a destination.
type ScreenNode struct {
	ID          Key
	ParentID    Key
	Destination Destination
}

func (s *ScreenNode) Key() Key       { return s.ID }
func (s *ScreenNode) ParentKey() Key { return s.ParentID }
func (s *ScreenNode) Kind() Kind     { return KindScreen }
func (*ScreenNode) node()            {}

// StackNode holds navigation history. The last child is the visible one.
type StackNode struct {
	ID       Key
	ParentID Key
	Children []Node
}

func (s *StackNode) Key() Key       { return s.ID }
func (s *StackNode) ParentKey() Key { return s.ParentID }
func (s *StackNode) Kind() Kind     { return KindStack }
func (*StackNode) node()            {}

// Top returns the last child, or nil for an empty stack.
func (s *StackNode) Top() Node {
	if len(s.Children) == 0 {
		return nil
	}
	return s.Children[len(s.Children)-1]
}

func (s *StackNode) withChildren(children []Node) *StackNode {
	return &StackNode{ID: s.ID, ParentID: s.ParentID, Children: children}
}

func (s *StackNode) withParent(parent Key) *StackNode {
	return &StackNode{ID: s.ID, ParentID: parent, Children: s.Children}
}

// TabMeta is the display metadata of one tab.
type TabMeta struct {
	Label string `json:"label,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// TabNode holds one stack per tab with a single active tab.
type TabNode struct {
	ID          Key
	ParentID    Key
	Route       string
	Scope       ScopeKey
	Stacks      []*StackNode
	ActiveIndex int
	Tabs        []TabMeta

	life *Lifecycle
}

// NewTab builds a tab node with a fresh lifecycle.
func NewTab(id, parent Key, route string, scope ScopeKey, stacks []*StackNode, active int, tabs []TabMeta) *TabNode {
	return &TabNode{
		ID:          id,
		ParentID:    parent,
		Route:       route,
		Scope:       scope,
		Stacks:      stacks,
		ActiveIndex: active,
		Tabs:        tabs,
		life:        NewLifecycle(),
	}
}

func (t *TabNode) Key() Key       { return t.ID }
func (t *TabNode) ParentKey() Key { return t.ParentID }
func (t *TabNode) Kind() Kind     { return KindTab }
func (*TabNode) node()            {}

// Lifecycle returns the runtime lifecycle shared by every version of this tab.
func (t *TabNode) Lifecycle() *Lifecycle { return t.life }

// ActiveStack returns the stack of the selected tab.
func (t *TabNode) ActiveStack() *StackNode {
	if t.ActiveIndex < 0 || t.ActiveIndex >= len(t.Stacks) {
		return nil
	}
	return t.Stacks[t.ActiveIndex]
}

// WithActiveIndex returns a copy of t with a different selected tab.
func (t *TabNode) WithActiveIndex(index int) *TabNode {
	dup := *t
	dup.ActiveIndex = index
	return &dup
}

// WithStack returns a copy of t with the stack at index replaced.
func (t *TabNode) WithStack(index int, stack *StackNode) *TabNode {
	dup := *t
	dup.Stacks = slices.Clone(t.Stacks)
	dup.Stacks[index] = stack
	return &dup
}

func (t *TabNode) withParent(parent Key) *TabNode {
	dup := *t
	dup.ParentID = parent
	return &dup
}

// PaneRole names a pane slot within a multi-pane layout.
type PaneRole string

const (
	RolePrimary   PaneRole = "primary"
	RoleSecondary PaneRole = "secondary"
	RoleExtra     PaneRole = "extra"
)

var roleOrder = []PaneRole{RolePrimary, RoleSecondary, RoleExtra}

// Valid reports whether r is one of the known roles.
func (r PaneRole) Valid() bool {
	return slices.Contains(roleOrder, r)
}

// AdaptStrategy describes how a pane behaves when there is no room for it.
type AdaptStrategy string

const (
	AdaptHide     AdaptStrategy = "hide"
	AdaptLevitate AdaptStrategy = "levitate"
	AdaptReflow   AdaptStrategy = "reflow"
)

// PaneBackBehavior selects how back is absorbed inside a compact pane node.
type PaneBackBehavior string

const (
	// PaneBackPopLatest switches focus straight back to the primary pane.
	PaneBackPopLatest PaneBackBehavior = "pop-latest"
	// PaneBackPopUntilContentChange steps focus to the previous role.
	PaneBackPopUntilContentChange PaneBackBehavior = "pop-until-content-change"
	// PaneBackPopUntilScaffoldChange never switches panes; the pane node is
	// removed once its active stack is exhausted.
	PaneBackPopUntilScaffoldChange PaneBackBehavior = "pop-until-scaffold-change"
)

// Valid reports whether b is a known behavior. Empty counts as pop-latest.
func (b PaneBackBehavior) Valid() bool {
	switch b {
	case "", PaneBackPopLatest, PaneBackPopUntilContentChange, PaneBackPopUntilScaffoldChange:
		return true
	}
	return false
}

// PaneConfig is the content and presentation of one pane role.
type PaneConfig struct {
	Stack   *StackNode
	Adapt   AdaptStrategy
	Visible bool
}

// PaneNode holds simultaneously visible regions keyed by role.
type PaneNode struct {
	ID         Key
	ParentID   Key
	Route      string
	Scope      ScopeKey
	Panes      map[PaneRole]PaneConfig
	ActiveRole PaneRole
	Back       PaneBackBehavior

	life *Lifecycle
}

// NewPane builds a pane node with a fresh lifecycle.
func NewPane(id, parent Key, route string, scope ScopeKey, panes map[PaneRole]PaneConfig, active PaneRole, back PaneBackBehavior) *PaneNode {
	return &PaneNode{
		ID:         id,
		ParentID:   parent,
		Route:      route,
		Scope:      scope,
		Panes:      panes,
		ActiveRole: active,
		Back:       back,
		life:       NewLifecycle(),
	}
}

func (p *PaneNode) Key() Key       { return p.ID }
func (p *PaneNode) ParentKey() Key { return p.ParentID }
func (p *PaneNode) Kind() Kind     { return KindPane }
func (*PaneNode) node()            {}

// Lifecycle returns the runtime lifecycle shared by every version of this pane.
func (p *PaneNode) Lifecycle() *Lifecycle { return p.life }

// Roles returns the configured roles in primary, secondary, extra order.
func (p *PaneNode) Roles() []PaneRole {
	roles := make([]PaneRole, 0, len(p.Panes))
	for _, r := range roleOrder {
		if _, ok := p.Panes[r]; ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// ActiveStack returns the stack of the focused role.
func (p *PaneNode) ActiveStack() *StackNode {
	cfg, ok := p.Panes[p.ActiveRole]
	if !ok {
		return nil
	}
	return cfg.Stack
}

// WithActiveRole returns a copy of p focused on role.
func (p *PaneNode) WithActiveRole(role PaneRole) *PaneNode {
	dup := *p
	dup.ActiveRole = role
	return &dup
}

// WithStack returns a copy of p with the stack for role replaced.
func (p *PaneNode) WithStack(role PaneRole, stack *StackNode) *PaneNode {
	dup := *p
	dup.Panes = maps.Clone(p.Panes)
	cfg := dup.Panes[role]
	cfg.Stack = stack
	dup.Panes[role] = cfg
	return &dup
}

func (p *PaneNode) withParent(parent Key) *PaneNode {
	dup := *p
	dup.ParentID = parent
	return &dup
}

// reparent returns n with its parent key replaced.
func reparent(n Node, parent Key) Node {
	switch v := n.(type) {
	case *ScreenNode:
		return &ScreenNode{ID: v.ID, ParentID: parent, Destination: v.Destination}
	case *StackNode:
		return v.withParent(parent)
	case *TabNode:
		return v.withParent(parent)
	case *PaneNode:
		return v.withParent(parent)
	}
	return n
}

// Reparent returns a copy of n attached under parent. Children are shared.
func Reparent(n Node, parent Key) Node {
	if n == nil || n.ParentKey() == parent {
		return n
	}
	return reparent(n, parent)
}
