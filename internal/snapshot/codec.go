// Package snapshot serialises navigation trees and keeps named snapshots in
// an embedded badger database.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atomicstack/navstate/internal/nav"
)

// Version is the current envelope version.
const Version = 1

// ErrUnsupportedVersion is returned for envelopes from a newer format.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

type envelope struct {
	Version int   `json:"version"`
	Root    *node `json:"root"`
}

// node is the persisted form of every variant. Only the fields of its kind
// are set; runtime lifecycle state is never written.
type node struct {
	Kind   string           `json:"kind"`
	Key    nav.Key          `json:"key"`
	Parent nav.Key          `json:"parent,omitempty"`
	Dest   *nav.Destination `json:"destination,omitempty"`

	Children []*node `json:"children,omitempty"`

	Route  string        `json:"route,omitempty"`
	Scope  nav.ScopeKey  `json:"scope,omitempty"`
	Active int           `json:"active,omitempty"`
	Tabs   []nav.TabMeta `json:"tabs,omitempty"`

	Panes      []pane               `json:"panes,omitempty"`
	ActiveRole nav.PaneRole         `json:"activeRole,omitempty"`
	Back       nav.PaneBackBehavior `json:"back,omitempty"`
}

type pane struct {
	Role    nav.PaneRole      `json:"role"`
	Adapt   nav.AdaptStrategy `json:"adapt,omitempty"`
	Visible bool              `json:"visible"`
	Stack   *node             `json:"stack"`
}

// Encode writes root as a versioned JSON document.
func Encode(root nav.Node) ([]byte, error) {
	if root == nil {
		return nil, errors.New("encode: nil root")
	}
	n, err := fromNode(root)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Version: Version, Root: n})
}

// Decode rebuilds and validates a tree written by Encode. Containers get
// fresh lifecycles.
func Decode(data []byte) (nav.Node, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if env.Version < 1 || env.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	if env.Root == nil {
		return nil, errors.New("decode snapshot: missing root")
	}
	root, err := toNode(env.Root, 0)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := nav.Validate(root); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return root, nil
}

func fromNode(n nav.Node) (*node, error) {
	out := &node{Kind: n.Kind().String(), Key: n.Key(), Parent: n.ParentKey()}
	switch v := n.(type) {
	case *nav.ScreenNode:
		dest := v.Destination
		out.Dest = &dest
	case *nav.StackNode:
		for _, c := range v.Children {
			child, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, child)
		}
	case *nav.TabNode:
		out.Route, out.Scope, out.Active, out.Tabs = v.Route, v.Scope, v.ActiveIndex, v.Tabs
		for _, s := range v.Stacks {
			if s == nil {
				return nil, fmt.Errorf("encode: tab %q has a nil stack", v.ID)
			}
			child, err := fromNode(s)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, child)
		}
	case *nav.PaneNode:
		out.Route, out.Scope, out.ActiveRole, out.Back = v.Route, v.Scope, v.ActiveRole, v.Back
		for _, role := range v.Roles() {
			cfg := v.Panes[role]
			if cfg.Stack == nil {
				return nil, fmt.Errorf("encode: pane %q role %s has no stack", v.ID, role)
			}
			stack, err := fromNode(cfg.Stack)
			if err != nil {
				return nil, err
			}
			out.Panes = append(out.Panes, pane{Role: role, Adapt: cfg.Adapt, Visible: cfg.Visible, Stack: stack})
		}
	default:
		return nil, fmt.Errorf("encode: unknown node type %T", n)
	}
	return out, nil
}

// maxDepth bounds recursion on hostile input.
const maxDepth = 256

func toNode(n *node, depth int) (nav.Node, error) {
	if n == nil {
		return nil, errors.New("null node")
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("tree deeper than %d", maxDepth)
	}
	switch n.Kind {
	case nav.KindScreen.String():
		if n.Dest == nil {
			return nil, fmt.Errorf("screen %q has no destination", n.Key)
		}
		return &nav.ScreenNode{ID: n.Key, ParentID: n.Parent, Destination: *n.Dest}, nil
	case nav.KindStack.String():
		return toStack(n, depth)
	case nav.KindTab.String():
		stacks := make([]*nav.StackNode, 0, len(n.Children))
		for _, c := range n.Children {
			s, err := toStack(c, depth+1)
			if err != nil {
				return nil, err
			}
			stacks = append(stacks, s)
		}
		return nav.NewTab(n.Key, n.Parent, n.Route, n.Scope, stacks, n.Active, n.Tabs), nil
	case nav.KindPane.String():
		panes := make(map[nav.PaneRole]nav.PaneConfig, len(n.Panes))
		for _, p := range n.Panes {
			if _, dup := panes[p.Role]; dup {
				return nil, fmt.Errorf("pane %q repeats role %s", n.Key, p.Role)
			}
			s, err := toStack(p.Stack, depth+1)
			if err != nil {
				return nil, err
			}
			panes[p.Role] = nav.PaneConfig{Stack: s, Adapt: p.Adapt, Visible: p.Visible}
		}
		return nav.NewPane(n.Key, n.Parent, n.Route, n.Scope, panes, n.ActiveRole, n.Back), nil
	}
	return nil, fmt.Errorf("node %q has unknown kind %q", n.Key, n.Kind)
}

func toStack(n *node, depth int) (*nav.StackNode, error) {
	if n == nil {
		return nil, errors.New("null stack")
	}
	if n.Kind != nav.KindStack.String() {
		return nil, fmt.Errorf("node %q is a %s where a stack is required", n.Key, n.Kind)
	}
	s := &nav.StackNode{ID: n.Key, ParentID: n.Parent}
	for _, c := range n.Children {
		child, err := toNode(c, depth+1)
		if err != nil {
			return nil, err
		}
		s.Children = append(s.Children, child)
	}
	return s, nil
}
