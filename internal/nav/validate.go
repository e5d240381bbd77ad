package nav

import (
	"errors"
	"fmt"
	"maps"
)

// ErrInvalidTree marks structural problems found by Validate.
var ErrInvalidTree = errors.New("invalid navigation tree")

// Validate checks the structural invariants of a complete tree: unique keys,
// consistent parent keys, non-empty tabs with an in-range active index and
// panes whose active role exists.
func Validate(root Node) error {
	if root == nil {
		return fmt.Errorf("%w: nil root", ErrInvalidTree)
	}
	if root.ParentKey() != "" {
		return fmt.Errorf("%w: root %q has parent key %q", ErrInvalidTree, root.Key(), root.ParentKey())
	}
	seen := make(map[Key]struct{})
	return validate(root, "", seen)
}

func validate(n Node, parent Key, seen map[Key]struct{}) error {
	if n == nil {
		return fmt.Errorf("%w: nil child under %q", ErrInvalidTree, parent)
	}
	key := n.Key()
	if key == "" {
		return fmt.Errorf("%w: empty key under %q", ErrInvalidTree, parent)
	}
	if _, dup := seen[key]; dup {
		return fmt.Errorf("%w: duplicate key %q", ErrInvalidTree, key)
	}
	seen[key] = struct{}{}
	if n.ParentKey() != parent {
		return fmt.Errorf("%w: %s %q has parent key %q, want %q", ErrInvalidTree, n.Kind(), key, n.ParentKey(), parent)
	}
	switch v := n.(type) {
	case *ScreenNode:
		if v.Destination.Route == "" {
			return fmt.Errorf("%w: screen %q has no route", ErrInvalidTree, key)
		}
	case *StackNode:
		for _, c := range v.Children {
			if err := validate(c, key, seen); err != nil {
				return err
			}
		}
	case *TabNode:
		if len(v.Stacks) == 0 {
			return fmt.Errorf("%w: tab %q has no stacks", ErrInvalidTree, key)
		}
		if v.ActiveIndex < 0 || v.ActiveIndex >= len(v.Stacks) {
			return fmt.Errorf("%w: tab %q active index %d out of range [0,%d)", ErrInvalidTree, key, v.ActiveIndex, len(v.Stacks))
		}
		if len(v.Tabs) != 0 && len(v.Tabs) != len(v.Stacks) {
			return fmt.Errorf("%w: tab %q has %d labels for %d stacks", ErrInvalidTree, key, len(v.Tabs), len(v.Stacks))
		}
		for _, s := range v.Stacks {
			if s == nil {
				return fmt.Errorf("%w: tab %q has a nil stack", ErrInvalidTree, key)
			}
			if err := validate(s, key, seen); err != nil {
				return err
			}
		}
	case *PaneNode:
		if _, ok := v.Panes[RolePrimary]; !ok {
			return fmt.Errorf("%w: pane %q has no primary role", ErrInvalidTree, key)
		}
		if _, ok := v.Panes[v.ActiveRole]; !ok {
			return fmt.Errorf("%w: pane %q active role %q not configured", ErrInvalidTree, key, v.ActiveRole)
		}
		if !v.Back.Valid() {
			return fmt.Errorf("%w: pane %q has unknown back behavior %q", ErrInvalidTree, key, v.Back)
		}
		for role := range v.Panes {
			if !role.Valid() {
				return fmt.Errorf("%w: pane %q has unknown role %q", ErrInvalidTree, key, role)
			}
		}
		for _, role := range v.Roles() {
			s := v.Panes[role].Stack
			if s == nil {
				return fmt.Errorf("%w: pane %q role %s has no stack", ErrInvalidTree, key, role)
			}
			if err := validate(s, key, seen); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unknown node type %T", ErrInvalidTree, n)
	}
	return nil
}

// Equal compares two trees structurally, ignoring runtime lifecycle state.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.Key() != b.Key() || a.ParentKey() != b.ParentKey() {
		return false
	}
	switch x := a.(type) {
	case *ScreenNode:
		y := b.(*ScreenNode)
		return x.Destination.Route == y.Destination.Route && maps.Equal(x.Destination.Args, y.Destination.Args)
	case *StackNode:
		y := b.(*StackNode)
		return equalNodes(x.Children, y.Children)
	case *TabNode:
		y := b.(*TabNode)
		if x.Route != y.Route || x.Scope != y.Scope || x.ActiveIndex != y.ActiveIndex || len(x.Stacks) != len(y.Stacks) || len(x.Tabs) != len(y.Tabs) {
			return false
		}
		for i := range x.Tabs {
			if x.Tabs[i] != y.Tabs[i] {
				return false
			}
		}
		for i := range x.Stacks {
			if !Equal(stackOrNil(x.Stacks[i]), stackOrNil(y.Stacks[i])) {
				return false
			}
		}
		return true
	case *PaneNode:
		y := b.(*PaneNode)
		if x.Route != y.Route || x.Scope != y.Scope || x.ActiveRole != y.ActiveRole || x.Back != y.Back || len(x.Panes) != len(y.Panes) {
			return false
		}
		for role, cx := range x.Panes {
			cy, ok := y.Panes[role]
			if !ok || cx.Adapt != cy.Adapt || cx.Visible != cy.Visible || !Equal(stackOrNil(cx.Stack), stackOrNil(cy.Stack)) {
				return false
			}
		}
		return true
	}
	return false
}

func equalNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
