// Package outline renders a navigation tree as indented text lines.
package outline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/atomicstack/navstate/internal/nav"
)

// Line is one rendered node.
type Line struct {
	Key    nav.Key
	Kind   nav.Kind
	Depth  int
	Prefix string
	Text   string
	// Active marks nodes on the path to the visible screen.
	Active bool
}

// String joins the tree glyphs and the node text.
func (l Line) String() string {
	return l.Prefix + l.Text
}

// Options tune the node descriptions.
type Options struct {
	// Label translates tab labels; nil keeps them as written.
	Label func(string) string
	// Keys appends node keys to every line.
	Keys bool
}

// Lines walks root depth-first, children in order.
func Lines(root nav.Node, opts Options) []Line {
	if root == nil {
		return nil
	}
	active := make(map[nav.Key]bool)
	for _, n := range nav.ActivePath(root) {
		active[n.Key()] = true
	}
	var out []Line
	var walk func(n nav.Node, depth int, lead string, last bool)
	walk = func(n nav.Node, depth int, lead string, last bool) {
		prefix := ""
		next := ""
		if depth > 0 {
			prefix = lead + "├─ "
			next = lead + "│  "
			if last {
				prefix = lead + "└─ "
				next = lead + "   "
			}
		}
		out = append(out, Line{
			Key:    n.Key(),
			Kind:   n.Kind(),
			Depth:  depth,
			Prefix: prefix,
			Text:   describe(n, opts),
			Active: active[n.Key()],
		})
		children := slices.DeleteFunc(slices.Clone(nav.Children(n)), func(c nav.Node) bool { return c == nil })
		for i, c := range children {
			walk(c, depth+1, next, i == len(children)-1)
		}
	}
	walk(root, 0, "", true)
	return out
}

// Render is Lines formatted as plain strings.
func Render(root nav.Node, opts Options) []string {
	lines := Lines(root, opts)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}

func describe(n nav.Node, opts Options) string {
	var text string
	switch v := n.(type) {
	case *nav.ScreenNode:
		text = destination(v.Destination)
	case *nav.StackNode:
		text = fmt.Sprintf("stack (%d)", len(v.Children))
	case *nav.TabNode:
		labels := make([]string, len(v.Stacks))
		for i := range v.Stacks {
			label := fmt.Sprintf("#%d", i)
			if i < len(v.Tabs) && v.Tabs[i].Label != "" {
				label = v.Tabs[i].Label
				if opts.Label != nil {
					label = opts.Label(label)
				}
			}
			if i == v.ActiveIndex {
				label = "*" + label
			}
			labels[i] = label
		}
		text = fmt.Sprintf("tabs %s [%s]", v.Route, strings.Join(labels, " | "))
	case *nav.PaneNode:
		roles := v.Roles()
		parts := make([]string, 0, len(roles))
		for _, r := range roles {
			part := string(r)
			if r == v.ActiveRole {
				part = "*" + part
			}
			if !v.Panes[r].Visible {
				part += " (hidden)"
			}
			parts = append(parts, part)
		}
		text = fmt.Sprintf("panes %s [%s]", v.Route, strings.Join(parts, " | "))
	}
	if opts.Keys {
		text += " {" + string(n.Key()) + "}"
	}
	return text
}

func destination(d nav.Destination) string {
	if len(d.Args) == 0 {
		return d.Route
	}
	keys := make([]string, 0, len(d.Args))
	for k := range d.Args {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	args := make([]string, len(keys))
	for i, k := range keys {
		args[i] = k + "=" + d.Args[k]
	}
	return d.Route + " " + strings.Join(args, " ")
}

// Breadcrumb lists the screens and containers on the active path, outermost
// first, skipping plain stacks.
func Breadcrumb(root nav.Node, label func(string) string) []string {
	var out []string
	for _, n := range nav.ActivePath(root) {
		switch v := n.(type) {
		case *nav.ScreenNode:
			out = append(out, v.Destination.Route)
		case *nav.TabNode:
			seg := v.Route
			if v.ActiveIndex < len(v.Tabs) && v.Tabs[v.ActiveIndex].Label != "" {
				l := v.Tabs[v.ActiveIndex].Label
				if label != nil {
					l = label(l)
				}
				seg += ":" + l
			}
			out = append(out, seg)
		case *nav.PaneNode:
			out = append(out, v.Route+":"+string(v.ActiveRole))
		}
	}
	return out
}
