package nav

// ActivePath returns the nodes from root down to the active leaf. When the
// active stack is empty the path ends at that stack.
func ActivePath(root Node) []Node {
	var path []Node
	for n := root; n != nil; {
		path = append(path, n)
		switch v := n.(type) {
		case *ScreenNode:
			return path
		case *StackNode:
			n = v.Top()
		case *TabNode:
			n = stackOrNil(v.ActiveStack())
		case *PaneNode:
			n = stackOrNil(v.ActiveStack())
		default:
			return path
		}
	}
	return path
}

// ActiveLeaf returns the visible screen, or nil when there is none.
func ActiveLeaf(root Node) *ScreenNode {
	path := ActivePath(root)
	if len(path) == 0 {
		return nil
	}
	leaf, _ := path[len(path)-1].(*ScreenNode)
	return leaf
}

// ActiveStack returns the stack that holds the active leaf, or the deepest
// active stack when that stack is empty.
func ActiveStack(root Node) *StackNode {
	path := ActivePath(root)
	for i := len(path) - 1; i >= 0; i-- {
		if s, ok := path[i].(*StackNode); ok {
			return s
		}
	}
	return nil
}

// FindByKey looks up a node anywhere in the tree.
func FindByKey(root Node, key Key) Node {
	if root == nil || key == "" {
		return nil
	}
	var found Node
	Walk(root, func(n Node) bool {
		if n.Key() == key {
			found = n
			return false
		}
		return true
	})
	return found
}

// Parent resolves n's parent key against root.
func Parent(root, n Node) Node {
	if n == nil || n.ParentKey() == "" {
		return nil
	}
	return FindByKey(root, n.ParentKey())
}

// Walk visits nodes in pre-order until fn returns false.
func Walk(root Node, fn func(Node) bool) {
	walk(root, fn)
}

func walk(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range Children(n) {
		if !walk(child, fn) {
			return false
		}
	}
	return true
}

// Children returns the direct children of n. Pane children are ordered by role.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *StackNode:
		return v.Children
	case *TabNode:
		out := make([]Node, 0, len(v.Stacks))
		for _, s := range v.Stacks {
			out = append(out, stackOrNil(s))
		}
		return out
	case *PaneNode:
		out := make([]Node, 0, len(v.Panes))
		for _, r := range v.Roles() {
			out = append(out, stackOrNil(v.Panes[r].Stack))
		}
		return out
	}
	return nil
}

// Containers returns every tab and pane node in the tree.
func Containers(root Node) []Node {
	var out []Node
	Walk(root, func(n Node) bool {
		switch n.(type) {
		case *TabNode, *PaneNode:
			out = append(out, n)
		}
		return true
	})
	return out
}

// Depth is the number of nodes on the longest root-to-leaf path.
func Depth(root Node) int {
	if root == nil {
		return 0
	}
	deepest := 0
	for _, c := range Children(root) {
		if d := Depth(c); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// nearestContainer returns the closest tab or pane above path[i], or -1.
func nearestContainer(path []Node, i int) int {
	for j := i - 1; j >= 0; j-- {
		switch path[j].(type) {
		case *TabNode, *PaneNode:
			return j
		}
	}
	return -1
}

// stackOrNil keeps typed nil pointers out of Node interfaces.
func stackOrNil(s *StackNode) Node {
	if s == nil {
		return nil
	}
	return s
}

// InnermostTab returns the deepest tab node on the active path.
func InnermostTab(root Node) *TabNode {
	path := ActivePath(root)
	for i := len(path) - 1; i >= 0; i-- {
		if t, ok := path[i].(*TabNode); ok {
			return t
		}
	}
	return nil
}

// InnermostPane returns the deepest pane node on the active path.
func InnermostPane(root Node) *PaneNode {
	path := ActivePath(root)
	for i := len(path) - 1; i >= 0; i-- {
		if p, ok := path[i].(*PaneNode); ok {
			return p
		}
	}
	return nil
}
