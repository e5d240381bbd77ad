package nav

type backAction int

const (
	backCannot backAction = iota
	backDelegate
	backPop
	backRemove
	backPaneStep
)

// backPlan is the decision reached by the back walk, before any tree is built.
type backPlan struct {
	action backAction
	stack  *StackNode // backPop: stack to pop; backRemove: stack losing child
	child  Key        // backRemove
	pane   *PaneNode  // backPaneStep: replacement pane
}

// PopWithContainerBehavior resolves a back request across stack, tab and pane
// boundaries. expanded is the host's current multi-pane mode.
func (m *Mutator) PopWithContainerBehavior(root Node, expanded bool) BackResult {
	plan := planBack(root, expanded)
	switch plan.action {
	case backPop:
		return Handled{Root: replaceNode(root, popTop(plan.stack))}
	case backRemove:
		return Handled{Root: replaceNode(root, removeChild(plan.stack, plan.child))}
	case backPaneStep:
		return Handled{Root: replaceNode(root, plan.pane)}
	case backDelegate:
		return DelegateToSystem{}
	default:
		return CannotHandle{}
	}
}

// CanHandleBackNavigation reports whether back would be absorbed by the tree.
// It runs the same walk as PopWithContainerBehavior without building a tree.
func (m *Mutator) CanHandleBackNavigation(root Node, expanded bool) bool {
	switch planBack(root, expanded).action {
	case backPop, backRemove, backPaneStep:
		return true
	}
	return false
}

func planBack(root Node, expanded bool) backPlan {
	s := ActiveStack(root)
	if s == nil {
		return backPlan{action: backCannot}
	}
	if len(s.Children) > 1 {
		return backPlan{action: backPop, stack: s}
	}
	// Each step moves one level up, so the walk is bounded by depth. seen
	// guards against parent keys that loop.
	seen := make(map[Key]struct{})
	var target Node = s
	for target != nil {
		if _, dup := seen[target.Key()]; dup {
			return backPlan{action: backCannot}
		}
		seen[target.Key()] = struct{}{}
		if target.ParentKey() == "" {
			return backPlan{action: backDelegate}
		}
		switch p := FindByKey(root, target.ParentKey()).(type) {
		case *StackNode:
			if len(p.Children) > 1 {
				return backPlan{action: backRemove, stack: p, child: target.Key()}
			}
			target = p
		case *TabNode:
			// back never switches tabs; the whole tab node goes
			target = p
		case *PaneNode:
			if !expanded {
				if next, ok := paneStep(p); ok {
					return backPlan{action: backPaneStep, pane: next}
				}
			}
			target = p
		default:
			return backPlan{action: backCannot}
		}
	}
	return backPlan{action: backCannot}
}

// paneStep applies the pane's back policy in compact mode once the focused
// pane has nothing left to pop.
func paneStep(p *PaneNode) (*PaneNode, bool) {
	if p.ActiveRole == RolePrimary {
		return nil, false
	}
	switch p.Back {
	case PaneBackPopUntilScaffoldChange:
		return nil, false
	case PaneBackPopUntilContentChange:
		roles := p.Roles()
		for i := len(roles) - 1; i >= 0; i-- {
			if roles[i] != p.ActiveRole {
				continue
			}
			for j := i - 1; j >= 0; j-- {
				if s := p.Panes[roles[j]].Stack; s != nil && len(s.Children) > 0 {
					return p.WithActiveRole(roles[j]), true
				}
			}
		}
		return nil, false
	default:
		if s := p.Panes[RolePrimary].Stack; s != nil && len(s.Children) > 0 {
			return p.WithActiveRole(RolePrimary), true
		}
		return nil, false
	}
}
