package nav

import "fmt"

// Result is the outcome of a tree operation: Success or NodeNotFound.
type Result interface {
	result()
}

// Success carries the new root.
type Success struct {
	Root Node
}

// NodeNotFound reports that the operation's target does not exist (or, for
// index-based operations, that nothing lives at the requested position).
type NodeNotFound struct {
	Key    Key
	Reason string
}

func (Success) result()      {}
func (NodeNotFound) result() {}

func (n NodeNotFound) String() string {
	if n.Reason == "" {
		return fmt.Sprintf("node %q not found", n.Key)
	}
	return fmt.Sprintf("node %q not found: %s", n.Key, n.Reason)
}

func notFound(key Key, format string, args ...any) NodeNotFound {
	return NodeNotFound{Key: key, Reason: fmt.Sprintf(format, args...)}
}

// RootOf returns the new root for a Success and nil otherwise.
func RootOf(r Result) (Node, bool) {
	if s, ok := r.(Success); ok {
		return s.Root, true
	}
	return nil, false
}

// BackResult is the outcome of back navigation.
type BackResult interface {
	backResult()
}

// Handled carries the tree after back was absorbed.
type Handled struct {
	Root Node
}

// CannotHandle means the tree holds nothing back can act on.
type CannotHandle struct{}

// DelegateToSystem tells the host to apply its own default back action.
type DelegateToSystem struct{}

func (Handled) backResult()          {}
func (CannotHandle) backResult()     {}
func (DelegateToSystem) backResult() {}

// OutcomeName labels results for logs and metrics.
func OutcomeName(r any) string {
	switch r.(type) {
	case Success:
		return "success"
	case NodeNotFound:
		return "not_found"
	case Handled:
		return "handled"
	case CannotHandle:
		return "cannot_handle"
	case DelegateToSystem:
		return "delegate_to_system"
	case error:
		return "error"
	default:
		return "unknown"
	}
}
