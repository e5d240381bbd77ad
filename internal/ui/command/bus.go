package command

import (
	"strings"

	"github.com/atomicstack/navstate/internal/logging/events"
	"github.com/atomicstack/navstate/internal/nav"
	tea "github.com/charmbracelet/bubbletea"
)

// Op is a navigation request against the store. It returns a nav.Result or
// a nav.BackResult.
type Op func(*nav.Store) any

// Request encapsulates a navigation invocation.
type Request struct {
	Op     string
	Target string
	Run    Op
}

// ResultMsg reports the outcome of a request back to the model.
type ResultMsg struct {
	Op     string
	Target string
	Result any
}

// Bus coordinates the execution of navigation requests against one store.
type Bus struct {
	store *nav.Store
}

// New initialises a command bus for store.
func New(store *nav.Store) *Bus {
	return &Bus{store: store}
}

// Execute wraps a request into a Bubble Tea command while emitting trace logs.
func (b *Bus) Execute(req Request) tea.Cmd {
	events.Command.Queue(req.Op, req.Target)
	return func() tea.Msg {
		if req.Run == nil || b.store == nil {
			events.Command.Skip(req.Op, req.Target)
			return nil
		}
		res := req.Run(b.store)
		events.Command.Result(req.Op, req.Target, nav.OutcomeName(res))
		return ResultMsg{Op: req.Op, Target: req.Target, Result: res}
	}
}

func Push(dest nav.Destination) Request {
	return Request{Op: "push", Target: dest.Route, Run: func(s *nav.Store) any { return s.Push(dest) }}
}

// PushAll pushes dests in order and stops at the first failure, reporting
// that failure or the last success.
func PushAll(dests []nav.Destination) Request {
	routes := make([]string, len(dests))
	for i, d := range dests {
		routes[i] = d.Route
	}
	return Request{Op: "push", Target: strings.Join(routes, ","), Run: func(s *nav.Store) any {
		var res nav.Result = nav.NodeNotFound{Reason: "nothing to push"}
		for _, d := range dests {
			res = s.Push(d)
			if _, ok := res.(nav.Success); !ok {
				return res
			}
		}
		return res
	}}
}

func Replace(dest nav.Destination) Request {
	return Request{Op: "replace", Target: dest.Route, Run: func(s *nav.Store) any { return s.Replace(dest) }}
}

// ClearAndPush resets the root stack before pushing dest.
func ClearAndPush(dest nav.Destination) Request {
	return Request{Op: "clear_and_push", Target: dest.Route, Run: func(s *nav.Store) any {
		return s.ClearAndPush(dest, nav.ClearOptions{})
	}}
}

func Back() Request {
	return Request{Op: "back", Run: func(s *nav.Store) any { return s.Back() }}
}

func SwitchTab(tab nav.Key, index int) Request {
	return Request{Op: "switch_tab", Target: string(tab), Run: func(s *nav.Store) any { return s.SwitchTab(tab, index) }}
}

func SwitchPane(pane nav.Key, role nav.PaneRole) Request {
	return Request{Op: "switch_pane", Target: string(role), Run: func(s *nav.Store) any { return s.SwitchPane(pane, role) }}
}

// SetRoot installs a tree built elsewhere, such as a resolved deep link.
func SetRoot(op, target string, root nav.Node) Request {
	return Request{Op: op, Target: target, Run: func(s *nav.Store) any {
		if err := s.SetRoot(root); err != nil {
			return err
		}
		return nav.Success{Root: root}
	}}
}
