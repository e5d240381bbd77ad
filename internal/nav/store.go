package nav

import (
	"sync"

	"go.uber.org/atomic"
)

// Event describes one store operation for observers.
type Event struct {
	Op      string
	Outcome string
	Before  Node
	After   Node
	// Key and Reason are set for NodeNotFound outcomes.
	Key    Key
	Reason string
}

// Observer receives every store operation after it has been applied.
type Observer interface {
	OnNavigate(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnNavigate(ev Event) { f(ev) }

// Store owns the canonical tree. Reads are lock-free and always see a whole
// tree; writes are expected from a single logical owner and are serialised.
type Store struct {
	mu        sync.Mutex
	root      *atomic.Pointer[rootHolder]
	expanded  *atomic.Bool
	mutator   *Mutator
	observers []Observer
}

type rootHolder struct {
	node Node
}

// NewStore validates root and takes ownership of it.
func NewStore(root Node, m *Mutator, observers ...Observer) (*Store, error) {
	if err := Validate(root); err != nil {
		return nil, err
	}
	if m == nil {
		m = NewMutator(nil, nil, nil)
	}
	s := &Store{
		root:      atomic.NewPointer(&rootHolder{node: root}),
		expanded:  atomic.NewBool(false),
		mutator:   m,
		observers: observers,
	}
	syncLifecycles(nil, root)
	return s, nil
}

// Root returns the current tree.
func (s *Store) Root() Node {
	return s.root.Load().node
}

func (s *Store) Mutator() *Mutator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutator
}

// SetMutator swaps the mutator used by later operations, for example after
// the scope and container configuration was reloaded. The tree is kept.
func (s *Store) SetMutator(m *Mutator) {
	if m == nil {
		return
	}
	s.mu.Lock()
	s.mutator = m
	s.mu.Unlock()
}

// Expanded reports the multi-pane mode last supplied by the host.
func (s *Store) Expanded() bool { return s.expanded.Load() }

func (s *Store) SetExpanded(expanded bool) { s.expanded.Store(expanded) }

// AddObserver registers o for subsequent operations.
func (s *Store) AddObserver(o Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

func (s *Store) Push(dest Destination) Result {
	return s.apply("push", func(root Node) Result { return s.mutator.Push(root, dest) })
}

func (s *Store) Pop() Result {
	return s.apply("pop", func(root Node) Result { return s.mutator.Pop(root) })
}

func (s *Store) Replace(dest Destination) Result {
	return s.apply("replace", func(root Node) Result { return s.mutator.Replace(root, dest) })
}

func (s *Store) PopTo(anchor Key, inclusive bool) Result {
	return s.apply("pop_to", func(root Node) Result { return s.mutator.PopTo(root, anchor, inclusive) })
}

func (s *Store) ClearAndPush(dest Destination, opts ClearOptions) Result {
	return s.apply("clear_and_push", func(root Node) Result { return s.mutator.ClearAndPush(root, dest, opts) })
}

func (s *Store) SwitchTab(tabKey Key, index int) Result {
	return s.apply("switch_tab", func(root Node) Result { return s.mutator.SwitchActiveTab(root, tabKey, index) })
}

func (s *Store) SwitchPane(paneKey Key, role PaneRole) Result {
	return s.apply("switch_pane", func(root Node) Result { return s.mutator.SwitchPane(root, paneKey, role) })
}

// Back runs the cascading back resolver against the current tree.
func (s *Store) Back() BackResult {
	s.mu.Lock()
	before := s.Root()
	res := s.mutator.PopWithContainerBehavior(before, s.Expanded())
	after := before
	if h, ok := res.(Handled); ok {
		after = h.Root
		s.root.Store(&rootHolder{node: after})
	}
	observers := s.observers
	s.mu.Unlock()

	syncLifecycles(before, after)
	notify(observers, Event{Op: "back", Outcome: OutcomeName(res), Before: before, After: after})
	return res
}

// CanGoBack reports whether Back would be absorbed by the tree.
func (s *Store) CanGoBack() bool {
	return s.Mutator().CanHandleBackNavigation(s.Root(), s.Expanded())
}

// SetRoot validates root and then swaps it in atomically. Used for restored
// snapshots and deep links built off the critical path.
func (s *Store) SetRoot(root Node) error {
	if err := Validate(root); err != nil {
		return err
	}
	s.mu.Lock()
	before := s.Root()
	s.root.Store(&rootHolder{node: root})
	observers := s.observers
	s.mu.Unlock()

	syncLifecycles(before, root)
	notify(observers, Event{Op: "set_root", Outcome: OutcomeName(Success{}), Before: before, After: root})
	return nil
}

func (s *Store) apply(op string, fn func(Node) Result) Result {
	s.mu.Lock()
	before := s.Root()
	res := fn(before)
	ev := Event{Op: op, Outcome: OutcomeName(res), Before: before, After: before}
	switch r := res.(type) {
	case Success:
		ev.After = r.Root
		s.root.Store(&rootHolder{node: r.Root})
	case NodeNotFound:
		ev.Key = r.Key
		ev.Reason = r.Reason
	}
	observers := s.observers
	s.mu.Unlock()

	syncLifecycles(ev.Before, ev.After)
	notify(observers, ev)
	return res
}

func notify(observers []Observer, ev Event) {
	for _, o := range observers {
		o.OnNavigate(ev)
	}
}

// syncLifecycles attaches containers that entered the tree and detaches the
// ones that left. Identity is the lifecycle itself, so copies of a node keep
// their state while restored nodes start fresh.
func syncLifecycles(before, after Node) {
	if before == after && before != nil {
		return
	}
	prev := lifecycles(before)
	next := lifecycles(after)
	for l := range prev {
		if _, ok := next[l]; !ok {
			l.DetachFromTree()
		}
	}
	for l := range next {
		if _, ok := prev[l]; !ok {
			l.AttachToTree()
		}
	}
}

func lifecycles(root Node) map[*Lifecycle]struct{} {
	out := make(map[*Lifecycle]struct{})
	if root == nil {
		return out
	}
	for _, c := range Containers(root) {
		if l := LifecycleOf(c); l != nil {
			out[l] = struct{}{}
		}
	}
	return out
}
