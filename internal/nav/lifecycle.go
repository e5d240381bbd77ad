package nav

import "sync"

// LifecycleState is a snapshot of the two attachment axes.
type LifecycleState struct {
	InTree    bool
	OnSurface bool
	Destroyed int // number of completed destroy cycles
}

// Lifecycle tracks whether a container is part of the logical tree and
// whether a rendering surface currently shows it. Destroy callbacks fire
// once, when the node is off both axes, and are then cleared.
type Lifecycle struct {
	mu        sync.Mutex
	inTree    bool
	onSurface bool
	destroyed int
	callbacks []func()
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// AttachToTree is idempotent.
func (l *Lifecycle) AttachToTree() {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.inTree = true
	l.mu.Unlock()
}

// AttachToSurface marks the node displayed, attaching it to the tree first
// if needed.
func (l *Lifecycle) AttachToSurface() {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.inTree = true
	l.onSurface = true
	l.mu.Unlock()
}

func (l *Lifecycle) DetachFromSurface() {
	if l == nil {
		return
	}
	l.mu.Lock()
	if !l.onSurface {
		l.mu.Unlock()
		return
	}
	l.onSurface = false
	fire := l.takeIfDetached()
	l.mu.Unlock()
	run(fire)
}

func (l *Lifecycle) DetachFromTree() {
	if l == nil {
		return
	}
	l.mu.Lock()
	if !l.inTree {
		l.mu.Unlock()
		return
	}
	l.inTree = false
	fire := l.takeIfDetached()
	l.mu.Unlock()
	run(fire)
}

// OnDestroy registers fn to run at the next destroy.
func (l *Lifecycle) OnDestroy(fn func()) {
	if l == nil || fn == nil {
		return
	}
	l.mu.Lock()
	l.callbacks = append(l.callbacks, fn)
	l.mu.Unlock()
}

func (l *Lifecycle) State() LifecycleState {
	if l == nil {
		return LifecycleState{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return LifecycleState{InTree: l.inTree, OnSurface: l.onSurface, Destroyed: l.destroyed}
}

// takeIfDetached must be called with mu held.
func (l *Lifecycle) takeIfDetached() []func() {
	if l.inTree || l.onSurface {
		return nil
	}
	l.destroyed++
	fire := l.callbacks
	l.callbacks = nil
	return fire
}

func run(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// LifecycleOf returns the lifecycle of a tab or pane node, nil otherwise.
func LifecycleOf(n Node) *Lifecycle {
	switch v := n.(type) {
	case *TabNode:
		return v.Lifecycle()
	case *PaneNode:
		return v.Lifecycle()
	}
	return nil
}
