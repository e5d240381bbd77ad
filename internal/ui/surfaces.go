package ui

import (
	"github.com/atomicstack/navstate/internal/logging/events"
	"github.com/atomicstack/navstate/internal/nav"
)

type surface struct {
	key  nav.Key
	kind nav.Kind
}

// surfaces tracks which container lifecycles are currently on screen. Only
// containers on the active path are rendered, so those are the attached ones.
type surfaces struct {
	attached map[*nav.Lifecycle]surface
	// hooked holds the destroy count seen when the trace hook was added;
	// a higher count means the hook fired and must be added again.
	hooked map[*nav.Lifecycle]int
}

func newSurfaces() *surfaces {
	return &surfaces{
		attached: make(map[*nav.Lifecycle]surface),
		hooked:   make(map[*nav.Lifecycle]int),
	}
}

func (s *surfaces) sync(root nav.Node) {
	visible := make(map[*nav.Lifecycle]surface)
	if root != nil {
		for _, n := range nav.ActivePath(root) {
			if l := nav.LifecycleOf(n); l != nil {
				visible[l] = surface{key: n.Key(), kind: n.Kind()}
			}
		}
	}
	for l, sf := range s.attached {
		if _, ok := visible[l]; ok {
			continue
		}
		delete(s.attached, l)
		events.Lifecycle.Surface(string(sf.key), sf.kind.String(), false)
		l.DetachFromSurface()
	}
	for l, sf := range visible {
		if _, ok := s.attached[l]; ok {
			continue
		}
		s.attached[l] = sf
		destroyed := l.State().Destroyed
		if seen, ok := s.hooked[l]; !ok || destroyed > seen {
			s.hooked[l] = destroyed
			l.OnDestroy(func() {
				events.Lifecycle.Destroy(string(sf.key), sf.kind.String())
			})
		}
		events.Lifecycle.Surface(string(sf.key), sf.kind.String(), true)
		l.AttachToSurface()
	}
	for l, seen := range s.hooked {
		if _, ok := s.attached[l]; !ok && l.State().Destroyed > seen {
			delete(s.hooked, l)
		}
	}
}

func (s *surfaces) count() int {
	return len(s.attached)
}
