package backend

import "time"

// reloadGate spaces graph reloads at least interval apart. Changes noted
// while a reload is held back are folded into the next admitted one, so the
// watcher never sleeps and never reloads more often than the interval.
type reloadGate struct {
	interval time.Duration
	now      func() time.Time

	last    time.Time
	pending int
}

func newReloadGate(interval time.Duration) *reloadGate {
	if interval < 0 {
		interval = 0
	}
	return &reloadGate{interval: interval, now: time.Now}
}

// note records a file change that still needs a reload.
func (g *reloadGate) note() {
	g.pending++
}

// admit reports how long the caller must hold the reload back. A zero wait
// admits it and returns the number of changes it covers.
func (g *reloadGate) admit() (time.Duration, int) {
	now := g.now()
	if !g.last.IsZero() && g.interval > 0 {
		if wait := g.last.Add(g.interval).Sub(now); wait > 0 {
			return wait, 0
		}
	}
	g.last = now
	n := g.pending
	g.pending = 0
	return 0, n
}
