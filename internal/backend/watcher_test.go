package backend

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeGraph(t *testing.T, path, start string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("start: "+start+"\n"), 0o644); err != nil {
		t.Fatalf("write graph: %v", err)
	}
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case evt, ok := <-w.Events():
		if !ok {
			t.Fatalf("events closed")
		}
		return evt
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for reload")
	}
	return Event{}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.yaml")
	writeGraph(t, path, "home")

	w, err := NewWatcher(path, Options{Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer func() {
		w.Stop()
		w.Wait()
	}()

	writeGraph(t, path, "inbox")
	evt := nextEvent(t, w)
	if evt.Err != nil {
		t.Fatalf("reload error: %v", evt.Err)
	}
	if evt.Kind != KindGraph || evt.Graph.Start != "inbox" {
		t.Fatalf("unexpected event %#v", evt)
	}
}

func TestWatcherReportsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.yaml")
	writeGraph(t, path, "home")

	w, err := NewWatcher(path, Options{Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer func() {
		w.Stop()
		w.Wait()
	}()

	if err := os.WriteFile(path, []byte("bogus: true\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	evt := nextEvent(t, w)
	if evt.Err == nil || evt.Graph != nil {
		t.Fatalf("expected parse error, got %#v", evt)
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nav.yaml")
	writeGraph(t, path, "home")

	w, err := NewWatcher(path, Options{Debounce: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	writeGraph(t, filepath.Join(dir, "other.yaml"), "x")
	select {
	case evt := <-w.Events():
		t.Fatalf("unexpected event %#v", evt)
	case <-time.After(150 * time.Millisecond):
	}
	w.Stop()
	w.Wait()
	if _, ok := <-w.Events(); ok {
		t.Fatalf("expected events channel closed after Wait")
	}
}

func TestNewWatcherMissingDirectory(t *testing.T) {
	if _, err := NewWatcher(filepath.Join(t.TempDir(), "missing", "nav.yaml"), Options{Debounce: time.Millisecond}); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestReloadGateHoldsBackUntilInterval(t *testing.T) {
	now := time.Unix(1000, 0)
	g := newReloadGate(time.Second)
	g.now = func() time.Time { return now }

	g.note()
	if wait, n := g.admit(); wait != 0 || n != 1 {
		t.Fatalf("expected first reload admitted with one change, got %v %d", wait, n)
	}

	g.note()
	now = now.Add(300 * time.Millisecond)
	g.note()
	if wait, n := g.admit(); wait != 700*time.Millisecond || n != 0 {
		t.Fatalf("expected 700ms hold, got %v %d", wait, n)
	}

	now = now.Add(700 * time.Millisecond)
	if wait, n := g.admit(); wait != 0 || n != 2 {
		t.Fatalf("expected held changes folded into one reload, got %v %d", wait, n)
	}
}

func TestReloadGateWithoutInterval(t *testing.T) {
	g := newReloadGate(-time.Second)
	for i := 0; i < 3; i++ {
		g.note()
		if wait, n := g.admit(); wait != 0 || n != 1 {
			t.Fatalf("expected every reload admitted, got %v %d", wait, n)
		}
	}
}

func TestWatcherCoalescesWritesWithinInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.yaml")
	writeGraph(t, path, "home")

	interval := 400 * time.Millisecond
	w, err := NewWatcher(path, Options{Debounce: 5 * time.Millisecond, MinInterval: interval})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer func() {
		w.Stop()
		w.Wait()
	}()

	writeGraph(t, path, "inbox")
	first := nextEvent(t, w)
	firstAt := time.Now()
	if first.Err != nil || first.Graph.Start != "inbox" || first.Changes < 1 {
		t.Fatalf("unexpected first event %#v", first)
	}

	for _, start := range []string{"compose", "settings", "article"} {
		writeGraph(t, path, start)
		time.Sleep(30 * time.Millisecond)
	}
	second := nextEvent(t, w)
	if gap := time.Since(firstAt); gap < interval-50*time.Millisecond {
		t.Fatalf("expected reload held back for the interval, came after %v", gap)
	}
	if second.Err != nil || second.Graph.Start != "article" {
		t.Fatalf("expected one reload with the last write, got %#v", second)
	}
	if second.Changes < 3 {
		t.Fatalf("expected the burst folded into one reload, got %d changes", second.Changes)
	}
	select {
	case evt := <-w.Events():
		t.Fatalf("unexpected extra reload %#v", evt)
	case <-time.After(2 * interval):
	}
}
