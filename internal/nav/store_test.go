package nav

import (
	"sync"
	"testing"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnNavigate(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func TestStoreRejectsInvalidRoot(t *testing.T) {
	if _, err := NewStore(stack("root", screen("a", "a"), screen("a", "a")), nil); err == nil {
		t.Fatalf("expected invalid root to be rejected")
	}
}

func TestStorePushAndBackNotifyObservers(t *testing.T) {
	rec := &recorder{}
	s, err := NewStore(sampleTree(), newTestMutator(nil), rec)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	before := s.Root()
	if res := s.Push(To("detail")); res == nil {
		t.Fatalf("expected a result")
	}
	ev := rec.last()
	if ev.Op != "push" || ev.Outcome != "success" || ev.Before != before || ev.After != s.Root() {
		t.Fatalf("unexpected push event %+v", ev)
	}
	if ActiveLeaf(s.Root()).Destination.Route != "detail" {
		t.Fatalf("store root not updated")
	}

	if _, ok := s.Back().(Handled); !ok {
		t.Fatalf("expected back to be handled")
	}
	if ev := rec.last(); ev.Op != "back" || ev.Outcome != "handled" {
		t.Fatalf("unexpected back event %+v", ev)
	}
}

func TestStoreFailedOperationKeepsRoot(t *testing.T) {
	rec := &recorder{}
	s, err := NewStore(sampleTree(), newTestMutator(nil), rec)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	before := s.Root()
	if _, ok := s.SwitchTab("tabs", 9).(NodeNotFound); !ok {
		t.Fatalf("expected NodeNotFound")
	}
	if s.Root() != before {
		t.Fatalf("failed switch replaced the root")
	}
	ev := rec.last()
	if ev.Outcome != "not_found" || ev.Key != "tabs" || ev.Reason == "" {
		t.Fatalf("unexpected failure event %+v", ev)
	}
}

func TestStoreSyncsContainerLifecycles(t *testing.T) {
	main := tabs("tabs", "main", "main", 0, stack("s-home", screen("home", "home")))
	root := stack("root", screen("splash", "splash"), main)
	s, err := NewStore(root, newTestMutator(nil))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	life := FindByKey(s.Root(), "tabs").(*TabNode).Lifecycle()
	if !life.State().InTree {
		t.Fatalf("container should be attached on store creation")
	}
	destroyed := false
	life.OnDestroy(func() { destroyed = true })

	// copies made by a push must keep the lifecycle attached
	s.Push(To("more"))
	if !life.State().InTree || destroyed {
		t.Fatalf("lifecycle lost across a push")
	}
	s.Back()
	s.Back()
	if FindByKey(s.Root(), "tabs") != nil {
		t.Fatalf("expected tab to be removed by back")
	}
	if !destroyed || life.State().InTree {
		t.Fatalf("removed container should be destroyed")
	}
}

func TestStoreSetRoot(t *testing.T) {
	rec := &recorder{}
	s, err := NewStore(sampleTree(), nil, rec)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.SetRoot(&StackNode{ID: "r", ParentID: "x"}); err == nil {
		t.Fatalf("expected invalid root to be rejected")
	}
	next := stack("fresh", screen("home", "home"))
	if err := s.SetRoot(next); err != nil {
		t.Fatalf("set root: %v", err)
	}
	if s.Root() != Node(next) || rec.last().Op != "set_root" {
		t.Fatalf("root not swapped")
	}
}

func TestStoreCanGoBackFollowsExpandedMode(t *testing.T) {
	root := stack("root", panes("mail", "mail", "mail", RoleSecondary, PaneBackPopLatest, map[PaneRole]*StackNode{
		RolePrimary:   stack("list", screen("inbox", "inbox")),
		RoleSecondary: stack("detail", screen("msg", "message")),
	}))
	s, err := NewStore(root, newTestMutator(nil))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if !s.CanGoBack() {
		t.Fatalf("compact mode should step to the primary pane")
	}
	s.SetExpanded(true)
	if s.CanGoBack() {
		t.Fatalf("expanded mode should delegate when the pane is the only entry")
	}
}

func TestStoreConcurrentReadsSeeWholeTrees(t *testing.T) {
	s, err := NewStore(stack("root", screen("home", "home")), newTestMutator(nil))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 200 {
			s.Push(To("x"))
		}
	}()
	for range 200 {
		if err := Validate(s.Root()); err != nil {
			t.Errorf("reader saw a broken tree: %v", err)
			break
		}
	}
	wg.Wait()
	if n := len(s.Root().(*StackNode).Children); n != 201 {
		t.Fatalf("expected 201 entries, got %d", n)
	}
}

func TestStoreSetMutatorKeepsTree(t *testing.T) {
	s, err := NewStore(stack("root", screen("home", "home")), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	before := s.Root()
	s.SetMutator(NewMutator(nil, nil, &SequentialKeys{Prefix: "r"}))
	s.SetMutator(nil)
	if s.Root() != before {
		t.Fatalf("swapping the mutator must not touch the tree")
	}
	leaf := ActiveLeaf(mustSuccess(t, s.Push(To("next"))))
	if leaf.ID != "r-1" {
		t.Fatalf("expected key from the new mutator, got %q", leaf.ID)
	}
}
