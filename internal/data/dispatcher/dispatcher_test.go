package dispatcher

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/atomicstack/navstate/internal/backend"
	"github.com/atomicstack/navstate/internal/graph"
	"github.com/atomicstack/navstate/internal/nav"
)

type countingRecorder struct {
	ok, failed int
}

func (c *countingRecorder) GraphReloaded(err error) {
	if err != nil {
		c.failed++
		return
	}
	c.ok++
}

func TestHandleGraphReload(t *testing.T) {
	g, err := graph.Load(filepath.Join("..", "..", "graph", "testdata", "mail.yaml"))
	if err != nil {
		t.Fatalf("load graph: %v", err)
	}
	root := &nav.StackNode{ID: "root", Children: []nav.Node{
		&nav.ScreenNode{ID: "s", ParentID: "root", Destination: nav.To("settings")},
	}}
	store, err := nav.NewStore(root, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	rec := &countingRecorder{}
	d := New(store, nil, &nav.SequentialKeys{}, rec)

	res := d.Handle(backend.Event{Kind: backend.KindGraph, Err: errors.New("broken")})
	if res.GraphUpdated || res.Err == nil || d.Graph() != nil {
		t.Fatalf("failed reload must not apply: %#v", res)
	}

	res = d.Handle(backend.Event{Kind: backend.KindGraph, Graph: g})
	if !res.GraphUpdated || d.Graph() != g {
		t.Fatalf("expected graph applied: %#v", res)
	}
	if store.Root() != nav.Node(root) {
		t.Fatalf("reload must keep the tree")
	}
	next, ok := nav.RootOf(store.Push(nav.To("mail")))
	if !ok || nav.InnermostPane(next) == nil {
		t.Fatalf("expected the new registry to materialise the mail pane")
	}
	if rec.ok != 1 || rec.failed != 1 {
		t.Fatalf("unexpected recorder counts %+v", rec)
	}
}
