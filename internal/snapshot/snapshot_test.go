package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/navstate/internal/nav"
)

// sampleTree is root -> [home, tabs(main: [feed, post]) -> [pane(mail)]].
func sampleTree() nav.Node {
	inbox := &nav.StackNode{ID: "inbox", ParentID: "mail", Children: []nav.Node{
		&nav.ScreenNode{ID: "list", ParentID: "inbox", Destination: nav.To("inbox")},
	}}
	detail := &nav.StackNode{ID: "detail", ParentID: "mail", Children: []nav.Node{
		&nav.ScreenNode{ID: "msg", ParentID: "detail", Destination: nav.To("message", "id", "42")},
	}}
	mail := nav.NewPane("mail", "s-mail", "mail", "mail", map[nav.PaneRole]nav.PaneConfig{
		nav.RolePrimary:   {Stack: inbox, Adapt: nav.AdaptHide, Visible: true},
		nav.RoleSecondary: {Stack: detail, Adapt: nav.AdaptLevitate},
	}, nav.RoleSecondary, nav.PaneBackPopUntilContentChange)

	feed := &nav.StackNode{ID: "s-feed", ParentID: "main", Children: []nav.Node{
		&nav.ScreenNode{ID: "feed", ParentID: "s-feed", Destination: nav.To("feed")},
		&nav.ScreenNode{ID: "post", ParentID: "s-feed", Destination: nav.To("post", "id", "7", "ref", "share")},
	}}
	mailStack := &nav.StackNode{ID: "s-mail", ParentID: "main", Children: []nav.Node{mail}}
	main := nav.NewTab("main", "root", "main", "main", []*nav.StackNode{feed, mailStack}, 1,
		[]nav.TabMeta{{Label: "tab.feed", Icon: "F"}, {Label: "tab.mail"}})

	return &nav.StackNode{ID: "root", Children: []nav.Node{
		&nav.ScreenNode{ID: "home", ParentID: "root", Destination: nav.To("home")},
		main,
	}}
}

func TestRoundTrip(t *testing.T) {
	tree := sampleTree()
	data, err := Encode(tree)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, nav.Equal(tree, decoded), "decoded tree differs from the original")

	before := nav.FindByKey(tree, "mail").(*nav.PaneNode)
	after := nav.FindByKey(decoded, "mail").(*nav.PaneNode)
	assert.NotSame(t, before.Lifecycle(), after.Lifecycle(), "lifecycles must be regenerated")
	assert.False(t, after.Lifecycle().State().InTree)
	assert.Equal(t, "message", nav.ActiveLeaf(decoded).Destination.Route)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"garbage":       `{`,
		"future":        `{"version": 99, "root": {"kind": "stack", "key": "r"}}`,
		"no root":       `{"version": 1}`,
		"unknown kind":  `{"version": 1, "root": {"kind": "drawer", "key": "r"}}`,
		"tab index":     `{"version": 1, "root": {"kind": "tab", "key": "t", "active": 2, "children": [{"kind": "stack", "key": "s", "parent": "t"}]}}`,
		"screen parent": `{"version": 1, "root": {"kind": "stack", "key": "r", "children": [{"kind": "screen", "key": "a", "destination": {"route": "a"}}]}}`,
		"tab child":     `{"version": 1, "root": {"kind": "tab", "key": "t", "children": [{"kind": "screen", "key": "s", "parent": "t", "destination": {"route": "a"}}]}}`,
	}
	for name, doc := range cases {
		_, err := Decode([]byte(doc))
		assert.Error(t, err, name)
	}
	_, err := Decode([]byte(`{"version": 2, "root": {"kind": "stack", "key": "r"}}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestStoreInMemory(t *testing.T) {
	ctx := context.Background()
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(ctx, "work", sampleTree()))
	require.NoError(t, s.Save(ctx, "alt", &nav.StackNode{ID: "r"}))

	names, err := s.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alt", "work"}, names)

	loaded, err := s.Load(ctx, "work")
	require.NoError(t, err)
	assert.True(t, nav.Equal(sampleTree(), loaded))

	require.NoError(t, s.Delete(ctx, "work"))
	_, err = s.Load(ctx, "work")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "work"), ErrNotFound)
	assert.Error(t, s.Save(ctx, "", sampleTree()))
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "session", sampleTree()))
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()
	loaded, err := s.Load(ctx, "session")
	require.NoError(t, err)
	assert.True(t, nav.Equal(sampleTree(), loaded))
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Save(ctx, "x", sampleTree()), context.Canceled)
	_, err = s.Names(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
