package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/navstate/internal/nav"
	"github.com/atomicstack/navstate/internal/snapshot"
)

var mailGraph = filepath.Join("..", "..", "internal", "graph", "testdata", "mail.yaml")

// execute runs navctl with args and returns what it wrote.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func rowsByRoute(output string) map[string][]string {
	rows := make(map[string][]string)
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 3 {
			rows[fields[1]] = fields
		}
	}
	return rows
}

func TestRoutes(t *testing.T) {
	out, err := execute(t, "routes", mailGraph)
	require.NoError(t, err)
	rows := rowsByRoute(out)

	assert.Equal(t, []string{"PATTERN", "ROUTE", "SCOPE"}, rows["ROUTE"])
	assert.Equal(t, []string{"/mail/message/{id}", "message", "mail"}, rows["message"])
	assert.Equal(t, []string{"/mail", "mail", "container"}, rows["mail"])
	assert.Equal(t, []string{"/articles/{id}", "article", "main"}, rows["article"])
	assert.Equal(t, []string{"/settings", "settings", "-"}, rows["settings"])
	assert.Equal(t, []string{"-", "inbox", "mail"}, rows["inbox"])
	assert.Equal(t, []string{"-", "main", "container"}, rows["main"])

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[1], "/home "), "patterns come first in file order, got %q", lines[1])
	for _, l := range lines {
		assert.Equal(t, strings.TrimRight(l, " "), l)
	}
}

func TestRoutesMissingGraph(t *testing.T) {
	_, err := execute(t, "routes", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read graph")
}

func TestResolveReplace(t *testing.T) {
	out, err := execute(t, "resolve", "--graph", mailGraph, "/mail/message/5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Equal(t, "stack (1)", lines[0])
	assert.Equal(t, "└─ tabs main [Home | *Mail | Search]", lines[1])
	assert.Contains(t, out, "panes mail [primary | *secondary | extra (hidden)]")
	assert.Contains(t, out, "└─ message id=5\n")
	assert.Equal(t, "→ main:Mail → mail:secondary → message", lines[len(lines)-1])
	assert.NotContains(t, out, "{n-")
}

func TestResolveLocaleAndKeys(t *testing.T) {
	out, err := execute(t, "resolve", "-g", mailGraph, "--locale", "de", "--keys", "/mail/message/5")
	require.NoError(t, err)
	assert.Contains(t, out, "tabs main [Start | *Post | Suche] {n-")
	assert.Contains(t, out, "→ main:Post → mail:secondary → message")
}

func TestResolveGraft(t *testing.T) {
	out, err := execute(t, "resolve", "-g", mailGraph, "--mode", "graft", "/settings")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "stack (2)", lines[0])
	assert.Equal(t, "└─ settings", lines[len(lines)-2])
	assert.Equal(t, "→ settings", lines[len(lines)-1])
}

func TestResolveErrors(t *testing.T) {
	_, err := execute(t, "resolve", "-g", mailGraph, "/mail/mesage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean /mail/message/{id}")

	_, err = execute(t, "resolve", "-g", mailGraph, "--mode", "sideways", "/home")
	require.Error(t, err)

	_, err = execute(t, "resolve", "-g", mailGraph)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("start: home\nroutes:\n  - pattern: home\n    route: home\n"), 0o644))
	unknownKey := filepath.Join(dir, "extra.toml")
	require.NoError(t, os.WriteFile(unknownKey, []byte("start = \"home\"\nextra = 1\n"), 0o644))

	out, err := execute(t, "validate", mailGraph)
	require.NoError(t, err)
	assert.Equal(t, "ok   "+mailGraph+"\n", out)

	out, err = execute(t, "validate", mailGraph, broken, unknownKey)
	require.Error(t, err)
	assert.Equal(t, "2 of 3 graphs invalid", err.Error())
	assert.Contains(t, out, "FAIL "+broken)
	assert.Contains(t, out, "FAIL "+unknownKey)
	assert.Contains(t, out, "unknown keys")
}

func seedSnapshots(t *testing.T, dir string, names ...string) {
	t.Helper()
	s, err := snapshot.Open(snapshot.Config{Path: dir})
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()
	root := &nav.StackNode{ID: "root", Children: []nav.Node{
		&nav.ScreenNode{ID: "a", ParentID: "root", Destination: nav.To("home")},
		&nav.ScreenNode{ID: "b", ParentID: "root", Destination: nav.To("article", "id", "7")},
	}}
	for _, name := range names {
		require.NoError(t, s.Save(context.Background(), name, root))
	}
}

func TestSnapshotCommands(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "snapshot", "ls", "--state-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "no saved sessions\n", out)

	seedSnapshots(t, dir, "work", "default")

	out, err = execute(t, "snapshot", "ls", "--state-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "default\nwork\n", out)

	out, err = execute(t, "snapshot", "show", "--state-dir", dir, "--keys", "work")
	require.NoError(t, err)
	assert.Equal(t, "stack (2) {root}\n├─ home {a}\n└─ article id=7 {b}\n", out)

	out, err = execute(t, "snapshot", "show", "--state-dir", dir, "--raw", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "\n  ")
	assert.Contains(t, out, `"article"`)

	out, err = execute(t, "snapshot", "rm", "--state-dir", dir, "work", "missing")
	require.ErrorIs(t, err, snapshot.ErrNotFound)
	assert.Equal(t, "removed work\n", out)

	out, err = execute(t, "snapshot", "ls", "--state-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "default\n", out)

	_, err = execute(t, "snapshot", "show", "--state-dir", dir, "work")
	require.ErrorIs(t, err, snapshot.ErrNotFound)
}

func TestSnapshotNeedsStateDir(t *testing.T) {
	_, err := execute(t, "snapshot", "ls")
	require.ErrorIs(t, err, errStateDirRequired)
}
