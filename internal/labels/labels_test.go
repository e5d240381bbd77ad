package labels

import (
	"path/filepath"
	"slices"
	"testing"
)

var tables = map[string]map[string]string{
	"en": {"tab.home": "Home", "tab.mail": "Mail", "tab.search": "Search"},
	"de": {"tab.home": "Start", "tab.mail": "Post"},
}

func TestLabelFallsBack(t *testing.T) {
	l, err := New("de", tables)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := l.Label("tab.mail"); got != "Post" {
		t.Fatalf("expected Post, got %q", got)
	}
	if got := l.Label("tab.search"); got != "Search" {
		t.Fatalf("expected English fallback, got %q", got)
	}
	if got := l.Label("tab.unknown"); got != "tab.unknown" {
		t.Fatalf("expected id passthrough, got %q", got)
	}
	if l.Locale() != "de" {
		t.Fatalf("unexpected locale %q", l.Locale())
	}
}

func TestLabelFiles(t *testing.T) {
	l, err := New("fr", tables, filepath.Join("testdata", "labels.fr.toml"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := l.Label("tab.home"); got != "Accueil" {
		t.Fatalf("expected Accueil, got %q", got)
	}
	if !slices.Contains(l.Locales(), "fr") {
		t.Fatalf("expected fr in %v", l.Locales())
	}
}

func TestNewRejectsBadLocale(t *testing.T) {
	if _, err := New("!!", nil); err == nil {
		t.Fatalf("expected bad locale error")
	}
	var l *Labels
	if l.Label("x") != "x" {
		t.Fatalf("nil labels should pass ids through")
	}
}
