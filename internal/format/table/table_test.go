package table

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatAlignsColumns(t *testing.T) {
	got := Format([][]string{
		{"/mail/message/{id}", "message", "mail"},
		{"/home", "home"},
	}, []Alignment{AlignLeft, AlignRight})
	want := []string{
		"/mail/message/{id}  message  mail",
		"/home                  home",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if Format(nil, nil) != nil {
		t.Fatalf("expected nil for no rows")
	}
}

func TestFormatMeasuresStyledCells(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("ab")
	got := Format([][]string{{styled, "x"}, {"abcd", "y"}}, nil)
	if w := lipgloss.Width(got[0]); w != len("abcd  x") {
		t.Fatalf("styled row misaligned: width %d", w)
	}
}
