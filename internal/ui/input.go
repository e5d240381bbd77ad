package ui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/atomicstack/navstate/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const filterPlaceholder = "(type to filter destinations)"

// filterEdit is one editing action on the destination filter. apply reports
// whether anything changed; trace logs the new state.
type filterEdit struct {
	apply func(*picker) bool
	trace func(*picker)
}

func traceFilterCursor(p *picker) { events.Filter.Cursor(p.ID, p.FilterCursor) }

func traceFilterWord(p *picker) { events.Filter.CursorWord(p.ID, p.FilterCursor) }

// filterKeys are the readline-style bindings of the filter line. ctrl+e is
// taken here, which is why the expanded toggle lives on ctrl+t.
var filterKeys = map[string]filterEdit{
	"backspace": {apply: (*picker).DeleteFilterRuneBackward, trace: func(p *picker) { events.Filter.Backspace(p.ID, p.Filter) }},
	"ctrl+h":    {apply: (*picker).DeleteFilterRuneBackward, trace: func(p *picker) { events.Filter.Backspace(p.ID, p.Filter) }},
	"ctrl+w":    {apply: (*picker).DeleteFilterWordBackward, trace: func(p *picker) { events.Filter.WordBackspace(p.ID, p.Filter) }},
	"ctrl+a":    {apply: (*picker).MoveFilterCursorStart, trace: traceFilterCursor},
	"ctrl+e":    {apply: (*picker).MoveFilterCursorEnd, trace: traceFilterCursor},
	"left":      {apply: (*picker).MoveFilterCursorRuneBackward, trace: traceFilterCursor},
	"right":     {apply: (*picker).MoveFilterCursorRuneForward, trace: traceFilterCursor},
	"alt+b":     {apply: (*picker).MoveFilterCursorWordBackward, trace: traceFilterWord},
	"alt+f":     {apply: (*picker).MoveFilterCursorWordForward, trace: traceFilterWord},
}

func insertFilter(text string) filterEdit {
	return filterEdit{
		apply: func(p *picker) bool { return p.InsertFilterText(text) },
		trace: func(p *picker) { events.Filter.Append(p.ID, p.Filter) },
	}
}

var clearFilter = filterEdit{
	apply: func(p *picker) bool {
		if p.Filter == "" {
			return false
		}
		p.SetFilter("", 0)
		return true
	},
	trace: func(p *picker) { events.Filter.Cleared(p.ID) },
}

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

func (m *Model) noteFilterCursorChange(p *picker, before int) {
	if p != nil && before != p.FilterCursorPos() {
		m.filterCursorDirty = true
	}
}

// handleTextInput consumes the keys that edit the filter line or the marks.
// Anything else falls through to the navigation bindings.
func (m *Model) handleTextInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.picker == nil {
		return false, nil
	}
	key := msg.String()
	switch key {
	case "ctrl+u":
		if m.editFilter(clearFilter) {
			return true, nil
		}
		return m.clearMarks(), nil
	case "ctrl+s":
		return m.markCurrent(), nil
	}
	if edit, ok := filterKeys[key]; ok {
		return m.editFilter(edit), nil
	}
	switch msg.Type {
	case tea.KeySpace:
		return m.editFilter(insertFilter(" ")), nil
	case tea.KeyRunes:
		if msg.Alt || !printable(msg.Runes) {
			return false, nil
		}
		return m.editFilter(insertFilter(string(msg.Runes))), nil
	}
	return false, nil
}

func printable(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// editFilter applies edit to the picker. A changed query clears stale
// messages and re-fits the viewport; marks are kept so destinations found
// under different queries can be pushed together.
func (m *Model) editFilter(edit filterEdit) bool {
	p := m.picker
	before, query := p.FilterCursorPos(), p.Filter
	if !edit.apply(p) {
		return false
	}
	m.noteFilterCursorChange(p, before)
	if p.Filter != query {
		m.forceClearInfo()
		m.errMsg = ""
		m.syncViewport(p)
	}
	if edit.trace != nil {
		edit.trace(p)
	}
	return true
}

// markCurrent toggles the mark on the destination under the cursor and steps
// down, so a run of destinations can be marked by holding ctrl+s.
func (m *Model) markCurrent() bool {
	p := m.picker
	item, ok := p.Current()
	if !ok {
		return false
	}
	p.MultiSelect = true
	p.ToggleSelection(item.ID)
	marked := len(p.Selected)
	if marked == 0 {
		p.MultiSelect = false
	}
	events.UI.PickerMark(p.ID, item.ID, p.IsSelected(item.ID), marked)
	if p.Cursor < len(p.Items)-1 {
		p.Cursor++
	}
	if marked > 0 {
		m.setInfo(fmt.Sprintf("%d marked; enter pushes them in marking order.", marked))
	} else {
		m.forceClearInfo()
	}
	m.syncViewport(p)
	return true
}

// clearMarks drops every mark. ctrl+u reaches it once the filter is empty.
func (m *Model) clearMarks() bool {
	p := m.picker
	n := len(p.Selected)
	if n == 0 {
		return false
	}
	p.ClearSelection()
	p.MultiSelect = false
	events.UI.PickerMark(p.ID, "", false, 0)
	m.setInfo(fmt.Sprintf("Cleared %d marks.", n))
	return true
}

func styled(style *lipgloss.Style, s string) string {
	if style == nil || s == "" {
		return s
	}
	return style.Render(s)
}

// filterPrompt renders the filter line: the query with its caret, or the
// placeholder, followed by the match and mark counts.
func (m *Model) filterPrompt() string {
	prompt := styled(styles.FilterPrompt, "» ")
	p := m.picker
	if p == nil {
		return prompt
	}
	var body string
	if p.Filter == "" {
		runes := []rune(filterPlaceholder)
		body = m.renderCaret(string(runes[0]), styles.FilterPlaceholder) +
			styled(styles.FilterPlaceholder, string(runes[1:]))
	} else {
		runes := []rune(p.Filter)
		pos := p.FilterCursorPos()
		caret, rest := " ", ""
		if pos < len(runes) {
			caret, rest = string(runes[pos]), string(runes[pos+1:])
		}
		body = styled(styles.Filter, string(runes[:pos])) +
			m.renderCaret(caret, styles.Filter) +
			styled(styles.Filter, rest)
	}
	return prompt + body + styled(styles.ItemDetail, m.filterStatus())
}

// filterStatus summarises how many destinations the query keeps and how
// many are marked.
func (m *Model) filterStatus() string {
	p := m.picker
	var parts []string
	if strings.TrimSpace(p.Filter) != "" {
		parts = append(parts, fmt.Sprintf("%d/%d", len(p.Items), len(p.Full)))
	}
	if n := len(p.Selected); n > 0 {
		parts = append(parts, fmt.Sprintf("%d marked", n))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + strings.Join(parts, " · ")
}

// renderCaret draws char under the filter caret. While the blink is in its
// off phase the character is drawn in the surrounding text style.
func (m *Model) renderCaret(char string, text *lipgloss.Style) string {
	m.filterCursor.SetChar(char)
	base := lipgloss.NewStyle().Inline(true)
	if text != nil {
		base = text.Inline(true)
	}
	if m.filterCursor.Blink {
		return base.Render(char)
	}
	if styles.Cursor != nil {
		return base.Inherit(styles.Cursor.Inline(true)).Blink(false).Render(char)
	}
	return base.Reverse(true).Render(char)
}
