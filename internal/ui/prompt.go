package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atomicstack/navstate/internal/deeplink"
	"github.com/atomicstack/navstate/internal/logging/events"
	"github.com/atomicstack/navstate/internal/nav"
	"github.com/atomicstack/navstate/internal/ui/command"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const linkSuggestions = 3

// linkForm collects a deep link and the mode it is applied with.
type linkForm struct {
	input textinput.Model
	mode  deeplink.Mode
	err   string
}

func newLinkForm(mode deeplink.Mode, static bool) *linkForm {
	ti := textinput.New()
	ti.Placeholder = "/mail/message/42"
	ti.CharLimit = 256
	ti.Prompt = "link: "
	ti.Focus()
	if static {
		ti.Cursor.SetMode(cursor.CursorStatic)
	}
	return &linkForm{input: ti, mode: mode}
}

func (f *linkForm) Value() string {
	return strings.TrimSpace(f.input.Value())
}

// Update feeds msg to the input. It reports whether the link was submitted
// or the form cancelled.
func (f *linkForm) Update(msg tea.Msg) (tea.Cmd, bool, bool) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			return nil, false, true
		case tea.KeyTab:
			if f.mode == deeplink.ModeGraft {
				f.mode = deeplink.ModeReplace
			} else {
				f.mode = deeplink.ModeGraft
			}
			return nil, false, false
		case tea.KeyEnter:
			if f.Value() == "" {
				f.err = "enter a link"
				return nil, false, false
			}
			f.err = ""
			return nil, true, false
		}
	}
	updated, cmd := f.input.Update(msg)
	f.input = updated
	return cmd, false, false
}

func (m *Model) startLinkForm() tea.Cmd {
	if m.store == nil {
		return nil
	}
	m.linkForm = newLinkForm(m.linkMode, m.staticCursor)
	m.mode = ModeLinkPrompt
	m.errMsg = ""
	events.DeepLink.Prompt()
	if m.staticCursor {
		return nil
	}
	return textinput.Blink
}

// handleLinkForm routes key presses to the link prompt while it is open.
// Other messages fall through to the regular handlers.
func (m *Model) handleLinkForm(msg tea.Msg) (bool, tea.Cmd) {
	if m.linkForm == nil {
		return false, nil
	}
	if _, ok := msg.(tea.KeyMsg); !ok {
		return false, nil
	}
	if key := msg.(tea.KeyMsg); key.String() == "ctrl+c" {
		m.exitReason = "interrupt"
		return true, tea.Quit
	}
	cmd, done, cancel := m.linkForm.Update(msg)
	if cancel {
		m.linkForm = nil
		m.mode = ModePicker
		events.DeepLink.Cancel()
		return true, cmd
	}
	if done {
		link, mode := m.linkForm.Value(), m.linkForm.mode
		return true, m.resolveLinkCmd(link, mode)
	}
	return true, cmd
}

type linkResolvedMsg struct {
	link        string
	mode        deeplink.Mode
	root        nav.Node
	err         error
	suggestions []string
}

func (m *Model) resolveLinkCmd(link string, mode deeplink.Mode) tea.Cmd {
	g := m.currentGraph()
	store := m.store
	keys := m.keys
	return func() tea.Msg {
		res := deeplink.NewResolver(g.Router(), g.Registry(), keys)
		root, err := res.Resolve(store.Root(), link, mode)
		msg := linkResolvedMsg{link: link, mode: mode, root: root, err: err}
		if errors.Is(err, deeplink.ErrNoMatch) {
			msg.suggestions = g.Router().Suggest(link, linkSuggestions)
		}
		return msg
	}
}

func (m *Model) handleLinkResolvedMsg(msg tea.Msg) tea.Cmd {
	resolved, ok := msg.(linkResolvedMsg)
	if !ok {
		return nil
	}
	if resolved.err != nil {
		text := resolved.err.Error()
		if errors.Is(resolved.err, deeplink.ErrNoMatch) {
			events.DeepLink.NoMatch(resolved.link, resolved.suggestions)
			if len(resolved.suggestions) > 0 {
				text = fmt.Sprintf("no route matches %s; try %s", resolved.link, strings.Join(resolved.suggestions, ", "))
			}
		}
		if m.linkForm != nil {
			m.linkForm.err = text
			return nil
		}
		m.errMsg = text
		return nil
	}
	route := ""
	if leaf := nav.ActiveLeaf(resolved.root); leaf != nil {
		route = leaf.Destination.Route
	}
	events.DeepLink.Resolve(resolved.link, resolved.mode.String(), route)
	m.linkForm = nil
	m.mode = ModePicker
	return m.run(command.SetRoot("deeplink", resolved.link, resolved.root))
}

func (m *Model) viewLinkForm() string {
	f := m.linkForm
	lines := []styledLine{
		{text: m.menuHeader(), style: styles.Header},
		{text: "Open deep link", style: styles.Info},
		{},
		{text: f.input.View(), raw: true},
		{text: fmt.Sprintf("mode: %s (tab to switch)", f.mode), style: styles.Footer},
	}
	if f.err != "" {
		lines = append(lines, styledLine{}, styledLine{text: f.err, style: styles.Error})
	}
	lines = append(lines, styledLine{}, styledLine{text: "enter open  esc cancel", style: styles.Footer})
	return renderLines(applyWidth(lines, m.width))
}
