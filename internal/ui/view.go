package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atomicstack/navstate/internal/format/outline"
	"github.com/atomicstack/navstate/internal/nav"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	treePanelMinWidth = 30  // below this the tree panel is not drawn
	treePanelFraction = 0.4 // share of the terminal width given to the tree
	treeScrollStep    = 3
)

const footerHelp = "enter push  ctrl+s mark  ctrl+r replace  ctrl+x clear  esc back  tab tabs  ctrl+p panes  ctrl+t expand  ctrl+o link  ctrl+c quit"

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text carries ANSI escapes; skip style wrapping
}

// treePanelWidth returns the width of the right-hand tree panel, or 0 when
// the terminal is too narrow to split.
func (m *Model) treePanelWidth() int {
	if m.width <= 0 {
		return 0
	}
	w := int(float64(m.width) * treePanelFraction)
	if w < treePanelMinWidth {
		return 0
	}
	return w
}

func (m *Model) menuColumnWidth() int {
	return m.width - m.treePanelWidth()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.mode == ModeLinkPrompt && m.linkForm != nil {
		return m.viewLinkForm()
	}
	if m.treePanelWidth() > 0 {
		return m.viewSideBySide()
	}
	return m.viewVertical()
}

// contentLines builds the header, container bars, destinations and trailing
// info for a column of the given width.
func (m *Model) contentLines(width int) []styledLine {
	lines := make([]styledLine, 0, 16)
	lines = append(lines, styledLine{text: m.menuHeader(), style: styles.Header})
	if bar := m.tabBar(); bar != "" {
		lines = append(lines, styledLine{text: bar, raw: true})
	}
	if roles := m.rolesLine(); roles != "" {
		lines = append(lines, styledLine{text: roles, raw: true})
	}
	current := m.picker
	m.syncViewport(current)
	start := 0
	displayItems := current.Items
	if maxItems := m.maxVisibleItems(); maxItems > 0 && len(displayItems) > maxItems {
		start = current.ViewportOffset
		if start < 0 {
			start = 0
		}
		if start+maxItems > len(displayItems) {
			start = max(len(displayItems)-maxItems, 0)
			current.ViewportOffset = start
		}
		displayItems = displayItems[start : start+maxItems]
	}
	if len(current.Items) == 0 {
		msg := "(no destinations)"
		if current.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", current.Filter)
		}
		lines = append(lines, styledLine{text: msg, style: styles.Info})
	} else {
		for i, item := range displayItems {
			lines = append(lines, m.buildItemLine(item.ID, item.Label, item.Detail, start+i, width))
		}
	}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: info, style: styles.Info})
	}
	if m.showFooter {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: footerHelp, style: styles.Footer})
	}
	return lines
}

func (m *Model) viewVertical() string {
	lines := m.contentLines(m.width)
	lines = limitHeight(lines, m.height-2, m.width)
	lines = applyWidth(lines, m.width)
	lines = append(lines, applyWidth(m.bottomBar(), m.width)...)
	return renderLines(lines)
}

// viewSideBySide renders destinations on the left and the live tree on the
// right.
func (m *Model) viewSideBySide() string {
	menuW := m.menuColumnWidth()
	treeW := m.treePanelWidth()
	const bottomBarRows = 2

	lines := m.contentLines(menuW)
	panelH := max(m.height-bottomBarRows, 1)
	if len(lines) > panelH {
		lines = lines[:panelH]
	}
	for len(lines) < panelH {
		lines = append(lines, styledLine{})
	}
	leftRows := strings.Split(renderLines(applyWidth(lines, menuW)), "\n")
	for i, row := range leftRows {
		leftRows[i] = fitWidth(row, menuW)
	}
	left := strings.Join(leftRows, "\n")
	right := m.renderTreePanel(treeW, panelH)
	top := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return top + "\n" + renderLines(applyWidth(m.bottomBar(), m.width))
}

func (m *Model) bottomBar() []styledLine {
	var status styledLine
	switch {
	case m.errMsg != "":
		status = styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	case m.pending:
		status = styledLine{text: fmt.Sprintf("%s…", m.pendingOp), style: styles.Info}
	}
	return []styledLine{status, {text: m.filterPrompt(), raw: true}}
}

// fitWidth pads or truncates an ANSI string to exactly width columns.
func fitWidth(s string, width int) string {
	w := ansi.StringWidth(s)
	if w > width {
		s = ansi.Truncate(s, width, "…")
		w = ansi.StringWidth(s)
	}
	if w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// buildItemLine renders a destination. width is the column width; the text
// is padded so the selected row's background spans the column.
func (m *Model) buildItemLine(id, label, detail string, idx int, width int) styledLine {
	current := m.picker
	indicator := "▌"
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	mark := ""
	if current.MultiSelect {
		mark = "[ ] "
		if current.IsSelected(id) {
			mark = "[✓] "
		}
	}
	if idx == current.Cursor {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	text := indicator + " " + mark + label
	if detail != "" {
		text += "  · " + detail
	}
	if width > 0 {
		if pad := width - ansi.StringWidth(text); pad > 0 {
			text += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          text,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1,
	}
}

// tabBar renders the labels of the innermost tab container.
func (m *Model) tabBar() string {
	tab := nav.InnermostTab(m.root())
	if tab == nil {
		return ""
	}
	parts := make([]string, len(tab.Stacks))
	for i := range tab.Stacks {
		label := fmt.Sprintf("#%d", i)
		if i < len(tab.Tabs) && tab.Tabs[i].Label != "" {
			label = m.labels.Label(tab.Tabs[i].Label)
			if icon := tab.Tabs[i].Icon; icon != "" {
				label = icon + " " + label
			}
		}
		style := styles.Tab
		if i == tab.ActiveIndex {
			style = styles.ActiveTab
		}
		parts[i] = style.Render(label)
	}
	return strings.Join(parts, "")
}

// rolesLine shows the roles of the innermost pane node and the layout mode.
func (m *Model) rolesLine() string {
	pane := nav.InnermostPane(m.root())
	if pane == nil {
		return ""
	}
	roles := pane.Roles()
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		text := string(r)
		if !pane.Panes[r].Visible {
			text += "?"
		}
		style := styles.Role
		if r == pane.ActiveRole {
			style = styles.ActiveRole
			text = "[" + text + "]"
		}
		parts = append(parts, style.Render(text))
	}
	layout := "compact"
	if m.store != nil && m.store.Expanded() {
		layout = "expanded"
	}
	return strings.Join(parts, " ") + styles.Role.Render("  ("+layout+")")
}

// renderTreePanel draws the navigation tree in a bordered box of exactly
// height rows and width columns.
func (m *Model) renderTreePanel(width, height int) string {
	const (
		tlc = "╭"
		trc = "╮"
		blc = "╰"
		brc = "╯"
		hz  = "─"
		vt  = "│"
	)
	innerW := max(width-2, 1)
	innerH := max(height-2, 1)
	lines := outline.Lines(m.root(), outline.Options{Label: m.labels.Label})

	maxOffset := max(len(lines)-innerH, 0)
	m.treeOffset = min(max(m.treeOffset, 0), maxOffset)
	end := min(m.treeOffset+innerH, len(lines))
	visible := lines[m.treeOffset:end]

	title := " Tree "
	scroll := ""
	if len(lines) > innerH {
		scroll = fmt.Sprintf(" %d/%d ", end, len(lines))
	}
	dashes := width - 4 - ansi.StringWidth(title) - ansi.StringWidth(scroll)
	if dashes < 0 {
		scroll = ""
		dashes = max(width-4-ansi.StringWidth(title), 0)
	}
	rows := make([]string, 0, height)
	rows = append(rows, styles.TreeBorder.Render(tlc+hz)+
		styles.TreeTitle.Render(title)+
		styles.TreeBorder.Render(strings.Repeat(hz, dashes))+
		styles.TreeBorder.Render(scroll+hz+trc))
	for i := 0; i < innerH; i++ {
		var content string
		style := styles.TreeBody
		if i < len(visible) {
			content = visible[i].String()
			if visible[i].Active {
				style = styles.TreeActive
			}
		}
		rows = append(rows, styles.TreeBorder.Render(vt)+style.Render(fitWidth(content, innerW))+styles.TreeBorder.Render(vt))
	}
	rows = append(rows, styles.TreeBorder.Render(blc+strings.Repeat(hz, innerW)+brc))
	return strings.Join(rows, "\n")
}

// handleMouseMsg scrolls the tree panel with the mouse wheel.
func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	ev, ok := msg.(tea.MouseMsg)
	if !ok || m.treePanelWidth() == 0 {
		return nil
	}
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		m.treeOffset = max(m.treeOffset-treeScrollStep, 0)
	case tea.MouseButtonWheelDown:
		// renderTreePanel clamps the upper bound.
		m.treeOffset += treeScrollStep
	}
	return nil
}

// menuHeader is the breadcrumb of the active path.
func (m *Model) menuHeader() string {
	segments := outline.Breadcrumb(m.root(), m.labels.Label)
	if len(segments) == 0 {
		return defaultRootTitle
	}
	return strings.Join(segments, " "+breadcrumbSeparator+" ")
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.syncViewport(m.picker)
	return nil
}

func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := 3 // header + bottom bar
	if m.tabBar() != "" {
		used++
	}
	if m.rolesLine() != "" {
		used++
	}
	if m.infoMsg != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	return max(m.height-used, 1)
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.forceClearInfo()
	}
	return m.infoMsg
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		if line.raw {
			if ansi.StringWidth(line.text) > width {
				line.text = ansi.Truncate(line.text, width, "…")
			}
		} else {
			line.text = truncateText(line.text, width)
		}
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	if ansi.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return string([]rune(text)[:1])
	}
	return ansi.Truncate(text, width, "…")
}
