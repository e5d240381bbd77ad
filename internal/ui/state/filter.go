package state

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SetFilter updates the filter query and cursor position.
func (p *Picker) SetFilter(query string, cursor int) {
	trimmed := strings.TrimSpace(query)
	prevTrimmed := strings.TrimSpace(p.Filter)
	restore := -1
	p.Filter = query
	runes := []rune(p.Filter)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	p.FilterCursor = cursor
	if trimmed != "" {
		if prevTrimmed == "" {
			p.LastCursor = p.Cursor
		}
		p.Cursor = 0
	} else if prevTrimmed != "" {
		restore = p.LastCursor
	}
	p.applyFilter()
	if trimmed != "" && len(p.Items) > 0 {
		if idx := BestMatchIndex(p.Items, trimmed); idx >= 0 {
			p.Cursor = idx
		}
	}
	if trimmed == "" && prevTrimmed != "" {
		if restore >= 0 && restore < len(p.Items) {
			p.Cursor = restore
		} else if len(p.Items) > 0 {
			p.Cursor = len(p.Items) - 1
		}
		p.LastCursor = -1
	}
}

func (p *Picker) applyFilter() {
	p.Items = FilterItems(p.Full, p.Filter)
	if len(p.Items) == 0 {
		p.Cursor = 0
		p.ViewportOffset = 0
		return
	}
	if p.Cursor < 0 {
		p.Cursor = len(p.Items) - 1
		return
	}
	if p.Cursor >= len(p.Items) {
		p.Cursor = len(p.Items) - 1
	}
	if p.ViewportOffset > len(p.Items)-1 {
		p.ViewportOffset = 0
	}
}

// FilterCursorPos returns the rune offset of the filter cursor.
func (p *Picker) FilterCursorPos() int {
	runes := []rune(p.Filter)
	if p.FilterCursor < 0 {
		return 0
	}
	if p.FilterCursor > len(runes) {
		return len(runes)
	}
	return p.FilterCursor
}

// InsertFilterText inserts text into the filter at the cursor position.
func (p *Picker) InsertFilterText(text string) bool {
	if text == "" {
		return false
	}
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	runes := []rune(p.Filter)
	pos := p.FilterCursorPos()
	updated := make([]rune, 0, len(runes)+len(insert))
	updated = append(updated, runes[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, runes[pos:]...)
	p.SetFilter(string(updated), pos+len(insert))
	return true
}

// DeleteFilterRuneBackward deletes a rune before the filter cursor.
func (p *Picker) DeleteFilterRuneBackward() bool {
	runes := []rune(p.Filter)
	pos := p.FilterCursorPos()
	if pos == 0 || len(runes) == 0 {
		return false
	}
	updated := append(runes[:pos-1], runes[pos:]...)
	p.SetFilter(string(updated), pos-1)
	return true
}

// DeleteFilterWordBackward deletes the word preceding the cursor.
func (p *Picker) DeleteFilterWordBackward() bool {
	runes := []rune(p.Filter)
	pos := p.FilterCursorPos()
	if pos == 0 || len(runes) == 0 {
		return false
	}
	i := pos
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	updated := append(runes[:i], runes[pos:]...)
	p.SetFilter(string(updated), i)
	return true
}

// MoveFilterCursorStart moves the filter cursor to the start.
func (p *Picker) MoveFilterCursorStart() bool {
	if p.FilterCursorPos() == 0 {
		return false
	}
	p.FilterCursor = 0
	return true
}

// MoveFilterCursorEnd moves the filter cursor to the end.
func (p *Picker) MoveFilterCursorEnd() bool {
	end := len([]rune(p.Filter))
	if p.FilterCursorPos() == end {
		return false
	}
	p.FilterCursor = end
	return true
}

// MoveFilterCursorWordBackward moves the filter cursor one word backward.
func (p *Picker) MoveFilterCursorWordBackward() bool {
	runes := []rune(p.Filter)
	pos := p.FilterCursorPos()
	if pos == 0 || len(runes) == 0 {
		return false
	}
	i := pos
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	if i == pos {
		return false
	}
	p.FilterCursor = i
	return true
}

// MoveFilterCursorWordForward moves the filter cursor one word forward.
func (p *Picker) MoveFilterCursorWordForward() bool {
	runes := []rune(p.Filter)
	pos := p.FilterCursorPos()
	if pos >= len(runes) {
		return false
	}
	i := pos
	for i < len(runes) && !unicode.IsSpace(runes[i]) {
		i++
	}
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	if i == pos {
		return false
	}
	p.FilterCursor = i
	return true
}

// MoveFilterCursorRuneBackward moves the filter cursor one rune backward.
func (p *Picker) MoveFilterCursorRuneBackward() bool {
	if p.FilterCursorPos() == 0 {
		return false
	}
	p.FilterCursor = p.FilterCursorPos() - 1
	return true
}

// MoveFilterCursorRuneForward moves the filter cursor one rune forward.
func (p *Picker) MoveFilterCursorRuneForward() bool {
	runes := []rune(p.Filter)
	pos := p.FilterCursorPos()
	if pos >= len(runes) {
		return false
	}
	p.FilterCursor = pos + 1
	return true
}

// haystack is what a query is matched against: the label followed by the
// route, so both "Inbox" and "inbox" find the same destination.
func haystack(item Item) string {
	if item.Label == "" || strings.EqualFold(item.Label, item.ID) {
		return item.ID
	}
	return item.Label + " " + item.ID
}

// FilterItems returns the items matching query in their original order.
func FilterItems(items []Item, query string) []Item {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return CloneItems(items)
	}
	targets := make([]string, len(items))
	for i, item := range items {
		targets[i] = haystack(item)
	}
	matched := make([]bool, len(items))
	for _, rank := range fuzzy.RankFindNormalizedFold(trimmed, targets) {
		matched[rank.OriginalIndex] = true
	}
	lower := strings.ToLower(trimmed)
	filtered := make([]Item, 0, len(items))
	for i, item := range items {
		if matched[i] || strings.Contains(strings.ToLower(item.Detail), lower) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// BestMatchIndex picks the item a query most likely means: an exact label or
// route, then a prefix, then the closest fuzzy match.
func BestMatchIndex(items []Item, query string) int {
	if len(items) == 0 {
		return -1
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return 0
	}
	lower := strings.ToLower(trimmed)
	for i, item := range items {
		if strings.EqualFold(item.Label, trimmed) || strings.EqualFold(item.ID, trimmed) {
			return i
		}
	}
	for i, item := range items {
		if strings.HasPrefix(strings.ToLower(item.Label), lower) || strings.HasPrefix(strings.ToLower(item.ID), lower) {
			return i
		}
	}
	targets := make([]string, len(items))
	for i, item := range items {
		targets[i] = haystack(item)
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, targets)
	if len(ranks) == 0 {
		return 0
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance || (rank.Distance == best.Distance && rank.OriginalIndex < best.OriginalIndex) {
			best = rank
		}
	}
	return best.OriginalIndex
}
