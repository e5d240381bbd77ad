package state

import "strings"

// Item is one selectable destination.
type Item struct {
	ID     string
	Label  string
	Detail string
}

// CloneItems produces a shallow copy of the provided items.
func CloneItems(items []Item) []Item {
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}

// Picker holds the destination list shown for one navigation context: cursor,
// filter, marked items and viewport.
type Picker struct {
	ID             string
	Title          string
	Items          []Item
	Full           []Item
	Filter         string
	FilterCursor   int
	Cursor         int
	MultiSelect    bool
	Selected       map[string]int
	LastCursor     int
	ViewportOffset int

	markSeq int
}

// NewPicker constructs a Picker over items.
func NewPicker(id, title string, items []Item) *Picker {
	p := &Picker{
		ID:         id,
		Title:      title,
		Cursor:     0,
		LastCursor: -1,
		Selected:   make(map[string]int),
	}
	p.UpdateItems(items)
	return p
}

// IndexOf returns the index for a given item identifier.
func (p *Picker) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range p.Items {
		if item.ID == id {
			return i
		}
	}
	if idx := strings.LastIndex(id, "/"); idx >= 0 {
		suffix := id[idx+1:]
		for i, item := range p.Items {
			if item.ID == suffix {
				return i
			}
		}
	}
	return -1
}

// Current returns the item under the cursor.
func (p *Picker) Current() (Item, bool) {
	if p == nil || p.Cursor < 0 || p.Cursor >= len(p.Items) {
		return Item{}, false
	}
	return p.Items[p.Cursor], true
}

// UpdateItems refreshes the items while preserving selections if possible.
func (p *Picker) UpdateItems(items []Item) {
	prevOffset := p.ViewportOffset
	p.Full = CloneItems(items)
	p.CleanupSelections()
	p.applyFilter()
	if len(p.Items) == 0 {
		p.ViewportOffset = 0
		return
	}
	if prevOffset < 0 {
		prevOffset = 0
	}
	if prevOffset > len(p.Items)-1 {
		p.ViewportOffset = 0
		return
	}
	p.ViewportOffset = prevOffset
}
