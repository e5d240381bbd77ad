package state

import "sort"

// CleanupSelections drops marks whose destination left the full item list.
// Marks hidden by the current filter are kept.
func (p *Picker) CleanupSelections() {
	if len(p.Selected) == 0 {
		return
	}
	valid := make(map[string]struct{}, len(p.Full))
	for _, item := range p.Full {
		valid[item.ID] = struct{}{}
	}
	for id := range p.Selected {
		if _, ok := valid[id]; !ok {
			delete(p.Selected, id)
		}
	}
}

// IsSelected reports whether the given id is marked.
func (p *Picker) IsSelected(id string) bool {
	_, ok := p.Selected[id]
	return ok
}

// ToggleSelection marks or unmarks id. A new mark is ordered after every
// existing one.
func (p *Picker) ToggleSelection(id string) {
	if p.Selected == nil {
		p.Selected = make(map[string]int)
	}
	if _, ok := p.Selected[id]; ok {
		delete(p.Selected, id)
		return
	}
	p.markSeq++
	p.Selected[id] = p.markSeq
}

// ToggleCurrentSelection toggles the mark at the current cursor.
func (p *Picker) ToggleCurrentSelection() {
	if !p.MultiSelect || len(p.Items) == 0 || p.Cursor < 0 || p.Cursor >= len(p.Items) {
		return
	}
	p.ToggleSelection(p.Items[p.Cursor].ID)
}

// ClearSelection clears all marks.
func (p *Picker) ClearSelection() {
	for id := range p.Selected {
		delete(p.Selected, id)
	}
	p.markSeq = 0
}

// SelectedItems returns the marked items in the order they were marked,
// including those the filter currently hides.
func (p *Picker) SelectedItems() []Item {
	if len(p.Selected) == 0 {
		return nil
	}
	selected := make([]Item, 0, len(p.Selected))
	for _, item := range p.Full {
		if p.IsSelected(item.ID) {
			selected = append(selected, item)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return p.Selected[selected[i].ID] < p.Selected[selected[j].ID]
	})
	return selected
}
