package events

import "github.com/atomicstack/navstate/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type ActionTracer struct{}

type CommandTracer struct{}

var (
	UI      = UITracer{}
	Filter  = FilterTracer{}
	Action  = ActionTracer{}
	Command = CommandTracer{}
)

func (UITracer) PickerEnter(pickerID, route, label, filter string) {
	logging.Trace("picker.enter", map[string]interface{}{
		"picker": pickerID,
		"route":  route,
		"label":  label,
		"filter": filter,
	})
}

func (UITracer) PickerCursor(pickerID string, cursor int) {
	logging.Trace("picker.cursor", map[string]interface{}{"picker": pickerID, "cursor": cursor})
}

func (UITracer) PickerRefresh(pickerID string, items int) {
	logging.Trace("picker.refresh", map[string]interface{}{"picker": pickerID, "items": items})
}

func (UITracer) PickerMark(pickerID, item string, marked bool, total int) {
	logging.Trace("picker.mark", map[string]interface{}{
		"picker": pickerID,
		"item":   item,
		"marked": marked,
		"total":  total,
	})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}

func (FilterTracer) Cleared(pickerID string) {
	logging.Trace("filter.clear", map[string]interface{}{"picker": pickerID})
}

func (FilterTracer) WordBackspace(pickerID, filter string) {
	logging.Trace("filter.word-backspace", map[string]interface{}{"picker": pickerID, "filter": filter})
}

func (FilterTracer) Cursor(pickerID string, pos int) {
	logging.Trace("filter.cursor", map[string]interface{}{"picker": pickerID, "cursor": pos})
}

func (FilterTracer) CursorWord(pickerID string, pos int) {
	logging.Trace("filter.cursor-word", map[string]interface{}{"picker": pickerID, "cursor": pos})
}

func (FilterTracer) Append(pickerID, filter string) {
	logging.Trace("filter.append", map[string]interface{}{"picker": pickerID, "filter": filter})
}

func (FilterTracer) Backspace(pickerID, filter string) {
	logging.Trace("filter.backspace", map[string]interface{}{"picker": pickerID, "filter": filter})
}

func (CommandTracer) Queue(op, target string) {
	logging.Trace("command.queue", map[string]interface{}{"op": op, "target": target})
}

func (CommandTracer) Hold(op, target, behind string) {
	logging.Trace("command.hold", map[string]interface{}{"op": op, "target": target, "behind": behind})
}

func (CommandTracer) Skip(op, target string) {
	logging.Trace("command.skip", map[string]interface{}{"op": op, "target": target})
}

func (CommandTracer) Result(op, target, outcome string) {
	logging.Trace("command.result", map[string]interface{}{"op": op, "target": target, "outcome": outcome})
}
