// Package ui contains the Bubble Tea program that drives a navigation store.
// The Model type focuses on message orchestration while dedicated helpers own
// navigation, input, rendering and lifecycle bookkeeping.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages.
//   - While the deep-link prompt is open, key presses go to it. Otherwise each
//     tea.Msg is routed through a typed handler registry.
//   - Navigation helpers (navigation.go) turn key presses into requests on the
//     internal/ui/command bus. The bus runs each request against the store in
//     a tea.Cmd and reports a command.ResultMsg, so the store has one writer.
//   - Filter helpers (input.go) keep text entry apart from the event loop.
//
// State ownership:
//   - The destinations picker lives in internal/ui/state.Picker, which tracks
//     items, filtering, selection and the viewport.
//   - The navigation tree lives in nav.Store. The model reads it for every
//     frame and never mutates it directly.
//   - surfaces.go attaches the lifecycles on the active path to the surface
//     after every result, and detaches the rest.
//
// Backend interactions:
//   - A backend.Watcher streams graph reloads. The dispatcher swaps the
//     store's mutator and the picker is rebuilt from the new graph.
//   - Snapshot restores arrive as RestoredMsg and go through the bus too.
package ui
