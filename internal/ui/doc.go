// Package ui implements a terminal progress view for sync runs using
// bubbletea's Elm architecture.
//
// The [Model] renders a spinner, the current engine phase, and a rolling
// log of per-feed results. Progress updates flow through a channel from the
// sync engine; the final reports arrive on an outcome channel once the run
// finishes. Keyboard input is limited to quitting (q, ctrl+c).
package ui
