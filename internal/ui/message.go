package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytsync/internal/sync"
)

// MsgKind enumerates all message types in the progress view.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var _ tea.Msg = Msg{}

const (
	MsgProgressUpdate MsgKind = iota
	MsgRunComplete
	MsgUpdatesDrained
)

// Outcome carries the final reports of a full cycle into the view.
type Outcome struct {
	Report   *sync.SyncReport
	Backfill *sync.BackfillReport
	Err      error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update sync.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// runCompleteMsg is the constructor for [MsgRunComplete]
func runCompleteMsg(outcome Outcome) Msg {
	return Msg{kind: MsgRunComplete, data: outcome}
}

// updatesDrainedMsg is the constructor for [MsgUpdatesDrained]
func updatesDrainedMsg() Msg {
	return Msg{kind: MsgUpdatesDrained}
}
