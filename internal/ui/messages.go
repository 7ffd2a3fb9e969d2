package ui

import "github.com/dori/sweet/internal/focus"

// View represents the current active view
type View int

const (
	ViewConnect View = iota
	ViewList
	ViewFocus
)

// String returns the display name for a view
func (v View) String() string {
	switch v {
	case ViewConnect:
		return "Connect"
	case ViewList:
		return "Tasks"
	case ViewFocus:
		return "Focus"
	default:
		return "Unknown"
	}
}

// Messages for inter-component communication

// ThemeChangedMsg indicates the theme was changed
type ThemeChangedMsg struct {
	ThemeName string
}

// SyncDoneMsg reports a finished push or pull
type SyncDoneMsg struct {
	Op  string
	Err error
}

// focusUpdatesMsg wraps a value read from the focus update channel
type focusUpdatesMsg struct {
	status focus.Status
	ok     bool
}
