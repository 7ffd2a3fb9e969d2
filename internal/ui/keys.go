package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the global keybindings of the application. View-local keys
// are handled by the views themselves.
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Task actions
	Add      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Toggle   key.Binding
	Priority key.Binding
	DueDate  key.Binding
	TagTask  key.Binding
	Focus    key.Binding

	// View preferences
	FilterActive    key.Binding
	FilterCompleted key.Binding
	FilterAll       key.Binding
	CycleSort       key.Binding
	TagFilter       key.Binding
	ClearTag        key.Binding

	// Sync and identity
	Push       key.Binding
	Pull       key.Binding
	Disconnect key.Binding

	// General
	Help       key.Binding
	ThemeCycle key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),

		// Task actions
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("tab", " ", "x"),
			key.WithHelp("tab", "toggle done"),
		),
		Priority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "priority"),
		),
		DueDate: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "due date"),
		),
		TagTask: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "tag task"),
		),
		Focus: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "focus"),
		),

		// View preferences
		FilterActive: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "active"),
		),
		FilterCompleted: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "completed"),
		),
		FilterAll: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "all"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		TagFilter: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "tag filter"),
		),
		ClearTag: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "clear tag"),
		),

		// Sync and identity
		Push: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "push"),
		),
		Pull: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "pull"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "disconnect"),
		),

		// General
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		ThemeCycle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "theme"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Add, k.Edit, k.Delete, k.Toggle},
		{k.Priority, k.DueDate, k.TagTask, k.Focus},
		{k.FilterActive, k.FilterCompleted, k.FilterAll, k.CycleSort},
		{k.TagFilter, k.ClearTag},
		{k.Push, k.Pull, k.Disconnect},
		{k.ThemeCycle, k.Help, k.Quit},
	}
}
