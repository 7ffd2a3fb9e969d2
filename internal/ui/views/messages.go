package views

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dori/sweet/internal/focus"
	"github.com/dori/sweet/internal/model"
)

// Messages shared between the views and the root model. They live here
// so the ui package can import views without a cycle.

// ConnectedMsg reports the outcome of a wallet connect
type ConnectedMsg struct {
	User model.User
	Err  error
}

// FocusTaskRequest is sent when the user wants to focus on a task
type FocusTaskRequest struct {
	TaskID int64
}

// CloseFocusRequest hides the focus screen
type CloseFocusRequest struct{}

// FocusUpdateMsg carries a timer recomputation from the focus engine
type FocusUpdateMsg struct {
	Status focus.Status
}

// TasksChangedMsg tells views to reload from the session after a mutation
type TasksChangedMsg struct{}

// ErrorMsg contains an error to display
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display
type StatusMsg struct {
	Message string
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Err: err} }
}

func statusCmd(format string, args ...any) tea.Cmd {
	text := fmt.Sprintf(format, args...)
	return func() tea.Msg { return StatusMsg{Message: text} }
}
