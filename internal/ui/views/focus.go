package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/sweet/internal/focus"
	"github.com/dori/sweet/internal/model"
	"github.com/dori/sweet/internal/session"
	"github.com/dori/sweet/internal/ui/theme"
)

// FocusView is the pomodoro screen for one task. The countdown itself lives
// in the session's focus engine; the view only renders its status.
type FocusView struct {
	sess   *session.Session
	width  int
	height int

	status    focus.Status
	statusMsg string

	progress progress.Model
}

// NewFocusView creates a new focus view
func NewFocusView(sess *session.Session) FocusView {
	return FocusView{
		sess:     sess,
		progress: progress.New(progress.WithSolidFill(string(theme.Current.Theme.Primary)), progress.WithoutPercentage()),
	}
}

// Init implements tea.Model
func (v FocusView) Init() tea.Cmd {
	return nil
}

// Open binds the engine to taskID and shows it
func (v FocusView) Open(taskID int64) (FocusView, error) {
	engine := v.sess.Focus()
	if engine == nil {
		return v, session.ErrNotConnected
	}
	if err := engine.Open(taskID); err != nil {
		return v, err
	}
	v.status = engine.Status()
	v.statusMsg = ""
	return v, nil
}

// Close hides the timer. A running session keeps going in the background.
func (v FocusView) Close() FocusView {
	if engine := v.sess.Focus(); engine != nil {
		engine.Close()
		v.status = engine.Status()
	}
	return v
}

// SetSize sets the view dimensions
func (v FocusView) SetSize(width, height int) FocusView {
	v.width = width
	v.height = height
	v.progress.Width = min(40, max(10, width-20))
	return v
}

// IsTimerRunning returns whether the countdown is running
func (v FocusView) IsTimerRunning() bool {
	return v.status.State == focus.StateRunning
}

// IsInputMode returns false; the focus view has no text input
func (v FocusView) IsInputMode() bool {
	return false
}

// Status returns the last status the view rendered
func (v FocusView) Status() focus.Status {
	return v.status
}

// Update handles messages for the focus view
func (v FocusView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	engine := v.sess.Focus()

	switch msg := msg.(type) {
	case FocusUpdateMsg:
		v.status = msg.Status
		if msg.Status.State == focus.StateCompleted {
			v.statusMsg = "Session complete! Time for a break."
		}
		return v, nil

	case tea.KeyMsg:
		if engine == nil {
			return v, nil
		}
		v.statusMsg = ""

		switch msg.String() {
		case " ", "s", "enter":
			if err := engine.Toggle(); err != nil {
				return v, errCmd(err)
			}
		case "r":
			engine.Reset()
		case "esc", "backspace":
			v = v.Close()
			return v, func() tea.Msg { return CloseFocusRequest{} }
		}
		v.status = engine.Status()
		return v, nil
	}

	return v, nil
}

// View renders the focus screen
func (v FocusView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles

	task, ok := v.task()
	if !ok {
		return lipgloss.NewStyle().
			Foreground(t.Subtle).
			Width(v.width).
			Height(v.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No task selected\n\nPress 'f' on a task in the list to focus on it")
	}

	containerWidth := min(60, v.width-4)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		Width(containerWidth).
		Align(lipgloss.Center)

	var sections []string
	sections = append(sections, titleStyle.Render("Focus on: "+task.Text))
	sections = append(sections, "")
	sections = append(sections, v.renderTimer())
	sections = append(sections, "")

	p := v.progress
	p.FullColor = string(t.Primary)
	p.EmptyColor = string(t.ProgressEmpty)
	elapsed := 0.0
	if v.status.Duration > 0 {
		elapsed = 1 - float64(v.status.Remaining)/float64(v.status.Duration)
	}
	sections = append(sections, p.ViewAs(elapsed))

	mood := "Time to focus!"
	if v.IsTimerRunning() {
		mood = "Stay focused..."
	}
	sections = append(sections, "", styles.Pomodoro.Render(mood))

	if task.Pomodoros > 0 {
		sections = append(sections, styles.Label.Render(fmt.Sprintf("%s %d completed", strings.Repeat("✨", min(task.Pomodoros, 10)), task.Pomodoros)))
	}

	if v.statusMsg != "" {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(t.Success).Render(v.statusMsg))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, styles.Panel.Render(content))
}

func (v FocusView) renderTimer() string {
	t := theme.Current.Theme

	var timerColor lipgloss.Color
	var stateLabel string
	switch v.status.State {
	case focus.StateRunning:
		timerColor = t.Success
		stateLabel = "RUNNING"
	case focus.StatePaused:
		timerColor = t.Warning
		stateLabel = "PAUSED"
	case focus.StateCompleted:
		timerColor = t.Primary
		stateLabel = "DONE"
	default:
		timerColor = t.Subtle
		stateLabel = "READY"
	}

	timerBox := lipgloss.NewStyle().
		Bold(true).
		Foreground(timerColor).
		Padding(1, 4).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(timerColor).
		Render(formatClock(v.status.Remaining))

	hint := "space: start • r: reset • esc: close"
	if v.IsTimerRunning() {
		hint = "space: pause • r: reset • esc: close (keeps running)"
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(timerColor).Bold(true).Render(stateLabel),
		timerBox,
		lipgloss.NewStyle().Foreground(t.Subtle).Render(hint),
	)
}

// task returns the bound task from the store
func (v FocusView) task() (model.Task, bool) {
	store := v.sess.Tasks()
	if store == nil || !v.status.Bound {
		return model.Task{}, false
	}
	return store.Get(v.status.TaskID)
}

// FocusError turns engine errors into something a user can act on
func FocusError(err error) string {
	switch {
	case errors.Is(err, focus.ErrNoTask):
		return "That task no longer exists."
	case errors.Is(err, session.ErrNotConnected):
		return "Connect a wallet first."
	default:
		return err.Error()
	}
}
