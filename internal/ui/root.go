package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/dori/sweet/internal/app"
	"github.com/dori/sweet/internal/focus"
	"github.com/dori/sweet/internal/session"
	"github.com/dori/sweet/internal/ui/theme"
	"github.com/dori/sweet/internal/ui/views"
)

const syncTimeout = 30 * time.Second

// RootModel is the main application model that manages views
type RootModel struct {
	app    *app.App
	sess   *session.Session
	logger *zap.Logger
	keys   KeyMap
	help   help.Model

	width  int
	height int

	currentView View
	connectView views.ConnectView
	listView    views.ListView
	focusView   views.FocusView

	updates <-chan focus.Status

	helpVisible bool
	syncing     bool
	statusMsg   string
	errorMsg    string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	if t, ok := theme.ByName(application.Config.Theme); ok {
		theme.SetTheme(t)
	}

	sess := application.Session
	return RootModel{
		app:         application,
		sess:        sess,
		logger:      application.Logger,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		currentView: ViewConnect,
		connectView: views.NewConnectView(sess, application.Wallet),
		listView:    views.NewListView(sess),
		focusView:   views.NewFocusView(sess),
		updates:     application.FocusUpdates,
	}
}

// Init resumes the last identity and starts listening to the focus timer
func (m RootModel) Init() tea.Cmd {
	return tea.Batch(m.connectView.Init(), waitForFocus(m.updates))
}

// waitForFocus turns the next focus engine update into a message
func waitForFocus(updates <-chan focus.Status) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-updates
		return focusUpdatesMsg{status: st, ok: ok}
	}
}

// Update handles all messages and delegates to the current view
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Header (1) + footer (2) + status (1)
		contentHeight := msg.Height - 4
		m.connectView = m.connectView.SetSize(msg.Width, contentHeight)
		m.listView = m.listView.SetSize(msg.Width, contentHeight)
		m.focusView = m.focusView.SetSize(msg.Width, contentHeight)
		return m, nil

	case tea.FocusMsg:
		if engine := m.sess.Focus(); engine != nil {
			engine.SetFocused(true)
		}
		return m, nil

	case tea.BlurMsg:
		if engine := m.sess.Focus(); engine != nil {
			engine.SetFocused(false)
		}
		return m, nil

	case focusUpdatesMsg:
		if !msg.ok {
			return m, nil
		}
		next := waitForFocus(m.updates)
		if !m.sess.Connected() {
			return m, next
		}
		newFocusView, _ := m.focusView.Update(views.FocusUpdateMsg{Status: msg.status})
		m.focusView = newFocusView.(views.FocusView)
		if msg.status.State == focus.StateCompleted {
			// The pomodoro count changed
			m.reloadList()
			m.sess.PushAsync()
			if m.currentView != ViewFocus {
				m.statusMsg = "Focus session complete! Time for a break."
			}
		}
		return m, next

	case tea.KeyMsg:
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := m.isInputMode()

		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.ThemeCycle):
			// ctrl+t always works (unlikely to type)
			return m, m.cycleTheme()
		}

		if isInputMode {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			m.help.ShowAll = m.helpVisible
			return m, nil
		case m.helpVisible && msg.String() == "esc":
			m.helpVisible = false
			return m, nil
		}

		if !m.sess.Connected() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Push):
			return m, m.sync("push")
		case key.Matches(msg, m.keys.Pull):
			return m, m.sync("pull")
		case key.Matches(msg, m.keys.Disconnect):
			m.sess.Disconnect(context.Background())
			m.focusView = views.NewFocusView(m.sess).SetSize(m.width, m.height-4)
			m.currentView = ViewConnect
			m.statusMsg = "Disconnected"
			return m, nil
		}

	case views.ConnectedMsg:
		newConnectView, cmd := m.connectView.Update(msg)
		m.connectView = newConnectView.(views.ConnectView)
		if msg.Err != nil {
			return m, cmd
		}
		m.currentView = ViewList
		m.statusMsg = fmt.Sprintf("Connected as %s", msg.User.DisplayName)
		m.notifyOverdue()
		m.reloadList()
		return m, cmd

	case views.FocusTaskRequest:
		fv, err := m.focusView.Open(msg.TaskID)
		if err != nil {
			m.errorMsg = views.FocusError(err)
			return m, nil
		}
		m.focusView = fv
		m.currentView = ViewFocus
		return m, nil

	case views.CloseFocusRequest:
		m.currentView = ViewList
		m.reloadList()
		return m, nil

	case views.ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case views.StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		return m, nil

	case SyncDoneMsg:
		m.syncing = false
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
			return m, nil
		}
		if msg.Op == "pull" {
			m.statusMsg = "Pulled tasks from the server"
			m.reloadList()
			return m, nil
		}
		m.statusMsg = "Pushed tasks to the server"
		return m, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch m.currentView {
	case ViewConnect:
		var newConnectView tea.Model
		newConnectView, cmd = m.connectView.Update(msg)
		m.connectView = newConnectView.(views.ConnectView)
	case ViewList:
		var newListView tea.Model
		newListView, cmd = m.listView.Update(msg)
		m.listView = newListView.(views.ListView)
	case ViewFocus:
		var newFocusView tea.Model
		newFocusView, cmd = m.focusView.Update(msg)
		m.focusView = newFocusView.(views.FocusView)
	}

	return m, cmd
}

func (m RootModel) isInputMode() bool {
	switch m.currentView {
	case ViewConnect:
		return m.connectView.IsInputMode()
	case ViewList:
		return m.listView.IsInputMode()
	case ViewFocus:
		return m.focusView.IsInputMode()
	}
	return false
}

func (m *RootModel) reloadList() {
	newListView, _ := m.listView.Update(views.TasksChangedMsg{})
	m.listView = newListView.(views.ListView)
}

// sync runs a push or pull off the UI goroutine
func (m *RootModel) sync(op string) tea.Cmd {
	if m.syncing {
		m.statusMsg = "Sync already in progress"
		return nil
	}
	m.syncing = true
	m.statusMsg = "Syncing..."

	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		var err error
		if op == "pull" {
			err = sess.Pull(ctx)
		} else {
			err = sess.Push(ctx)
		}
		return SyncDoneMsg{Op: op, Err: err}
	}
}

// notifyOverdue raises a desktop reminder when the connected user has overdue tasks
func (m RootModel) notifyOverdue() {
	store := m.sess.Tasks()
	if store == nil || m.app.Notifier == nil {
		return
	}
	now := time.Now()
	overdue := 0
	for _, task := range store.Tasks() {
		if task.IsOverdue(now) {
			overdue++
		}
	}
	if err := m.app.Notifier.SendOverdue(overdue); err != nil {
		m.logger.Debug("overdue notification failed", zap.Error(err))
	}
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 4
	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		switch m.currentView {
		case ViewConnect:
			content = m.connectView.View()
		case ViewList:
			content = m.listView.View()
		case ViewFocus:
			content = m.focusView.View()
		}
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("💖 sweet")

	viewStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	viewIndicator := viewStyle.Render(fmt.Sprintf("[%s]", m.currentView.String()))

	server := "local only"
	if m.app.Remote != nil && m.app.Remote.Configured() {
		server = "sync: " + m.app.Config.ServerURL
	}
	rightSide := viewStyle.Render(fmt.Sprintf("%s • theme: %s", server, t.Name))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, viewIndicator)

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}
	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the footer/status bar
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles

	hint := func(k, desc string) string {
		return styles.Key.Render(k) + styles.Desc.Render(" "+desc)
	}
	sep := styles.Sep.Render(" │ ")

	var statusLine string
	if m.errorMsg != "" {
		statusLine = styles.Failure.Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = styles.Status.Render(m.statusMsg)
	}

	var line1, line2 string
	switch m.currentView {
	case ViewConnect:
		line1 = hint("enter", "connect") + sep + hint("e", "address") + sep + hint("q", "quit")

	case ViewList:
		if m.listView.IsInputMode() {
			line1 = hint("enter", "confirm") + sep + hint("esc", "cancel")
		} else {
			line1 = hint("a", "add") + sep +
				hint("enter", "edit") + sep +
				hint("tab", "done") + sep +
				hint("d", "del") + sep +
				hint("p", "priority") + sep +
				hint("D", "due") + sep +
				hint("f", "focus")
			line2 = hint("1-3", "filter") + sep +
				hint("s", "sort") + sep +
				hint("t", "tag") + sep +
				hint("C-s/C-r", "push/pull") + sep +
				hint("X", "disconnect") + sep +
				hint("?", "help")
		}

	case ViewFocus:
		if m.focusView.IsTimerRunning() {
			line1 = hint("space", "pause") + sep + hint("r", "reset")
		} else {
			line1 = hint("space", "start") + sep + hint("r", "reset")
		}
		line1 += sep + hint("esc", "back")
		line2 = hint("C-t", "theme") + sep + hint("?", "help")
	}

	var lines []string
	if statusLine != "" {
		lines = append(lines, statusLine)
	}
	if line1 != "" {
		lines = append(lines, line1)
	}
	if line2 != "" {
		lines = append(lines, line2)
	}
	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	var b strings.Builder
	b.WriteString(titleStyle.Render("My Sweet Tasks Help"))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Quick add"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("Review PR @Work !high due:tomorrow"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("In the add form: tab switches text/due, ctrl+p cycles priority, ctrl+l cycles the tag"))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Focus timer"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("space start/pause • r reset • esc close (a running session keeps counting down)"))
	b.WriteString("\n\n")
	b.WriteString(descStyle.Render("Press ? or esc to close"))

	return b.String()
}

// cycleTheme cycles through available themes
func (m *RootModel) cycleTheme() tea.Cmd {
	next := theme.Next(theme.Current.Theme.Name)
	theme.SetTheme(next)
	return func() tea.Msg { return ThemeChangedMsg{ThemeName: next.Name} }
}
