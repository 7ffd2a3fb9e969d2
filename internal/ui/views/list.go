package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/sweet/internal/model"
	"github.com/dori/sweet/internal/session"
	"github.com/dori/sweet/internal/tasks"
	"github.com/dori/sweet/internal/ui/theme"
)

// ListMode represents the current input mode of the list view
type ListMode int

const (
	ListModeNormal ListMode = iota
	ListModeAdd
	ListModeEdit
	ListModeDue
	ListModeConfirmDelete
	ListModeTagFilter
	ListModeTagToggle
)

// PresetTags are offered by the add form before any task carries a tag
var PresetTags = []string{"Work", "Personal", "Study"}

// Add form fields
const (
	fieldText = iota
	fieldDue
)

// ListView displays the connected user's tasks
type ListView struct {
	sess   *session.Session
	now    func() time.Time
	width  int
	height int

	tasks        []model.Task // Projected under the current preferences
	cursor       int
	scrollOffset int

	mode      ListMode
	input     textinput.Model
	dueInput  textinput.Model
	formField int
	priority  model.Priority
	formTag   string
	editingID int64
	deleteID  int64
	statusMsg string

	// Tag selectors
	selectorItems  []string
	selectorCursor int

	progress progress.Model
}

// NewListView creates a new list view
func NewListView(sess *session.Session) ListView {
	ti := textinput.New()
	ti.Placeholder = "Plan a fabulous day..."
	ti.CharLimit = 256

	due := textinput.New()
	due.Placeholder = "due (tomorrow, fri, 2024-06-01)"
	due.CharLimit = 32

	return ListView{
		sess:     sess,
		now:      time.Now,
		input:    ti,
		dueInput: due,
		priority: model.PriorityMedium,
		progress: progress.New(progress.WithSolidFill(string(theme.Current.Theme.ProgressFull)), progress.WithoutPercentage()),
	}
}

// WithClock replaces the clock used for dates and progress
func (v ListView) WithClock(now func() time.Time) ListView {
	v.now = now
	return v
}

// Init loads the tasks of the connected user
func (v ListView) Init() tea.Cmd {
	return func() tea.Msg { return TasksChangedMsg{} }
}

// IsInputMode returns true when the view is capturing keys for a form,
// confirmation or selector
func (v ListView) IsInputMode() bool {
	return v.mode != ListModeNormal
}

// Mode returns the current input mode
func (v ListView) Mode() ListMode {
	return v.mode
}

// Tasks returns the tasks currently shown
func (v ListView) Tasks() []model.Task {
	return v.tasks
}

// Cursor returns the index of the highlighted task
func (v ListView) Cursor() int {
	return v.cursor
}

// SetSize updates the view dimensions
func (v ListView) SetSize(width, height int) ListView {
	v.width = width
	v.height = height
	v.input.Width = width - 6
	v.dueInput.Width = min(40, width-6)
	v.progress.Width = min(24, max(8, width/4))
	return v
}

// headerLines is the space taken above the task rows
func (v ListView) headerLines() int {
	lines := 8
	if v.mode == ListModeAdd {
		lines += 4
	}
	if v.statusMsg != "" {
		lines += 2
	}
	return lines
}

// visibleTaskCount returns how many tasks can fit in the viewport
func (v ListView) visibleTaskCount() int {
	available := v.height - v.headerLines()
	if available < 1 {
		available = 1
	}
	return available
}

// ensureCursorVisible adjusts scrollOffset to keep cursor in view
func (v *ListView) ensureCursorVisible() {
	visible := v.visibleTaskCount()

	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}

	maxOffset := max(0, len(v.tasks)-visible)
	v.scrollOffset = max(0, min(v.scrollOffset, maxOffset))
}

// reload re-projects the store, keeping the cursor on the same task when possible
func (v *ListView) reload() {
	var currentID int64
	if v.cursor < len(v.tasks) {
		currentID = v.tasks[v.cursor].ID
	}

	v.tasks = v.sess.View()

	v.cursor = min(v.cursor, max(0, len(v.tasks)-1))
	for i, t := range v.tasks {
		if t.ID == currentID {
			v.cursor = i
			break
		}
	}
	v.ensureCursorVisible()
}

// selected returns the highlighted task
func (v ListView) selected() (model.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return model.Task{}, false
	}
	return v.tasks[v.cursor], true
}

// changed reloads after a mutation and, with auto push on, hands the new snapshot to the sync server
func (v *ListView) changed() {
	v.reload()
	v.sess.PushAsync()
}

// Update handles messages for the list view
func (v ListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksChangedMsg:
		v.reload()
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case ListModeAdd:
			return v.handleAddMode(msg)
		case ListModeEdit:
			return v.handleEditMode(msg)
		case ListModeDue:
			return v.handleDueMode(msg)
		case ListModeConfirmDelete:
			return v.handleDeleteConfirm(msg)
		case ListModeTagFilter, ListModeTagToggle:
			return v.handleTagSelector(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	return v, nil
}

// handleNormalMode handles keypresses in normal mode
func (v ListView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.statusMsg = ""
	store := v.sess.Tasks()
	if store == nil {
		return v, nil
	}

	switch msg.String() {
	// Navigation
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
			v.ensureCursorVisible()
		}
	case "down", "j":
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureCursorVisible()
		}
	case "g":
		v.cursor = 0
		v.ensureCursorVisible()
	case "G":
		v.cursor = max(0, len(v.tasks)-1)
		v.ensureCursorVisible()

	// Actions
	case "a":
		v.mode = ListModeAdd
		v.formField = fieldText
		v.input.SetValue("")
		v.input.Placeholder = "Plan a fabulous day..."
		v.dueInput.SetValue("")
		v.dueInput.Blur()
		v.priority = model.PriorityMedium
		v.formTag = ""
		cmd := v.input.Focus()
		return v, cmd

	case "enter", "e":
		task, ok := v.selected()
		if !ok {
			break
		}
		if task.Completed {
			v.statusMsg = "Completed tasks can't be edited"
			break
		}
		v.mode = ListModeEdit
		v.editingID = task.ID
		v.input.SetValue(task.Text)
		v.input.CursorEnd()
		cmd := v.input.Focus()
		return v, cmd

	case "tab", " ", "x":
		if task, ok := v.selected(); ok {
			store.Toggle(task.ID)
			v.changed()
		}

	case "d":
		if task, ok := v.selected(); ok {
			v.deleteID = task.ID
			v.mode = ListModeConfirmDelete
		}

	case "p":
		if task, ok := v.selected(); ok {
			updated, _ := store.CyclePriority(task.ID)
			v.changed()
			v.statusMsg = fmt.Sprintf("Priority: %s", updated.Priority)
		}

	case "D":
		task, ok := v.selected()
		if !ok {
			break
		}
		v.mode = ListModeDue
		v.dueInput.SetValue("")
		if task.DueDate != nil {
			v.dueInput.SetValue(task.DueDate.String())
		}
		v.dueInput.CursorEnd()
		cmd := v.dueInput.Focus()
		return v, cmd

	case "f":
		task, ok := v.selected()
		if !ok {
			break
		}
		if task.Completed {
			v.statusMsg = "Completed tasks can't be focused"
			break
		}
		id := task.ID
		return v, func() tea.Msg { return FocusTaskRequest{TaskID: id} }

	// View preferences
	case "1":
		cmd := v.setPreference(v.sess.SetFilter(model.FilterActive))
		return v, cmd
	case "2":
		cmd := v.setPreference(v.sess.SetFilter(model.FilterCompleted))
		return v, cmd
	case "3":
		cmd := v.setPreference(v.sess.SetFilter(model.FilterAll))
		return v, cmd
	case "v":
		cmd := v.setPreference(v.sess.SetFilter(v.sess.Preferences().Filter.Next()))
		return v, cmd
	case "s":
		next := v.sess.Preferences().Sort.Next()
		cmd := v.setPreference(v.sess.SetSort(next))
		v.statusMsg = "Sort by: " + sortLabel(next)
		return v, cmd
	case "t":
		v.openTagSelector(ListModeTagFilter)
	case "T":
		cmd := v.setPreference(v.sess.SetActiveTag(""))
		return v, cmd
	case "l":
		if _, ok := v.selected(); ok {
			v.openTagSelector(ListModeTagToggle)
		}
	}

	return v, nil
}

func (v *ListView) setPreference(err error) tea.Cmd {
	if err != nil {
		return errCmd(err)
	}
	v.cursor = 0
	v.scrollOffset = 0
	v.reload()
	v.sess.PushAsync()
	return nil
}

// handleAddMode handles the add form. The text also understands quick add
// tokens (@tag !priority due:date); explicit form values win.
func (v ListView) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		v.dueInput.Blur()
		return v, nil

	case "tab", "shift+tab":
		if v.formField == fieldText {
			v.formField = fieldDue
			v.input.Blur()
			cmd := v.dueInput.Focus()
			return v, cmd
		}
		v.formField = fieldText
		v.dueInput.Blur()
		cmd := v.input.Focus()
		return v, cmd

	case "ctrl+p":
		v.priority = v.priority.Next()
		return v, nil

	case "ctrl+l":
		v.formTag = nextTag(PresetTags, v.formTag)
		return v, nil

	case "enter":
		return v.submitAdd()
	}

	var cmd tea.Cmd
	if v.formField == fieldDue {
		v.dueInput, cmd = v.dueInput.Update(msg)
	} else {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v ListView) submitAdd() (tea.Model, tea.Cmd) {
	store := v.sess.Tasks()
	if store == nil {
		return v, nil
	}
	now := v.now()
	quick := tasks.ParseQuickAdd(v.input.Value(), now)

	due := quick.DueDate
	if raw := strings.TrimSpace(v.dueInput.Value()); raw != "" {
		due = tasks.ParseDue(raw, now)
		if due == nil {
			v.statusMsg = fmt.Sprintf("Unknown date %q", raw)
			return v, nil
		}
	}

	priority := v.priority
	if priority == model.PriorityMedium {
		priority = quick.Priority
	}

	tag := v.formTag
	if tag == "" {
		tag = quick.Tag()
	}

	task, ok := store.Add(quick.Text, priority, due, tag)
	if !ok {
		// Blank text keeps the form open
		return v, nil
	}
	if len(quick.Tags) > 1 {
		for _, extra := range quick.Tags[1:] {
			if extra != tag {
				task, _ = store.ToggleTag(task.ID, extra)
			}
		}
	}

	v.mode = ListModeNormal
	v.input.Blur()
	v.dueInput.Blur()
	v.changed()
	for i, t := range v.tasks {
		if t.ID == task.ID {
			v.cursor = i
			v.ensureCursorVisible()
			break
		}
	}
	return v, statusCmd("Added %q", task.Text)
}

func (v ListView) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		return v, nil
	case "enter":
		if store := v.sess.Tasks(); store != nil {
			// Blank text keeps the old text
			store.Edit(v.editingID, v.input.Value())
		}
		v.mode = ListModeNormal
		v.input.Blur()
		v.changed()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v ListView) handleDueMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.mode = ListModeNormal
		v.dueInput.Blur()
		return v, nil
	case "enter":
		task, ok := v.selected()
		store := v.sess.Tasks()
		if !ok || store == nil {
			v.mode = ListModeNormal
			return v, nil
		}
		raw := strings.TrimSpace(v.dueInput.Value())
		var due *model.Date
		if raw != "" {
			if due = tasks.ParseDue(raw, v.now()); due == nil {
				v.statusMsg = fmt.Sprintf("Unknown date %q", raw)
				return v, nil
			}
		}
		store.SetDueDate(task.ID, due)
		v.mode = ListModeNormal
		v.dueInput.Blur()
		v.changed()
		return v, nil
	}

	var cmd tea.Cmd
	v.dueInput, cmd = v.dueInput.Update(msg)
	return v, cmd
}

func (v ListView) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = ListModeNormal
		if store := v.sess.Tasks(); store != nil {
			store.Delete(v.deleteID)
		}
		v.deleteID = 0
		v.changed()
	case "n", "N", "esc":
		v.mode = ListModeNormal
		v.deleteID = 0
	}
	return v, nil
}

// openTagSelector lists the preset tags followed by any others in use
func (v *ListView) openTagSelector(mode ListMode) {
	items := append([]string(nil), PresetTags...)
	if store := v.sess.Tasks(); store != nil {
		for _, tag := range store.Tags() {
			if !containsString(items, tag) {
				items = append(items, tag)
			}
		}
	}
	v.selectorItems = items
	v.selectorCursor = 0
	if mode == ListModeTagFilter {
		for i, tag := range items {
			if tag == v.sess.Preferences().Tag() {
				v.selectorCursor = i
			}
		}
	}
	v.mode = mode
}

func (v ListView) handleTagSelector(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		v.mode = ListModeNormal
		return v, nil
	case "up", "k":
		if v.selectorCursor > 0 {
			v.selectorCursor--
		}
	case "down", "j":
		if v.selectorCursor < len(v.selectorItems)-1 {
			v.selectorCursor++
		}
	case "enter", " ":
		if v.selectorCursor >= len(v.selectorItems) {
			v.mode = ListModeNormal
			return v, nil
		}
		tag := v.selectorItems[v.selectorCursor]

		if v.mode == ListModeTagFilter {
			v.mode = ListModeNormal
			cmd := v.setPreference(v.sess.ToggleActiveTag(tag))
			return v, cmd
		}

		task, ok := v.selected()
		store := v.sess.Tasks()
		if ok && store != nil {
			store.ToggleTag(task.ID, tag)
			v.changed()
		}
		// Toggling stays open so several tags can be flipped
		if msg.String() == "enter" {
			v.mode = ListModeNormal
		}
	}
	return v, nil
}

// View renders the list screen
func (v ListView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")

	switch v.mode {
	case ListModeAdd:
		b.WriteString(v.renderAddForm())
		b.WriteString("\n")
	case ListModeEdit:
		b.WriteString(styles.Label.Render("Edit task (enter to save, esc to cancel)"))
		b.WriteString("\n")
		b.WriteString(styles.InputFocused.Render(v.input.View()))
		b.WriteString("\n")
	case ListModeDue:
		b.WriteString(styles.Label.Render("Due date (empty clears it)"))
		b.WriteString("\n")
		b.WriteString(styles.InputFocused.Render(v.dueInput.View()))
		b.WriteString("\n")
	default:
		b.WriteString(styles.Label.Render("Press 'a' to plan a fabulous day..."))
		b.WriteString("\n")
	}

	b.WriteString(v.renderFilterBar())
	b.WriteString("\n\n")

	if v.mode == ListModeConfirmDelete {
		confirmStyle := lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true)
		text := "this task"
		if task, ok := v.selected(); ok {
			text = fmt.Sprintf("%q", task.Text)
		}
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Delete %s? This can't be undone. (y/n)", text)))
		b.WriteString("\n\n")
	}

	if v.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(t.Info).
			Italic(true)
		b.WriteString(statusStyle.Render(v.statusMsg))
		b.WriteString("\n\n")
	}

	if v.mode == ListModeTagFilter || v.mode == ListModeTagToggle {
		b.WriteString(v.renderTagSelector())
		return b.String()
	}

	b.WriteString(v.renderTasks())
	return b.String()
}

// renderHeader shows who is connected and how today is going
func (v ListView) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	now := v.now()

	user, _ := v.sess.User()
	nameStyle := lipgloss.NewStyle().Foreground(t.Foreground).Bold(true)
	addrStyle := lipgloss.NewStyle().Foreground(t.Subtle)
	who := nameStyle.Render(user.DisplayName) + " " + addrStyle.Render(model.ShortAddress(user.Address))

	store := v.sess.Tasks()
	var done, active, overdue int
	var ratio float64
	if store != nil {
		done = store.CompletedOn(now)
		active = store.ActiveCount()
		ratio = store.DailyProgress(now)
		for _, task := range store.Tasks() {
			if task.IsOverdue(now) {
				overdue++
			}
		}
	}

	p := v.progress
	p.FullColor = string(t.ProgressFull)
	p.EmptyColor = string(t.ProgressEmpty)
	today := p.ViewAs(ratio) + " " + styles.Key.Render(fmt.Sprintf("%d", done)) + styles.Label.Render(" done today")

	line1 := spread(v.width, who, today)

	title := styles.Title.Render("My Sweet Tasks") + "  " + styles.Subtitle.Render(now.Format("Monday, January 2"))
	counts := styles.Label.Render(fmt.Sprintf("%d active", active))
	if overdue > 0 {
		counts += "  " + styles.Overdue.Render(fmt.Sprintf("%d overdue", overdue))
	}
	line2 := spread(v.width, title, counts)

	return line1 + "\n" + line2
}

func (v ListView) renderAddForm() string {
	styles := theme.Current.Styles

	textStyle, dueStyle := styles.InputFocused, styles.Input
	if v.formField == fieldDue {
		textStyle, dueStyle = styles.Input, styles.InputFocused
	}

	priorityStyle := styles.PriorityBadge(v.priority)

	var tags []string
	for _, tag := range PresetTags {
		if tag == v.formTag {
			tags = append(tags, styles.TagActive.Render(tag))
		} else {
			tags = append(tags, styles.Tag.Render(tag))
		}
	}

	controls := lipgloss.JoinHorizontal(lipgloss.Center,
		priorityStyle.Render(strings.ToUpper(string(v.priority))+" PRIORITY"),
		"  ",
		strings.Join(tags, ""),
	)

	hint := styles.Label.Render("enter: add • tab: text/due • ctrl+p: priority • ctrl+l: tag • esc: cancel")

	return lipgloss.JoinVertical(lipgloss.Left,
		textStyle.Render(v.input.View()),
		dueStyle.Render(v.dueInput.View()),
		controls,
		hint,
	)
}

func (v ListView) renderFilterBar() string {
	styles := theme.Current.Styles
	prefs := v.sess.Preferences()

	filters := []struct {
		f     model.Filter
		label string
	}{
		{model.FilterActive, "Active"},
		{model.FilterCompleted, "Completed"},
		{model.FilterAll, "All"},
	}

	var tabs []string
	for _, f := range filters {
		if prefs.Filter == f.f {
			tabs = append(tabs, styles.TabActive.Render(f.label))
		} else {
			tabs = append(tabs, styles.Tab.Render(f.label))
		}
	}

	right := styles.Label.Render("Sort by: ") + styles.Key.Render(sortLabel(prefs.Sort))
	if tag := prefs.Tag(); tag != "" {
		right += "  " + styles.TagActive.Render(tag)
	}

	return spread(v.width, strings.Join(tabs, " "), right)
}

func (v ListView) renderTasks() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	prefs := v.sess.Preferences()

	emptyStyle := lipgloss.NewStyle().
		Foreground(t.Secondary).
		Italic(true).
		Padding(1, 0)

	store := v.sess.Tasks()
	total, active := 0, 0
	if store != nil {
		total, active = store.Len(), store.ActiveCount()
	}

	if active == 0 && total > 0 && prefs.Filter == model.FilterActive {
		celebrate := lipgloss.JoinVertical(lipgloss.Center,
			"💖",
			lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render("All active tasks done!"),
			styles.Label.Render("Great job, you're amazing!"),
		)
		return lipgloss.NewStyle().Width(v.width).Align(lipgloss.Center).Padding(1, 0).Render(celebrate)
	}

	if len(v.tasks) == 0 {
		switch {
		case total == 0:
			return emptyStyle.Render("Plan a fabulous day!")
		case prefs.Filter == model.FilterCompleted:
			return emptyStyle.Render("You haven't completed any tasks yet.")
		case prefs.Tag() != "":
			return emptyStyle.Render(fmt.Sprintf("No tasks with the tag %q found.", prefs.Tag()))
		default:
			return emptyStyle.Render("No tasks here.")
		}
	}

	var b strings.Builder
	visible := v.visibleTaskCount()
	endIdx := min(len(v.tasks), v.scrollOffset+visible)

	if v.scrollOffset > 0 {
		b.WriteString(styles.Label.Render(fmt.Sprintf("  ↑ %d more above", v.scrollOffset)))
		b.WriteString("\n")
	}

	for i := v.scrollOffset; i < endIdx; i++ {
		b.WriteString(v.renderTask(v.tasks[i], i == v.cursor))
		b.WriteString("\n")
	}

	if remaining := len(v.tasks) - endIdx; remaining > 0 {
		b.WriteString(styles.Label.Render(fmt.Sprintf("  ↓ %d more below", remaining)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderTask renders one row: checkbox, priority marker, text, pomodoros, due date, tags
func (v ListView) renderTask(task model.Task, focused bool) string {
	styles := theme.Current.Styles
	now := v.now()

	check := "[ ]"
	if task.Completed {
		check = "[✓]"
	}

	marker := styles.PriorityMarker(task.Priority)

	textStyle := styles.Row
	if task.Completed {
		textStyle = styles.RowDone
	}
	line := check + " " + marker + textStyle.Render(task.Text)

	if task.Pomodoros > 0 {
		line += styles.Pomodoro.Render(strings.Repeat("✨", task.Pomodoros))
	}

	if task.PomodoroPausedAt != nil {
		line += " " + styles.Label.Render(fmt.Sprintf("⏸ %s", formatClock(*task.PomodoroPausedAt)))
	}

	if task.DueDate != nil {
		due := tasks.FormatDue(*task.DueDate, now)
		if task.IsOverdue(now) {
			line += " " + styles.Overdue.Render("due "+due)
		} else {
			line += " " + styles.Due.Render("due "+due)
		}
	}

	for _, tag := range task.Tags {
		line += " " + styles.Tag.Render(tag)
	}

	if focused {
		cursor := styles.Cursor.Render("▸ ")
		return cursor + styles.RowSelected.MaxWidth(max(1, v.width-2)).Render(line)
	}
	return "  " + lipgloss.NewStyle().Padding(0, 1).MaxWidth(max(1, v.width-2)).Render(line)
}

func (v ListView) renderTagSelector() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := "Show tasks tagged:"
	if v.mode == ListModeTagToggle {
		title = "Toggle tag:"
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")

	task, _ := v.selected()
	activeTag := v.sess.Preferences().Tag()

	for i, tag := range v.selectorItems {
		cursor := "  "
		if i == v.selectorCursor {
			cursor = "> "
		}

		var check string
		if v.mode == ListModeTagToggle {
			check = "[ ] "
			if task.HasTag(tag) {
				check = "[x] "
			}
		} else if tag == activeTag {
			check = "● "
		}

		tagStyle := lipgloss.NewStyle().Foreground(t.Info)
		if i == v.selectorCursor {
			tagStyle = tagStyle.Bold(true)
		}

		b.WriteString(cursor + check + tagStyle.Render(tag))
		b.WriteString("\n")
	}

	hint := "(enter to choose, selecting the active tag clears it, esc to cancel)"
	if v.mode == ListModeTagToggle {
		hint = "(space to toggle, enter to toggle and close, esc to close)"
	}
	b.WriteString(styles.Label.Italic(true).Render(hint))
	return b.String()
}

func sortLabel(s model.Sort) string {
	switch s {
	case model.SortDueDate:
		return "Due Date"
	case model.SortPriority:
		return "Priority"
	default:
		return "Creation Date"
	}
}

// nextTag cycles "" → tags[0] → ... → tags[n-1] → ""
func nextTag(tags []string, current string) string {
	if current == "" {
		return tags[0]
	}
	for i, tag := range tags {
		if tag == current && i+1 < len(tags) {
			return tags[i+1]
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// spread places left and right on one line of the given width
func spread(width int, left, right string) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// formatClock renders seconds as mm:ss
func formatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
