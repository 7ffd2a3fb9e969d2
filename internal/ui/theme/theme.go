package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/sweet/internal/model"
)

// Theme is a palette. Roles are named after what they paint in the task
// list rather than after generic UI parts.
type Theme struct {
	Name string

	Background lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Highlight  lipgloss.Color // selected row
	Border     lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color // overdue tasks and failures
	Info      lipgloss.Color // pomodoro sparkles and status lines

	PriorityLow    lipgloss.Color
	PriorityMedium lipgloss.Color
	PriorityHigh   lipgloss.Color

	TagForeground lipgloss.Color
	TagBackground lipgloss.Color

	// Daily progress and the focus countdown
	ProgressFull  lipgloss.Color
	ProgressEmpty lipgloss.Color
}

// PriorityColor returns the accent for a priority. Unknown values use low.
func (t Theme) PriorityColor(p model.Priority) lipgloss.Color {
	switch p {
	case model.PriorityHigh:
		return t.PriorityHigh
	case model.PriorityMedium:
		return t.PriorityMedium
	default:
		return t.PriorityLow
	}
}

// Styles are the rendered roles of a theme
type Styles struct {
	theme Theme

	// Chrome
	Header   lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Key      lipgloss.Style
	Desc     lipgloss.Style
	Sep      lipgloss.Style
	Status   lipgloss.Style
	Failure  lipgloss.Style

	// Task rows
	Row         lipgloss.Style
	RowSelected lipgloss.Style
	RowDone     lipgloss.Style
	Cursor      lipgloss.Style
	Due         lipgloss.Style
	Overdue     lipgloss.Style
	Pomodoro    lipgloss.Style

	// Chips: tags, filter tabs
	Tag       lipgloss.Style
	TagActive lipgloss.Style
	Tab       lipgloss.Style
	TabActive lipgloss.Style

	// Forms and boxes
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	Panel        lipgloss.Style
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// chip is a padded label on a solid background
func chip(fgc, bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fgc).Background(bg).Padding(0, 1)
}

func boxed(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1)
}

// NewStyles renders t into styles
func NewStyles(t Theme) Styles {
	row := lipgloss.NewStyle().Padding(0, 1)

	return Styles{
		theme: t,

		Header:   fg(t.Primary).Bold(true).Padding(0, 1),
		Title:    fg(t.Primary).Bold(true),
		Subtitle: fg(t.Secondary).Italic(true),
		Label:    fg(t.Subtle),
		Key:      fg(t.Primary).Bold(true),
		Desc:     fg(t.Subtle),
		Sep:      fg(t.Border),
		Status:   fg(t.Info),
		Failure:  fg(t.Error),

		Row:         row.Foreground(t.Foreground),
		RowSelected: row.Foreground(t.Foreground).Background(t.Highlight),
		RowDone:     row.Foreground(t.Subtle).Strikethrough(true),
		Cursor:      fg(t.Primary).Bold(true),
		Due:         fg(t.Subtle),
		Overdue:     fg(t.Error).Bold(true),
		Pomodoro:    fg(t.Info).Bold(true),

		Tag:       chip(t.TagForeground, t.TagBackground).MarginRight(1),
		TagActive: chip(t.Background, t.Primary).Bold(true).MarginRight(1),
		Tab:       fg(t.Subtle).Padding(0, 1),
		TabActive: chip(t.Background, t.Primary).Bold(true),

		Input:        boxed(t.Border),
		InputFocused: boxed(t.Primary),
		Panel:        boxed(t.Border).Padding(1, 2),
	}
}

// PriorityMarker is the dot in front of a task
func (s Styles) PriorityMarker(p model.Priority) string {
	return fg(s.theme.PriorityColor(p)).Render("●")
}

// PriorityBadge is the priority picker in the add form
func (s Styles) PriorityBadge(p model.Priority) lipgloss.Style {
	return chip(s.theme.Background, s.theme.PriorityColor(p)).Bold(true)
}

// Current holds the active theme and its styles
var Current = struct {
	Theme  Theme
	Styles Styles
}{
	Theme:  Candy,
	Styles: NewStyles(Candy),
}

// SetTheme changes the current theme
func SetTheme(t Theme) {
	Current.Theme = t
	Current.Styles = NewStyles(t)
}

// Available lists the themes in cycling order
func Available() []Theme {
	return []Theme{Candy, Nord, Dracula}
}

// ByName returns a theme by its name
func ByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Next returns the theme after the one called name, wrapping around
func Next(name string) Theme {
	themes := Available()
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}
