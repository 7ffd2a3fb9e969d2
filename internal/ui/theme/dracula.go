package theme

import "github.com/charmbracelet/lipgloss"

// Dracula palette, https://draculatheme.com/contribute
const (
	draculaBackground = lipgloss.Color("#282A36")
	draculaCurrent    = lipgloss.Color("#44475A")
	draculaForeground = lipgloss.Color("#F8F8F2")
	draculaComment    = lipgloss.Color("#6272A4")
	draculaCyan       = lipgloss.Color("#8BE9FD")
	draculaGreen      = lipgloss.Color("#50FA7B")
	draculaOrange     = lipgloss.Color("#FFB86C")
	draculaPink       = lipgloss.Color("#FF79C6")
	draculaPurple     = lipgloss.Color("#BD93F9")
	draculaRed        = lipgloss.Color("#FF5555")
	draculaYellow     = lipgloss.Color("#F1FA8C")
)

// Dracula is the dark variant that stays closest to candy: pink leads
var Dracula = Theme{
	Name: "dracula",

	Background: draculaBackground,
	Foreground: draculaForeground,
	Subtle:     draculaComment,
	Highlight:  draculaCurrent,
	Border:     draculaComment,

	Primary:   draculaPink,
	Secondary: draculaPurple,
	Info:      draculaCyan,

	Success: draculaGreen,
	Warning: draculaYellow,
	Error:   draculaRed,

	PriorityLow:    draculaGreen,
	PriorityMedium: draculaYellow,
	PriorityHigh:   draculaOrange,

	TagForeground: draculaPurple,
	TagBackground: draculaCurrent,

	ProgressFull:  draculaPink,
	ProgressEmpty: draculaCurrent,
}
