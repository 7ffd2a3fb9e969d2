package theme

import "github.com/charmbracelet/lipgloss"

// Candy theme - rose and pink, the default look of sweet
var Candy = Theme{
	Name: "candy",

	Background: lipgloss.Color("#FFF1F2"), // rose-50
	Foreground: lipgloss.Color("#334155"), // slate-700
	Subtle:     lipgloss.Color("#94A3B8"), // slate-400
	Highlight:  lipgloss.Color("#FFE4E6"), // rose-100
	Border:     lipgloss.Color("#FECDD3"), // rose-200

	Primary:   lipgloss.Color("#DB2777"), // pink-600
	Secondary: lipgloss.Color("#FB7185"), // rose-400
	Info:      lipgloss.Color("#EC4899"), // pink-500

	Success: lipgloss.Color("#16A34A"),
	Warning: lipgloss.Color("#F59E0B"),
	Error:   lipgloss.Color("#DC2626"),

	PriorityLow:    lipgloss.Color("#86EFAC"),
	PriorityMedium: lipgloss.Color("#FCD34D"),
	PriorityHigh:   lipgloss.Color("#F87171"),

	TagForeground: lipgloss.Color("#BE185D"),
	TagBackground: lipgloss.Color("#FCE7F3"),

	ProgressFull:  lipgloss.Color("#EC4899"),
	ProgressEmpty: lipgloss.Color("#FFE4E6"),
}
