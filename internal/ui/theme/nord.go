package theme

import "github.com/charmbracelet/lipgloss"

// Nord palette, https://www.nordtheme.com/docs/colors-and-palettes
const (
	nord0  = lipgloss.Color("#2E3440")
	nord1  = lipgloss.Color("#3B4252")
	nord3  = lipgloss.Color("#4C566A")
	nord4  = lipgloss.Color("#D8DEE9")
	nord8  = lipgloss.Color("#88C0D0")
	nord9  = lipgloss.Color("#81A1C1")
	nord10 = lipgloss.Color("#5E81AC")
	nord11 = lipgloss.Color("#BF616A")
	nord12 = lipgloss.Color("#D08770")
	nord13 = lipgloss.Color("#EBCB8B")
	nord14 = lipgloss.Color("#A3BE8C")
	nord15 = lipgloss.Color("#B48EAD")
)

// Nord is the cool variant: frost for actions, aurora purple for tags
var Nord = Theme{
	Name: "nord",

	Background: nord0,
	Foreground: nord4,
	Subtle:     nord3,
	Highlight:  nord1,
	Border:     nord3,

	Primary:   nord8,
	Secondary: nord9,
	Info:      nord10,

	Success: nord14,
	Warning: nord13,
	Error:   nord11,

	PriorityLow:    nord14,
	PriorityMedium: nord13,
	PriorityHigh:   nord12,

	TagForeground: nord15,
	TagBackground: nord1,

	ProgressFull:  nord15,
	ProgressEmpty: nord1,
}
