package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#fe8019")
	colorDim    = lipgloss.Color("#928374")
	colorFg     = lipgloss.Color("#ebdbb2")
	colorRed    = lipgloss.Color("#fb4934")

	styleHeader = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleLabel  = lipgloss.NewStyle().Foreground(colorDim).Width(10)
	styleValue  = lipgloss.NewStyle().Foreground(colorFg)
	styleWarn   = lipgloss.NewStyle().Foreground(colorRed)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
)

// field renders one "label value" line of a summary.
func field(label, value string) string {
	return "  " + styleLabel.Render(label) + styleValue.Render(value)
}
