// Package ui provides a terminal dashboard for a running fuzz session.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorMagenta = lipgloss.Color("#FF00FF")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorRed     = lipgloss.Color("#FF0055")

	ColorHeaderBg = lipgloss.Color("#16213E")
	ColorDimText  = lipgloss.Color("#666666")
	ColorBright   = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMagenta).
			Background(ColorHeaderBg).
			Padding(0, 2)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorCyan).
			Padding(1, 2).
			MarginRight(1)

	LogPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGreen).
			Padding(0, 1).
			Height(10)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorDimText).
			Width(16)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorBright).
			Bold(true)

	RunningStyle = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	StoppedStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	CrashStyle   = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	HelpStyle    = lipgloss.NewStyle().Foreground(ColorDimText)
	KeyStyle     = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	FooterStyle  = lipgloss.NewStyle().Foreground(ColorDimText).MarginTop(1)

	ProgressFullStyle  = lipgloss.NewStyle().Foreground(ColorCyan)
	ProgressEmptyStyle = lipgloss.NewStyle().Foreground(ColorDimText)
)

// RenderLabelValue renders a label-value pair with consistent styling.
func RenderLabelValue(label, value string) string {
	return LabelStyle.Render(label+":") + " " + ValueStyle.Render(value)
}

// RenderHelp renders one footer key/description hint.
func RenderHelp(key, description string) string {
	return KeyStyle.Render("["+key+"]") + " " + HelpStyle.Render(description)
}
