package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen  = lipgloss.Color("#879A39")
	colorOrange = lipgloss.Color("#DA702C")
	colorRed    = lipgloss.Color("#D14D41")
	colorAccent = lipgloss.Color("#3AA99F")
	colorDim    = lipgloss.Color("#6F6E69")

	successStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorOrange)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

func success(s string) string { return successStyle.Render(s) }
func warning(s string) string { return warningStyle.Render(s) }
func failure(s string) string { return errorStyle.Render(s) }
func notice(s string) string  { return noticeStyle.Render(s) }
func dim(s string) string     { return dimStyle.Render(s) }
