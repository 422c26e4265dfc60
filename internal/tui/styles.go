package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F7931A")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#F7931A")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	upStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#16C784"))
	downStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EA3943"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EA3943")).Bold(true)
	starStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7C948"))
	cursorStyle = lipgloss.NewStyle().Reverse(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)
