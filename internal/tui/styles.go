package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Title style for the header line
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4F4FB7")).
			Padding(0, 1)

	// Status style for the activity line
	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	// Spinner tint
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4F4FB7"))

	// Arrow between source and category
	ArrowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595"))

	// Category name in a move line
	CategoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#81A1C1")).
			Bold(true)

	// Error style for failed moves
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	// Help style for the footer counters
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595"))
)
