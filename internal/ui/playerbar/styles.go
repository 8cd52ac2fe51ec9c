package playerbar

import "github.com/charmbracelet/lipgloss"

var (
	barStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	segmentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	scrubStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	filledStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)
