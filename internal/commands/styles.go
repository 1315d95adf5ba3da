package commands

import "github.com/charmbracelet/lipgloss"

// Color constants for terminal output
const (
	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#B1B8C7"
	ColorDisabledText  = "#6D7383"
	ColorAccentMain    = "#7C3AED"
	ColorAccentBright  = "#A78BFA"
	ColorSuccess       = "#22C55E"
	ColorWarning       = "#F59E0B"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentMain))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText)).Strikethrough(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	checkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))

	sectionStyles = map[string]lipgloss.Style{
		"today":    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning)),
		"tomorrow": lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)),
	}
)
