package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - Professional blue/purple theme
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#3B82F6") // Blue
	accentColor    = lipgloss.Color("#06B6D4") // Cyan
	successColor   = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray

	// Box container
	boxStyle = lipgloss.NewStyle().
			Padding(2, 3).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Align(lipgloss.Left)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			PaddingBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(textColor).
			PaddingBottom(1)

	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(primaryColor).
			Bold(true).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Padding(0, 2)

	sectionStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true).
			PaddingTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	inputFieldStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	inputTextStyle = lipgloss.NewStyle().
			Foreground(textColor)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)

	linkStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Underline(true)

	// Status styles
	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	highlightStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// Tables
	tableBorderStyle = lipgloss.NewStyle().
				Foreground(secondaryColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Padding(0, 1)

	// Session summary pane
	sessionActionStyle = lipgloss.NewStyle().
				Foreground(accentColor).
				Italic(true)

	sessionStatusStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	sessionSuccessValueStyle = lipgloss.NewStyle().
					Foreground(successColor)

	sessionWarningValueStyle = lipgloss.NewStyle().
					Foreground(warningColor)

	sessionErrorValueStyle = lipgloss.NewStyle().
				Foreground(errorColor)

	sessionNeutralValueStyle = lipgloss.NewStyle().
					Foreground(textColor)
)

// verdictStyle colors a verdict red when it is a positive detection.
func verdictStyle(positive bool) lipgloss.Style {
	if positive {
		return errorStyle
	}
	return successStyle
}
