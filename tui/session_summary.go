package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"invisiguard/utils"
)

// renderOutputSummary generates the content for the right pane with scrolling
func (m Model) renderOutputSummary() string {
	var s strings.Builder

	s.WriteString(highlightStyle.Render("Session Summary") + "\n\n")

	if len(m.outputSummary) == 0 {
		s.WriteString(helpStyle.Render("Nothing checked yet.\n\nURL checks, analyses and saved\nreports will appear here as you\nwork through either workflow."))
		return s.String()
	}

	// Calculate visible area (approximate based on height)
	visibleLines := m.height - 8
	if visibleLines < 5 {
		visibleLines = 5
	}

	startIdx := m.outputScrollOffset
	if startIdx >= len(m.outputSummary) {
		startIdx = len(m.outputSummary) - 1
	}
	endIdx := startIdx + visibleLines
	if endIdx > len(m.outputSummary) {
		endIdx = len(m.outputSummary)
	}

	s.WriteString(strings.Join(m.outputSummary[startIdx:endIdx], "\n"))

	if len(m.outputSummary) > visibleLines {
		s.WriteString("\n\n" + helpStyle.Render("PgUp/PgDn, Ctrl+U/D, or mouse wheel to scroll"))
	}

	return s.String()
}

// addToOutputSummary adds an item to the output summary
func (m *Model) addToOutputSummary(item string) {
	m.outputSummary = append(m.outputSummary, item)
}

// formatSessionAction formats an action description with italic styling
func formatSessionAction(action string) string {
	return sessionActionStyle.Render(action)
}

// formatSessionStatus formats a status line with key: value format and intelligent coloring
func formatSessionStatus(key, value string) string {
	keyStyled := sessionStatusStyle.Render(key + ": ")
	valueStyled := determineValueStyle(key, value).Render(value)
	return keyStyled + valueStyled
}

// determineValueStyle picks the color for a status value
func determineValueStyle(key, value string) lipgloss.Style {
	lowerKey := strings.ToLower(key)
	lowerValue := strings.ToLower(value)

	switch lowerKey {
	case "result":
		if strings.HasPrefix(lowerValue, "phishing") {
			return sessionErrorValueStyle
		}
		return sessionSuccessValueStyle
	case "spam":
		if !strings.HasPrefix(lowerValue, "0 ") {
			return sessionWarningValueStyle
		}
		return sessionSuccessValueStyle
	case "safe", "saved", "generated":
		return sessionSuccessValueStyle
	case "file", "files", "url":
		return sessionWarningValueStyle
	}

	for _, pattern := range []string{"failed", "error", "invalid", "missing"} {
		if strings.Contains(lowerValue, pattern) {
			return sessionErrorValueStyle
		}
	}

	return sessionNeutralValueStyle
}

// addFormattedAction adds a formatted action to the output summary
func (m *Model) addFormattedAction(action string) {
	m.addToOutputSummary(formatSessionAction(action))
}

// maxSummaryValue keeps long URLs and paths to one line in the summary pane.
const maxSummaryValue = 60

// addFormattedStatusIndented adds a formatted status line with indentation
func (m *Model) addFormattedStatusIndented(key, value string) {
	m.addToOutputSummary("  " + formatSessionStatus(key, utils.TruncateString(value, maxSummaryValue)))
}
