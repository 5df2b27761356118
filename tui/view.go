package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"invisiguard/workflow"
)

// View implements tea.Model
func (m Model) View() string {
	snap := m.session.Snapshot()

	var s strings.Builder
	s.WriteString(titleStyle.Render("InvisiGuard") + "\n")
	s.WriteString(m.renderTabs(snap.Active) + "\n\n")

	switch snap.Active {
	case workflow.EmailAnalysisWorkflow:
		s.WriteString(m.viewEmailAnalysis(snap.EmailAnalysis))
		s.WriteString("\n\n" + m.renderStatus())
		s.WriteString("\n" + m.help.View(m.keys.emailHelp()))
	default:
		s.WriteString(m.viewURLCheck(snap.URLCheck))
		s.WriteString("\n\n" + m.renderStatus())
		s.WriteString("\n" + m.help.View(m.keys.urlCheckHelp()))
	}

	return m.renderWithDynamicWidth(s.String())
}

func (m Model) renderTabs(active workflow.WorkflowID) string {
	var tabs []string
	for _, id := range []workflow.WorkflowID{workflow.URLCheckWorkflow, workflow.EmailAnalysisWorkflow} {
		if id == active {
			tabs = append(tabs, activeTabStyle.Render(id.String()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(id.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderStatus shows the spinner while requests run, then the last status.
func (m Model) renderStatus() string {
	var parts []string
	if m.inFlight() {
		parts = append(parts, m.spinner.View()+" "+m.inFlightLabel())
	}
	if m.status != "" {
		if m.statusIsErr {
			parts = append(parts, errorStyle.Render(m.status))
		} else {
			parts = append(parts, successStyle.Render(m.status))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) inFlightLabel() string {
	switch {
	case m.analyzing:
		return "Analyzing emails..."
	case m.exporting:
		return "Generating report..."
	case m.checking > 0:
		return "Checking..."
	default:
		return "Generating link..."
	}
}

// renderLastError shows the error recorded for a workflow, if any.
func (m Model) renderLastError(err error) string {
	if err == nil {
		return ""
	}
	lines := wrapText(err.Error(), m.leftPaneWidth-8)
	return errorStyle.Render("Last request failed:") + "\n" + strings.Join(lines, "\n") + "\n\n"
}

// renderWithDynamicWidth renders content with two-pane layout
func (m Model) renderWithDynamicWidth(content string) string {
	if m.width > 0 && m.height > 0 {
		if m.showRightPane && m.leftPaneWidth > 0 && m.rightPaneWidth > 0 {
			return m.renderTwoPaneLayout(content)
		}
		return m.renderSinglePaneLayout(content)
	}

	// Fallback to original style if dimensions not set
	return boxStyle.Render(content)
}

// renderSinglePaneLayout renders content in single pane mode
func (m Model) renderSinglePaneLayout(content string) string {
	marginHorizontal := 2
	marginVertical := 1

	contentWidth := m.width - (marginHorizontal * 2) - 2 // 2 for border
	contentHeight := m.height - (marginVertical * 2) - 2

	if contentWidth < 50 {
		contentWidth = 50
	}
	if contentHeight < 10 {
		contentHeight = 10
	}

	mainStyle := lipgloss.NewStyle().
		Width(contentWidth).
		Height(contentHeight).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Align(lipgloss.Left)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(marginVertical, marginHorizontal).
		Render(mainStyle.Render(content))
}

// renderTwoPaneLayout renders content with left and right panes
func (m Model) renderTwoPaneLayout(content string) string {
	marginVertical := 1
	contentHeight := m.height - (marginVertical * 2) - 2 // 2 for border

	if contentHeight < 10 {
		contentHeight = 10
	}

	leftWidth := m.leftPaneWidth - 4 // Account for border and padding
	rightWidth := m.rightPaneWidth - 4

	leftPane := lipgloss.NewStyle().
		Width(leftWidth).
		Height(contentHeight).
		Padding(1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Render(content)

	rightPane := lipgloss.NewStyle().
		Width(rightWidth).
		Height(contentHeight).
		Padding(1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Render(m.renderOutputSummary())

	combinedPanes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, " ", rightPane)

	return lipgloss.NewStyle().
		Padding(marginVertical, 1).
		Render(combinedPanes)
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if width <= 0 || len(text) <= width {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() > 0 && currentLine.Len()+len(word)+1 > width {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
		}

		if currentLine.Len() > 0 {
			currentLine.WriteString(" ")
		}
		currentLine.WriteString(word)
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return lines
}
