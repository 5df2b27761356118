package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"invisiguard/models"
	"invisiguard/utils"
	"invisiguard/workflow"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKeyMessage(msg)
	case tea.MouseMsg:
		return m.handleMouseMessage(msg)
	case spinner.TickMsg:
		if !m.inFlight() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusIsErr = false
		}
		return m, nil
	case URLCheckDone:
		return m.handleURLCheckDone(msg)
	case FakeLinkDone:
		return m.handleFakeLinkDone(msg)
	case AnalysisDone:
		return m.handleAnalysisDone(msg)
	case ExportDone:
		return m.handleExportDone(msg)
	case ResultsSaved:
		return m.handleResultsSaved(msg)
	}

	return m.updateFocusedInput(msg)
}

// handleWindowSize handles window resize events
func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width

	// Calculate pane sizes
	if m.showRightPane {
		m.leftPaneWidth = int(float64(m.width) * 0.65)
		m.rightPaneWidth = m.width - m.leftPaneWidth - 1
	} else {
		m.leftPaneWidth = m.width
		m.rightPaneWidth = 0
	}

	return m, nil
}

// handleKeyMessage handles keyboard input for the active workflow
func (m Model) handleKeyMessage(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ScrollUp):
		m.scrollSummary(-5)
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.scrollSummary(5)
		return m, nil
	case key.Matches(msg, m.keys.NextTab, m.keys.PrevTab):
		return m.selectTab(nextWorkflow(m.active()))
	}

	if m.active() == workflow.EmailAnalysisWorkflow {
		return m.updateEmailAnalysis(msg)
	}
	return m.updateURLCheck(msg)
}

// handleMouseMessage scrolls the summary pane with the wheel
func (m Model) handleMouseMessage(msg tea.MouseMsg) (Model, tea.Cmd) {
	if !m.showRightPane {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scrollSummary(-2)
	case tea.MouseButtonWheelDown:
		m.scrollSummary(2)
	}
	return m, nil
}

func (m *Model) scrollSummary(delta int) {
	maxScroll := len(m.outputSummary) - 10 // Approximate visible lines
	if maxScroll < 0 {
		maxScroll = 0
	}
	m.outputScrollOffset += delta
	if m.outputScrollOffset < 0 {
		m.outputScrollOffset = 0
	}
	if m.outputScrollOffset > maxScroll {
		m.outputScrollOffset = maxScroll
	}
}

func nextWorkflow(id workflow.WorkflowID) workflow.WorkflowID {
	if id == workflow.URLCheckWorkflow {
		return workflow.EmailAnalysisWorkflow
	}
	return workflow.URLCheckWorkflow
}

// selectTab switches workflows. Both workflows start over, inputs included.
func (m Model) selectTab(id workflow.WorkflowID) (Model, tea.Cmd) {
	m.session.Tabs.Select(id)
	m.urlInput.Reset()
	m.fileInput.Reset()
	m.status = ""
	m.statusIsErr = false

	m.addFormattedAction("Switched to " + id.String())
	m.logger.Debug("Tab selected", zap.Stringer("workflow", id))

	if id == workflow.EmailAnalysisWorkflow {
		m.urlInput.Blur()
		cmd := m.fileInput.Focus()
		return m, cmd
	}
	m.fileInput.Blur()
	cmd := m.urlInput.Focus()
	return m, cmd
}

// updateFocusedInput forwards anything else, such as cursor blinks, to
// the input of the active workflow.
func (m Model) updateFocusedInput(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.active() == workflow.EmailAnalysisWorkflow {
		m.fileInput, cmd = m.fileInput.Update(msg)
		return m, cmd
	}
	m.urlInput, cmd = m.urlInput.Update(msg)
	m.session.URLCheck.SetURL(m.urlInput.Value())
	return m, cmd
}

// URL check workflow

func (m Model) updateURLCheck(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Check):
		url := m.urlInput.Value()
		m.session.URLCheck.SetURL(url)
		wasRunning := m.inFlight()
		m.checking++
		return m, tea.Batch(checkURLCmd(m.ctx, m.session, url), m.startSpinner(wasRunning))
	case key.Matches(msg, m.keys.FakeLink):
		wasRunning := m.inFlight()
		m.generating++
		return m, tea.Batch(generateFakeLinkCmd(m.ctx, m.session), m.startSpinner(wasRunning))
	}

	return m.updateFocusedInput(msg)
}

func (m Model) handleURLCheckDone(msg URLCheckDone) (Model, tea.Cmd) {
	if m.checking > 0 {
		m.checking--
	}

	m.addFormattedAction("URL check")
	m.addFormattedStatusIndented("URL", displayOrEmpty(msg.URL))
	if domain := utils.RegistrableDomain(msg.URL); domain != "" {
		m.addFormattedStatusIndented("Domain", domain)
	}
	if msg.Outcome.Failed() || msg.Error != nil {
		m.addFormattedStatusIndented("Status", failedLabel(msg.Outcome))
		if msg.Error != nil {
			cmd := m.setStatus("URL check failed: "+msg.Error.Error(), true)
			return m, cmd
		}
		return m, nil
	}
	if !msg.Outcome.Stored {
		m.addFormattedStatusIndented("Status", "discarded")
		return m, nil
	}

	m.addFormattedStatusIndented("Result", msg.Result.String())
	return m, nil
}

func (m Model) handleFakeLinkDone(msg FakeLinkDone) (Model, tea.Cmd) {
	if m.generating > 0 {
		m.generating--
	}

	m.addFormattedAction("Fake link")
	if msg.Outcome.Failed() || msg.Error != nil {
		m.addFormattedStatusIndented("Status", failedLabel(msg.Outcome))
		if msg.Error != nil {
			cmd := m.setStatus("Fake link generation failed: "+msg.Error.Error(), true)
			return m, cmd
		}
		return m, nil
	}
	if !msg.Outcome.Stored {
		m.addFormattedStatusIndented("Status", "discarded")
		return m, nil
	}

	m.addFormattedStatusIndented("Generated", msg.Link.URL)
	return m, nil
}

// Email analysis workflow

func (m Model) updateEmailAnalysis(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.SelectFile):
		return m.selectFiles()
	case key.Matches(msg, m.keys.Analyze):
		return m.startAnalysis()
	case key.Matches(msg, m.keys.Export):
		return m.startExport()
	case key.Matches(msg, m.keys.Save):
		return m.saveResults()
	}

	return m.updateFocusedInput(msg)
}

func (m Model) selectFiles() (Model, tea.Cmd) {
	files, err := utils.ExpandFileArgs([]string{m.fileInput.Value()})
	if err != nil {
		cmd := m.setStatus(err.Error(), true)
		return m, cmd
	}
	if len(files) == 0 {
		cmd := m.setStatus("Enter one or more file paths", true)
		return m, cmd
	}

	m.session.EmailAnalysis.SelectFiles(files)
	m.fileInput.Reset()

	m.addFormattedAction("Files selected")
	m.addFormattedStatusIndented("Files", fmt.Sprintf("%d", len(files)))
	cmd := m.setStatus(fmt.Sprintf("%d file(s) selected", len(files)), false)
	return m, cmd
}

func (m Model) startAnalysis() (Model, tea.Cmd) {
	snap := m.session.Snapshot().EmailAnalysis
	if m.analyzing || snap.Busy {
		cmd := m.setStatus("An analysis is already in progress", true)
		return m, cmd
	}
	if len(snap.SelectedFiles) == 0 {
		cmd := m.setStatus("Select files before analyzing", true)
		return m, cmd
	}

	wasRunning := m.inFlight()
	m.analyzing = true
	return m, tea.Batch(analyzeCmd(m.ctx, m.session, snap.SelectedFiles.Names()), m.startSpinner(wasRunning))
}

func (m Model) handleAnalysisDone(msg AnalysisDone) (Model, tea.Cmd) {
	m.analyzing = false

	if errors.Is(msg.Error, workflow.ErrAnalysisInFlight) {
		cmd := m.setStatus("An analysis is already in progress", true)
		return m, cmd
	}

	m.addFormattedAction("Spam analysis")
	m.addFormattedStatusIndented("Files", fmt.Sprintf("%d", len(msg.Files)))
	if msg.Outcome.Failed() || msg.Error != nil {
		m.addFormattedStatusIndented("Status", failedLabel(msg.Outcome))
		if msg.Error != nil {
			cmd := m.setStatus("Analysis failed: "+msg.Error.Error(), true)
			return m, cmd
		}
		return m, nil
	}
	if !msg.Outcome.Stored {
		m.addFormattedStatusIndented("Status", "discarded")
		return m, nil
	}

	m.addFormattedStatusIndented("Spam", msg.Insights.SpamDisplay())
	m.addFormattedStatusIndented("Safe", msg.Insights.SafeDisplay())
	m.addFormattedStatusIndented("Elapsed", utils.FormatDuration(msg.Elapsed))
	return m, nil
}

func (m Model) startExport() (Model, tea.Cmd) {
	if m.exporting {
		cmd := m.setStatus("An export is already in progress", true)
		return m, cmd
	}

	wasRunning := m.inFlight()
	m.exporting = true
	return m, tea.Batch(exportCmd(m.ctx, m.session), m.startSpinner(wasRunning))
}

func (m Model) handleExportDone(msg ExportDone) (Model, tea.Cmd) {
	m.exporting = false

	if msg.Error != nil {
		m.addFormattedAction("PDF report")
		m.addFormattedStatusIndented("Status", "failed")
		cmd := m.setStatus("Export failed: "+msg.Error.Error(), true)
		return m, cmd
	}
	if msg.Path == "" {
		cmd := m.setStatus("No report saved", true)
		return m, cmd
	}

	m.addFormattedAction("PDF report")
	m.addFormattedStatusIndented("Saved", msg.Path)
	cmd := m.setStatus("Report saved to "+msg.Path, false)
	return m, cmd
}

func (m Model) saveResults() (Model, tea.Cmd) {
	if m.writer == nil {
		return m, nil
	}
	snap := m.session.Snapshot().EmailAnalysis
	if snap.Insights == nil {
		cmd := m.setStatus("No results to save yet", true)
		return m, cmd
	}

	analysis := models.AnalysisResponse{Results: snap.Results, Insights: *snap.Insights}
	return m, saveResultsCmd(m.writer, m.baseURL, snap.AnalyzedFiles, analysis)
}

func (m Model) handleResultsSaved(msg ResultsSaved) (Model, tea.Cmd) {
	if msg.Error != nil {
		m.logger.Warn("Saving results failed", zap.Error(msg.Error))
		cmd := m.setStatus("Saving results failed: "+msg.Error.Error(), true)
		return m, cmd
	}

	m.addFormattedAction("Results saved")
	m.addFormattedStatusIndented("File", msg.Path)
	cmd := m.setStatus("Results written to "+msg.Path, false)
	return m, cmd
}

// failedLabel names the failure for the summary pane.
func failedLabel(o workflow.Outcome) string {
	if o.Failed() {
		return "failed (" + strings.ReplaceAll(o.Request.String(), "_", " ") + ")"
	}
	return "failed"
}

func displayOrEmpty(s string) string {
	if s == "" {
		return "(empty)"
	}
	return s
}
