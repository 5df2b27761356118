package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"invisiguard/models"
	"invisiguard/utils"
	"invisiguard/workflow"
)

func (m Model) viewEmailAnalysis(state workflow.EmailAnalysisState) string {
	var s strings.Builder

	s.WriteString(subtitleStyle.Render("Classify emails as spam and trace their senders") + "\n")
	s.WriteString(m.renderLastError(state.LastError))
	s.WriteString(m.fileInput.View() + "\n")

	s.WriteString(sectionStyle.Render("Selected files") + "\n")
	if len(state.SelectedFiles) == 0 {
		s.WriteString(placeholderStyle.Render("No files selected"))
	} else {
		for _, f := range state.SelectedFiles {
			s.WriteString("  " + f.Name())
			if size := fileSizeLabel(f); size != "" {
				s.WriteString(" " + labelStyle.Render("("+size+")"))
			}
			s.WriteString("\n")
		}
	}
	if state.Busy {
		s.WriteString("\n" + warningStyle.Render("Analysis running, results will replace the tables below"))
	}
	s.WriteString("\n")

	if state.Insights == nil {
		s.WriteString(sectionStyle.Render("Results") + "\n")
		s.WriteString(placeholderStyle.Render("Select files and press ctrl+r to analyze them"))
		return s.String()
	}

	s.WriteString(sectionStyle.Render("Insights") + "\n")
	s.WriteString(renderInsights(*state.Insights) + "\n")

	s.WriteString(sectionStyle.Render("Results") + "\n")
	s.WriteString(renderResultsTable(state.Results) + "\n")

	s.WriteString(sectionStyle.Render("Geolocation") + "\n")
	s.WriteString(renderGeolocationTable(models.GeolocationRows(state.Results)))

	return s.String()
}

func renderInsights(in models.InsightsSummary) string {
	lines := []string{
		labelStyle.Render("Total Files Analyzed: ") + fmt.Sprintf("%d", in.TotalFilesAnalyzed),
		labelStyle.Render("Spam Files Detected: ") + verdictStyle(in.SpamFilesDetected > 0).Render(in.SpamDisplay()),
		labelStyle.Render("Safe Files Detected: ") + successStyle.Render(in.SafeDisplay()),
	}
	return strings.Join(lines, "\n")
}

func renderResultsTable(results []models.EmailAnalysisResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Filename, r.SpamResult, r.ConfidenceDisplay()})
	}

	return newTable().
		Headers("File", "Spam Result", "Confidence").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 1 && row >= 0 && row < len(results) {
				return verdictStyle(results[row].IsSpam()).Padding(0, 1)
			}
			return tableCellStyle
		}).
		String()
}

func renderGeolocationTable(rows []models.GeolocationRow) string {
	if len(rows) == 0 {
		return placeholderStyle.Render("No geolocation data")
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		e := r.Entry
		cells = append(cells, []string{r.Filename, e.IP, e.CityDisplay(), e.CountryDisplay(), e.ISPDisplay(), e.MapLinkDisplay()})
	}

	return newTable().
		Headers("File", "IP", "City", "Country", "ISP", "Map").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		String()
}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle)
}

// fileSizeLabel returns the size of local files, or "" when unknown.
func fileSizeLabel(f models.FileHandle) string {
	local, ok := f.(models.LocalFile)
	if !ok {
		return ""
	}
	info, err := os.Stat(local.Path)
	if err != nil {
		return ""
	}
	return utils.FormatFileSize(info.Size())
}
