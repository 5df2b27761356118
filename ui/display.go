package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"invisiguard/models"
	"invisiguard/utils"
)

// Color helper functions
var (
	ColorTitle     = color.New(color.FgCyan, color.Bold).SprintFunc()
	ColorSuccess   = color.New(color.FgGreen, color.Bold).SprintFunc()
	ColorError     = color.New(color.FgRed, color.Bold).SprintFunc()
	ColorWarning   = color.New(color.FgYellow).SprintFunc()
	ColorSection   = color.New(color.FgBlue, color.Bold).SprintFunc()
	ColorHighlight = color.New(color.FgCyan).SprintFunc()
	ColorDimText   = color.New(color.Faint).SprintFunc()
)

// PrintBanner displays the application banner
func PrintBanner(w io.Writer, version string) {
	fmt.Fprintln(w, ColorTitle("    ╔══════════════════════════════════════════════════╗"))
	fmt.Fprintf(w, "%s%s%s\n", ColorTitle("    ║  InvisiGuard "), ColorHighlight(fmt.Sprintf("%-36s", version)), ColorTitle("║"))
	fmt.Fprintf(w, "%s%s%s\n", ColorTitle("    ║  "), "Phishing link and email spam detection        ", ColorTitle("║"))
	fmt.Fprintln(w, ColorTitle("    ╚══════════════════════════════════════════════════╝"))
}

// PrintSectionHeader prints a formatted section header
func PrintSectionHeader(w io.Writer, title string) {
	headerContent := fmt.Sprintf("─ %s ", title)
	remainingWidth := 60 - len([]rune(headerContent))
	if remainingWidth < 0 {
		remainingWidth = 0
	}
	fmt.Fprintln(w, ColorSection("┌"+headerContent+strings.Repeat("─", remainingWidth)+"┐"))
}

// PrintSectionFooter prints a formatted section footer
func PrintSectionFooter(w io.Writer) {
	fmt.Fprintln(w, ColorSection("└"+strings.Repeat("─", 60)+"┘"))
}

func verdict(positive bool, text string) string {
	if positive {
		return ColorError(text)
	}
	return ColorSuccess(text)
}

// PrintURLResult prints the verdict for url. The type line only appears for
// phishing verdicts.
func PrintURLResult(w io.Writer, url string, r models.URLCheckResult) {
	PrintSectionHeader(w, "URL Check")
	fmt.Fprintf(w, "  URL:    %s\n", ColorHighlight(url))
	if domain := utils.RegistrableDomain(url); domain != "" {
		fmt.Fprintf(w, "  Domain: %s\n", domain)
	}
	fmt.Fprintf(w, "  Status: %s\n", verdict(r.IsPhishing(), r.Status))
	if r.IsPhishing() {
		fmt.Fprintf(w, "  Type:   %s\n", ColorWarning(r.TypeDisplay()))
	}
	PrintSectionFooter(w)
}

// PrintFakeLink prints a generated demo link as plain text so terminals can
// pick it up as a link.
func PrintFakeLink(w io.Writer, link string) {
	PrintSectionHeader(w, "Demo Phishing Link")
	fmt.Fprintf(w, "  %s\n", link)
	PrintSectionFooter(w)
}

// PrintAnalysis prints insights, the per-file results and the flattened
// geolocation table.
func PrintAnalysis(w io.Writer, analysis models.AnalysisResponse) {
	in := analysis.Insights

	PrintSectionHeader(w, "Insights")
	fmt.Fprintf(w, "  Total Files Analyzed: %d\n", in.TotalFilesAnalyzed)
	fmt.Fprintf(w, "  Spam Files Detected:  %s\n", verdict(in.SpamFilesDetected > 0, in.SpamDisplay()))
	fmt.Fprintf(w, "  Safe Files Detected:  %s\n", ColorSuccess(in.SafeDisplay()))
	PrintSectionFooter(w)

	rows := make([][]string, 0, len(analysis.Results))
	for _, r := range analysis.Results {
		rows = append(rows, []string{r.Filename, verdict(r.IsSpam(), r.SpamResult), r.ConfidenceDisplay()})
	}
	PrintSectionHeader(w, "Results")
	fmt.Fprintln(w, renderTable([]string{"File", "Spam Result", "Confidence"}, rows))
	PrintSectionFooter(w)

	PrintSectionHeader(w, "Geolocation")
	geo := models.GeolocationRows(analysis.Results)
	if len(geo) == 0 {
		fmt.Fprintln(w, ColorDimText("  No geolocation data"))
	} else {
		cells := make([][]string, 0, len(geo))
		for _, g := range geo {
			e := g.Entry
			cells = append(cells, []string{g.Filename, e.IP, e.CityDisplay(), e.CountryDisplay(), e.ISPDisplay(), e.MapLinkDisplay()})
		}
		fmt.Fprintln(w, renderTable([]string{"File", "IP", "City", "Country", "ISP", "Map"}, cells))
	}
	PrintSectionFooter(w)
}

// PrintSaved reports a file written on the user's behalf.
func PrintSaved(w io.Writer, what, path string) {
	fmt.Fprintf(w, "%s %s\n", ColorSuccess(what+" saved to"), ColorHighlight(path))
}

// PrintError prints a failure line.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", ColorError("Error:"), err)
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}

// RunWithSpinner shows an indeterminate spinner on w while fn runs. A nil
// w runs fn without any output.
func RunWithSpinner(w io.Writer, description string, fn func() error) error {
	if w == nil {
		return fn()
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	err := fn()
	close(done)
	<-stopped
	_ = bar.Finish()
	return err
}
