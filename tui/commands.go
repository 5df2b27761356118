package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"invisiguard/models"
	"invisiguard/utils"
	"invisiguard/workflow"
)

// URLCheckDone is sent when a URL check returns. Result is the verdict for
// URL and only set when Outcome.Stored.
type URLCheckDone struct {
	URL     string
	Result  models.URLCheckResult
	Outcome workflow.Outcome
	Error   error
}

// FakeLinkDone is sent when a fake link request returns.
type FakeLinkDone struct {
	Link    models.FakeLinkResult
	Outcome workflow.Outcome
	Error   error
}

// AnalysisDone is sent when a bulk analysis returns.
type AnalysisDone struct {
	Files    []string
	Insights models.InsightsSummary
	Outcome  workflow.Outcome
	Error    error
	Elapsed  time.Duration
}

// ExportDone is sent when a report export returns. Path is empty when
// nothing was saved.
type ExportDone struct {
	Path  string
	Error error
}

// ResultsSaved is sent after the YAML results file is written.
type ResultsSaved struct {
	Path  string
	Error error
}

func checkURLCmd(ctx context.Context, s *workflow.Session, url string) tea.Cmd {
	return func() tea.Msg {
		result, outcome, err := s.URLCheck.Check(ctx)
		return URLCheckDone{URL: url, Result: result, Outcome: outcome, Error: err}
	}
}

func generateFakeLinkCmd(ctx context.Context, s *workflow.Session) tea.Cmd {
	return func() tea.Msg {
		link, outcome, err := s.FakeLink.Generate(ctx)
		return FakeLinkDone{Link: link, Outcome: outcome, Error: err}
	}
}

func analyzeCmd(ctx context.Context, s *workflow.Session, files []string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		analysis, outcome, err := s.EmailAnalysis.Analyze(ctx)
		return AnalysisDone{
			Files:    files,
			Insights: analysis.Insights,
			Outcome:  outcome,
			Error:    err,
			Elapsed:  time.Since(start),
		}
	}
}

func exportCmd(ctx context.Context, s *workflow.Session) tea.Cmd {
	return func() tea.Msg {
		path, err := s.Export.OnExport(ctx)
		return ExportDone{Path: path, Error: err}
	}
}

func saveResultsCmd(w *utils.ResultsWriter, service string, files models.SelectedFiles, analysis models.AnalysisResponse) tea.Cmd {
	return func() tea.Msg {
		path, err := w.WriteAnalysis(service, files, analysis)
		return ResultsSaved{Path: path, Error: err}
	}
}
