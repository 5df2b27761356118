package workflow

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"invisiguard/gateway"
	"invisiguard/models"
)

// EmailAnalysis sequences bulk spam classification. It is the only
// workflow with a reentrancy guard.
type EmailAnalysis struct {
	orchestrator
}

// SelectFiles replaces the selection. It never starts an analysis.
func (w *EmailAnalysis) SelectFiles(files models.SelectedFiles) {
	w.state.mu.Lock()
	defer w.state.mu.Unlock()
	w.state.email.SelectedFiles = files.Clone()
}

// OnAnalyze uploads the current selection. It does nothing when the
// selection is empty and returns ErrAnalysisInFlight while another
// analysis runs. Busy is held for exactly the duration of the call.
func (w *EmailAnalysis) OnAnalyze(ctx context.Context) error {
	_, _, err := w.Analyze(ctx)
	return err
}

// Analyze is OnAnalyze returning the response of this call and whether it
// replaced the visible results.
func (w *EmailAnalysis) Analyze(ctx context.Context) (models.AnalysisResponse, Outcome, error) {
	w.state.mu.Lock()
	files := w.state.email.SelectedFiles.Clone()
	if len(files) == 0 {
		w.state.mu.Unlock()
		w.logger.Debug("Analyze requested with no files selected")
		return models.AnalysisResponse{}, Outcome{}, nil
	}
	if w.state.email.Busy {
		w.state.mu.Unlock()
		return models.AnalysisResponse{}, Outcome{}, ErrAnalysisInFlight
	}
	w.state.email.Busy = true
	epoch := w.state.epoch
	w.state.mu.Unlock()

	defer w.release()

	w.logger.Info("Analyzing files", zap.Strings("files", files.Names()))

	analysis, err := w.gw.AnalyzeFiles(ctx, files)
	if err != nil {
		outcome := Outcome{Request: gateway.OutcomeOf(err)}
		err = w.fail(gateway.OpAnalyzeFiles, epoch, err, func(err error) {
			w.state.email.LastError = err
		})
		return models.AnalysisResponse{}, outcome, err
	}

	return analysis, Outcome{Stored: w.store(epoch, files, analysis)}, nil
}

// store replaces results, insights and the analyzed set in one step. It
// reports false when a reset made the response stale.
func (w *EmailAnalysis) store(epoch uint64, files models.SelectedFiles, analysis models.AnalysisResponse) bool {
	w.state.mu.Lock()
	defer w.state.mu.Unlock()

	if !w.state.current(epoch) {
		w.stale(gateway.OpAnalyzeFiles)
		return false
	}

	insights := analysis.Insights
	w.state.email.Results = slices.Clone(analysis.Results)
	w.state.email.Insights = &insights
	w.state.email.AnalyzedFiles = files
	w.state.email.LastError = nil

	w.logger.Info("Analysis complete",
		zap.Int("total", insights.TotalFilesAnalyzed),
		zap.Int("spam", insights.SpamFilesDetected),
		zap.Int("safe", insights.SafeFilesDetected))
	return true
}

func (w *EmailAnalysis) release() {
	w.state.mu.Lock()
	defer w.state.mu.Unlock()
	w.state.email.Busy = false
}
