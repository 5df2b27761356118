package workflow

import (
	"context"

	"go.uber.org/zap"

	"invisiguard/gateway"
	"invisiguard/metrics"
	"invisiguard/models"
)

// opSaveReport labels failures of the local save step.
const opSaveReport = "save_report"

// ExportTrigger turns a rendered report into a saved file.
type ExportTrigger struct {
	orchestrator
	saver Saver
}

// OnExport requests a report for the files chosen by the export target and
// saves it. It returns the saved path, or "" when nothing was saved. It
// never changes workflow results.
func (e *ExportTrigger) OnExport(ctx context.Context) (string, error) {
	e.state.mu.Lock()
	files := e.exportFiles()
	epoch := e.state.epoch
	e.state.mu.Unlock()

	if len(files) == 0 {
		e.logger.Debug("Export requested with no files")
		return "", nil
	}

	payload, err := e.gw.ExportReport(ctx, files)
	if err != nil {
		return "", e.fail(gateway.OpExportReport, epoch, err, e.recordError)
	}
	defer payload.Body.Close()

	path, err := e.saver.Save(e.opts.ReportName, payload.Body)
	if err != nil {
		return "", e.fail(opSaveReport, epoch, err, e.recordError)
	}

	metrics.ReportsSavedTotal.Inc()
	e.logger.Info("Report saved",
		zap.String("path", path),
		zap.Strings("files", files.Names()))
	return path, nil
}

// exportFiles picks the file set. Caller holds mu.
func (e *ExportTrigger) exportFiles() models.SelectedFiles {
	if e.opts.ExportTarget == ExportLastAnalyzed {
		return e.state.email.AnalyzedFiles.Clone()
	}
	return e.state.email.SelectedFiles.Clone()
}

func (e *ExportTrigger) recordError(err error) {
	e.state.email.LastError = err
}
