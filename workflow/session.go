package workflow

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"invisiguard/gateway"
	"invisiguard/metrics"
	"invisiguard/models"
)

// ErrAnalysisInFlight is returned when an analysis is requested while
// another one is still running.
var ErrAnalysisInFlight = errors.New("an analysis is already in progress")

// Gateway is the remote detection service as seen by the orchestrators.
type Gateway interface {
	BaseURL() string
	CheckURL(ctx context.Context, url string) (models.URLCheckResult, error)
	GenerateFakeURL(ctx context.Context) (string, error)
	AnalyzeFiles(ctx context.Context, files models.SelectedFiles) (models.AnalysisResponse, error)
	ExportReport(ctx context.Context, files models.SelectedFiles) (*models.ReportPayload, error)
}

// Saver hands a downloaded file to the host environment and returns where
// it ended up.
type Saver interface {
	Save(name string, r io.Reader) (string, error)
}

// ErrorPolicy decides what a failed request looks like to the user.
type ErrorPolicy int

const (
	// SwallowErrors logs the failure and leaves everything visible as is.
	SwallowErrors ErrorPolicy = iota
	// SurfaceErrors also records the failure as the workflow's LastError
	// and returns it.
	SurfaceErrors
)

// ExportTarget decides which files a report is generated for.
type ExportTarget int

const (
	// ExportCurrentSelection uses the selection at the time of export.
	ExportCurrentSelection ExportTarget = iota
	// ExportLastAnalyzed uses the files of the last successful analysis.
	ExportLastAnalyzed
)

// Outcome reports what one request did to the workflow state.
type Outcome struct {
	// Request classifies the gateway call. It is OutcomeSuccess when the
	// call succeeded or no call was made.
	Request gateway.Outcome
	// Stored is true only when the response replaced the visible state.
	// Failures, no-ops and responses dropped after a reset leave it false.
	Stored bool
}

// Failed reports whether the gateway call failed.
func (o Outcome) Failed() bool {
	return o.Request != gateway.OutcomeSuccess
}

type Options struct {
	ErrorPolicy  ErrorPolicy
	ExportTarget ExportTarget
	ReportName   string
}

// OptionsFromConfig translates the validated config values.
func OptionsFromConfig(cfg *models.Config) Options {
	opts := Options{ReportName: models.ReportFilename}
	if cfg.Workflow.ErrorPolicy == models.ErrorPolicySurface {
		opts.ErrorPolicy = SurfaceErrors
	}
	if cfg.Workflow.ExportTarget == models.ExportTargetAnalyzed {
		opts.ExportTarget = ExportLastAnalyzed
	}
	return opts
}

// Session bundles the state container with the orchestrators that act on it.
type Session struct {
	state *State

	Tabs          *TabController
	URLCheck      *URLCheck
	FakeLink      *FakeLink
	EmailAnalysis *EmailAnalysis
	Export        *ExportTrigger
}

func NewSession(gw Gateway, saver Saver, opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ReportName == "" {
		opts.ReportName = models.ReportFilename
	}

	state := NewState()
	base := orchestrator{state: state, gw: gw, opts: opts, logger: logger.Named("workflow")}

	return &Session{
		state:         state,
		Tabs:          &TabController{state: state, logger: base.logger},
		URLCheck:      &URLCheck{orchestrator: base},
		FakeLink:      &FakeLink{orchestrator: base},
		EmailAnalysis: &EmailAnalysis{orchestrator: base},
		Export:        &ExportTrigger{orchestrator: base, saver: saver},
	}
}

func (s *Session) Snapshot() Snapshot {
	return s.state.Snapshot()
}

// orchestrator carries what every workflow needs.
type orchestrator struct {
	state  *State
	gw     Gateway
	opts   Options
	logger *zap.Logger
}

// fail logs a failed call and applies the error policy. record runs under
// the state lock, and only if no reset happened since epoch.
func (o *orchestrator) fail(op string, epoch uint64, err error, record func(error)) error {
	o.logger.Warn("Request failed",
		zap.String("op", op),
		zap.String("outcome", gateway.OutcomeOf(err).String()),
		zap.Error(err))

	if o.opts.ErrorPolicy == SwallowErrors {
		return nil
	}

	o.state.mu.Lock()
	if o.state.current(epoch) {
		record(err)
	}
	o.state.mu.Unlock()

	return err
}

// stale is called, under the lock, for a response that arrived after a
// reset.
func (o *orchestrator) stale(op string) {
	metrics.StaleResponsesTotal.WithLabelValues(op).Inc()
	o.logger.Debug("Dropping response from before a reset", zap.String("op", op))
}
