package workflow

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"invisiguard/gateway"
	"invisiguard/models"
)

const testBaseURL = "https://detector.test"

// fakeGateway records every call and delegates to optional hooks.
type fakeGateway struct {
	mu       sync.Mutex
	calls    []string
	exported []models.SelectedFiles
	analyzed []models.SelectedFiles

	checkURL func(ctx context.Context, url string) (models.URLCheckResult, error)
	fakeURL  func(ctx context.Context) (string, error)
	analyze  func(ctx context.Context, files models.SelectedFiles) (models.AnalysisResponse, error)
	export   func(ctx context.Context, files models.SelectedFiles) (*models.ReportPayload, error)
}

func (g *fakeGateway) record(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, op)
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) BaseURL() string { return testBaseURL }

func (g *fakeGateway) CheckURL(ctx context.Context, url string) (models.URLCheckResult, error) {
	g.record(gateway.OpCheckURL)
	if g.checkURL == nil {
		return models.URLCheckResult{Status: models.StatusSafe}, nil
	}
	return g.checkURL(ctx, url)
}

func (g *fakeGateway) GenerateFakeURL(ctx context.Context) (string, error) {
	g.record(gateway.OpGenerateFakeURL)
	if g.fakeURL == nil {
		return "/fake/abc123", nil
	}
	return g.fakeURL(ctx)
}

func (g *fakeGateway) AnalyzeFiles(ctx context.Context, files models.SelectedFiles) (models.AnalysisResponse, error) {
	g.record(gateway.OpAnalyzeFiles)
	g.mu.Lock()
	g.analyzed = append(g.analyzed, files.Clone())
	g.mu.Unlock()
	if g.analyze == nil {
		return twoFileResponse(), nil
	}
	return g.analyze(ctx, files)
}

func (g *fakeGateway) ExportReport(ctx context.Context, files models.SelectedFiles) (*models.ReportPayload, error) {
	g.record(gateway.OpExportReport)
	g.mu.Lock()
	g.exported = append(g.exported, files.Clone())
	g.mu.Unlock()
	if g.export == nil {
		return &models.ReportPayload{ContentType: models.ReportContentType, Body: newTrackingBody("%PDF-1.4")}, nil
	}
	return g.export(ctx, files)
}

// trackingBody remembers whether it was closed.
type trackingBody struct {
	io.Reader
	mu     sync.Mutex
	closed bool
}

func newTrackingBody(s string) *trackingBody {
	return &trackingBody{Reader: bytes.NewReader([]byte(s))}
}

func (b *trackingBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *trackingBody) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// memorySaver keeps saved files in memory.
type memorySaver struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func (s *memorySaver) Save(name string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	s.saved[name] = data
	return "/downloads/" + name, nil
}

func newTestSession(t *testing.T, gw *fakeGateway, opts Options) (*Session, *memorySaver) {
	t.Helper()
	saver := &memorySaver{}
	return NewSession(gw, saver, opts, zaptest.NewLogger(t)), saver
}

func files(names ...string) models.SelectedFiles {
	var out models.SelectedFiles
	for _, n := range names {
		out = append(out, models.MemoryFile{Filename: n, Data: []byte("Subject: " + n)})
	}
	return out
}

func float(v float64) *float64 { return &v }

func twoFileResponse() models.AnalysisResponse {
	return models.AnalysisResponse{
		Results: []models.EmailAnalysisResult{
			{Filename: "a.eml", SpamResult: "SPAM", ConfidenceScore: float(91), GeolocationInfo: []models.GeolocationEntry{}},
			{Filename: "b.eml", SpamResult: "NOT_SPAM", GeolocationInfo: []models.GeolocationEntry{{IP: "1.2.3.4"}}},
		},
		Insights: models.InsightsSummary{
			TotalFilesAnalyzed: 2,
			SpamFilesDetected:  1,
			SpamPercentage:     50,
			SafeFilesDetected:  1,
			SafePercentage:     50,
		},
	}
}

var errUnreachable = &gateway.NetworkError{Op: "test", Err: errors.New("connection refused")}
