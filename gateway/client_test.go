package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"invisiguard/metrics"
	"invisiguard/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := models.ServiceConfig{BaseURL: srv.URL + "/", UserAgent: "invisiguard-test"}
	return NewClient(cfg, zaptest.NewLogger(t)), srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestCheckURL(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		status      int
		want        models.URLCheckResult
		wantOutcome Outcome
	}{
		{
			name:     "safe",
			response: `{"result":"Safe"}`,
			status:   http.StatusOK,
			want:     models.URLCheckResult{Status: "Safe"},
		},
		{
			name:     "safe drops stray type",
			response: `{"result":"Safe","phishing_type":"Urgency Phishing"}`,
			status:   http.StatusOK,
			want:     models.URLCheckResult{Status: "Safe"},
		},
		{
			name:     "phishing",
			response: `{"result":"Phishing","phishing_type":"Reward Phishing"}`,
			status:   http.StatusOK,
			want:     models.URLCheckResult{Status: "Phishing", PhishingType: "Reward Phishing"},
		},
		{
			name:     "phishing without type",
			response: `{"result":"Phishing"}`,
			status:   http.StatusOK,
			want:     models.URLCheckResult{Status: "Phishing"},
		},
		{
			name:        "unknown verdict",
			response:    `{"result":"Maybe"}`,
			status:      http.StatusOK,
			wantOutcome: OutcomeServiceError,
		},
		{
			name:        "malformed body",
			response:    `<html>`,
			status:      http.StatusOK,
			wantOutcome: OutcomeServiceError,
		},
		{
			name:        "server error",
			response:    `{"error":"model unavailable"}`,
			status:      http.StatusInternalServerError,
			wantOutcome: OutcomeServiceError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.response)
			}))

			got, err := client.CheckURL(context.Background(), "http://example.com")
			if outcome := OutcomeOf(err); outcome != tt.wantOutcome {
				t.Fatalf("OutcomeOf(%v) = %v, want %v", err, outcome, tt.wantOutcome)
			}
			if got != tt.want {
				t.Errorf("CheckURL() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCheckURLRequestShape(t *testing.T) {
	var gotBody checkURLRequest
	var gotMethod, gotPath, gotRequestID, gotUA string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		gotUA = r.Header.Get("User-Agent")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, map[string]string{"result": "Safe"})
	}))

	// The empty string is forwarded as-is.
	if _, err := client.CheckURL(context.Background(), ""); err != nil {
		t.Fatalf("CheckURL() error = %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/api/check_url" {
		t.Errorf("Expected POST /api/check_url, got %s %s", gotMethod, gotPath)
	}
	if gotBody.URL != "" {
		t.Errorf("Expected empty url in body, got %q", gotBody.URL)
	}
	if gotRequestID == "" {
		t.Error("Expected an X-Request-ID header")
	}
	if gotUA != "invisiguard-test" {
		t.Errorf("Expected configured User-Agent, got %q", gotUA)
	}
}

func TestServiceErrorKeepsBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))

	_, err := client.CheckURL(context.Background(), "http://example.com")

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("Expected *ServiceError, got %T (%v)", err, err)
	}
	if svcErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", svcErr.StatusCode)
	}
	if svcErr.Body != "rate limited" {
		t.Errorf("Body = %q", svcErr.Body)
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := NewClient(models.ServiceConfig{BaseURL: base}, nil)
	_, err := client.GenerateFakeURL(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Expected *NetworkError, got %T (%v)", err, err)
	}
	if OutcomeOf(err) != OutcomeNetworkError {
		t.Errorf("OutcomeOf() = %v", OutcomeOf(err))
	}
}

func TestGenerateFakeURL(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/generate_fake_url" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]string{"fake_url": "fake/abc123"})
	}))

	path, err := client.GenerateFakeURL(context.Background())
	if err != nil {
		t.Fatalf("GenerateFakeURL() error = %v", err)
	}
	if path != "fake/abc123" {
		t.Errorf("GenerateFakeURL() = %q", path)
	}
	if client.BaseURL()[len(client.BaseURL())-1] == '/' {
		t.Errorf("BaseURL() should not end with a slash: %q", client.BaseURL())
	}
}

func TestGenerateFakeURLMissingField(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{})
	}))

	if _, err := client.GenerateFakeURL(context.Background()); OutcomeOf(err) != OutcomeServiceError {
		t.Errorf("Expected a service error, got %v", err)
	}
}

func TestAnalyzeFiles(t *testing.T) {
	var uploaded []string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/check_spam" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, fh := range r.MultipartForm.File["files"] {
			uploaded = append(uploaded, fh.Filename)
		}
		_, _ = io.WriteString(w, `{
			"results": [
				{"filename":"a.eml","spam_result":"SPAM","confidence_score":91,"geolocation_info":[]},
				{"filename":"b.eml","spam_result":"NOT_SPAM","confidence_score":null,"geolocation_info":[{"ip":"1.2.3.4"}]}
			],
			"insights": {"total_files_analyzed":2,"spam_files_detected":1,"spam_percentage":50,"safe_files_detected":1,"safe_percentage":50}
		}`)
	}))

	files := models.SelectedFiles{
		models.MemoryFile{Filename: "a.eml", Data: []byte("Subject: win")},
		models.MemoryFile{Filename: "b.eml", Data: []byte("Subject: lunch")},
	}

	uploadCounter := metrics.UploadedFilesTotal.WithLabelValues(OpAnalyzeFiles)
	before := testutil.ToFloat64(uploadCounter)

	got, err := client.AnalyzeFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("AnalyzeFiles() error = %v", err)
	}

	if fmt.Sprint(uploaded) != "[a.eml b.eml]" {
		t.Errorf("Expected both files under the files field in order, got %v", uploaded)
	}
	if len(got.Results) != 2 || got.Insights.TotalFilesAnalyzed != 2 {
		t.Errorf("Unexpected analysis %+v", got)
	}
	if after := testutil.ToFloat64(uploadCounter); after != before+2 {
		t.Errorf("Expected uploaded files counter to advance by 2, got %v -> %v", before, after)
	}
}

func TestAnalyzeFilesInputErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, models.AnalysisResponse{})
	}))

	tests := []struct {
		name  string
		files models.SelectedFiles
	}{
		{"no files", nil},
		{"unreadable file", models.SelectedFiles{models.LocalFile{Path: filepath.Join(t.TempDir(), "missing.eml")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.AnalyzeFiles(context.Background(), tt.files)
			var inErr *InputError
			if !errors.As(err, &inErr) {
				t.Fatalf("Expected *InputError, got %T (%v)", err, err)
			}
		})
	}

	if calls.Load() != 0 {
		t.Errorf("Expected no requests, got %d", calls.Load())
	}
}

func TestExportReport(t *testing.T) {
	pdf := []byte("%PDF-1.4 report")
	var uploaded []string

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate_pdf_report" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, fh := range r.MultipartForm.File["files"] {
			uploaded = append(uploaded, fh.Filename)
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	}))

	payload, err := client.ExportReport(context.Background(), models.SelectedFiles{
		models.MemoryFile{Filename: "c.eml", Data: []byte("x")},
	})
	if err != nil {
		t.Fatalf("ExportReport() error = %v", err)
	}
	defer payload.Body.Close()

	data, err := io.ReadAll(payload.Body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != string(pdf) {
		t.Errorf("Unexpected report body %q", data)
	}
	if payload.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q", payload.ContentType)
	}
	if fmt.Sprint(uploaded) != "[c.eml]" {
		t.Errorf("Expected c.eml to be uploaded, got %v", uploaded)
	}
}

func TestRequestsTotalByOutcome(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))

	counter := metrics.RequestsTotal.WithLabelValues(OpGenerateFakeURL, OutcomeServiceError.String())
	before := testutil.ToFloat64(counter)

	_, _ = client.GenerateFakeURL(context.Background())

	if after := testutil.ToFloat64(counter); after != before+1 {
		t.Errorf("Expected service_error counter to advance by one, got %v -> %v", before, after)
	}
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err  error
		want Outcome
	}{
		{nil, OutcomeSuccess},
		{&NetworkError{Op: OpCheckURL, Err: io.EOF}, OutcomeNetworkError},
		{&ServiceError{Op: OpCheckURL, StatusCode: 500}, OutcomeServiceError},
		{fmt.Errorf("wrapped: %w", &ServiceError{Op: OpCheckURL}), OutcomeServiceError},
		{&InputError{Op: OpAnalyzeFiles, Reason: "no files selected"}, OutcomeInputError},
		{context.Canceled, OutcomeNetworkError},
	}

	for _, tt := range tests {
		if got := OutcomeOf(tt.err); got != tt.want {
			t.Errorf("OutcomeOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestCheckURLKeepsPhishingVerdictWithoutType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"result": "Phishing"})
	}))
	t.Cleanup(srv.Close)

	core, logs := observer.New(zapcore.WarnLevel)
	client := NewClient(models.ServiceConfig{BaseURL: srv.URL}, zap.New(core))

	got, err := client.CheckURL(context.Background(), "http://bank.example.com")
	if err != nil {
		t.Fatalf("CheckURL() error = %v", err)
	}
	if !got.IsPhishing() || got.PhishingType != "" {
		t.Errorf("CheckURL() = %+v", got)
	}

	entries := logs.FilterMessage("Phishing verdict without a type").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	if url := entries[0].ContextMap()["url"]; url != "http://bank.example.com" {
		t.Errorf("logged url = %v", url)
	}
}
