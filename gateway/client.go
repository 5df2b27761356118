package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"

	"invisiguard/metrics"
	"invisiguard/models"
)

// API paths relative to the base URL
const (
	checkURLPath        = "/api/check_url"
	generateFakeURLPath = "/api/generate_fake_url"
	checkSpamPath       = "/api/check_spam"
	generateReportPath  = "/api/generate_pdf_report"
)

// maxErrorBody caps how much of a failed response is kept in a ServiceError.
const maxErrorBody = 512

// Client talks to the remote detection service. Every call is a single
// request/response exchange with no retry.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient creates a client for the service described by cfg. A zero
// timeout keeps the transport default.
func NewClient(cfg models.ServiceConfig, logger *zap.Logger) *Client {
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.Timeout

	return NewClientWithHTTP(cfg, httpClient, logger)
}

// NewClientWithHTTP is NewClient with a caller supplied http.Client.
func NewClientWithHTTP(cfg models.ServiceConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      httpClient,
		logger:    logger.Named("gateway"),
	}
}

// BaseURL returns the service origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type checkURLRequest struct {
	URL string `json:"url"`
}

// CheckURL asks the phishing classifier about url. The string is sent as-is;
// the service decides whether it is valid.
func (c *Client) CheckURL(ctx context.Context, url string) (result models.URLCheckResult, err error) {
	defer c.observe(OpCheckURL, time.Now(), &err)

	payload, err := json.Marshal(checkURLRequest{URL: url})
	if err != nil {
		return result, &InputError{Op: OpCheckURL, Reason: "encode request", Err: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, checkURLPath, bytes.NewReader(payload))
	if err != nil {
		return result, &InputError{Op: OpCheckURL, Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.send(OpCheckURL, req)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	if err := decodeJSON(OpCheckURL, resp, &result); err != nil {
		return models.URLCheckResult{}, err
	}

	switch result.Status {
	case models.StatusSafe:
		result.PhishingType = ""
	case models.StatusPhishing:
		if result.PhishingType == "" {
			c.logger.Warn("Phishing verdict without a type", zap.String("url", url))
		}
	default:
		return models.URLCheckResult{}, &ServiceError{Op: OpCheckURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unknown verdict %q", result.Status)}
	}

	return result, nil
}

type fakeURLResponse struct {
	FakeURL string `json:"fake_url"`
}

// GenerateFakeURL returns the relative path of a freshly generated demo
// phishing link.
func (c *Client) GenerateFakeURL(ctx context.Context) (path string, err error) {
	defer c.observe(OpGenerateFakeURL, time.Now(), &err)

	req, err := c.newRequest(ctx, http.MethodGet, generateFakeURLPath, nil)
	if err != nil {
		return "", &InputError{Op: OpGenerateFakeURL, Reason: "build request", Err: err}
	}

	resp, err := c.send(OpGenerateFakeURL, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body fakeURLResponse
	if err := decodeJSON(OpGenerateFakeURL, resp, &body); err != nil {
		return "", err
	}
	if body.FakeURL == "" {
		return "", &ServiceError{Op: OpGenerateFakeURL, StatusCode: resp.StatusCode, Err: errors.New("response has no fake_url")}
	}

	return body.FakeURL, nil
}

// AnalyzeFiles uploads files for bulk spam classification.
func (c *Client) AnalyzeFiles(ctx context.Context, files models.SelectedFiles) (analysis models.AnalysisResponse, err error) {
	defer c.observe(OpAnalyzeFiles, time.Now(), &err)

	body, contentType, err := buildMultipart(OpAnalyzeFiles, files)
	if err != nil {
		return analysis, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, checkSpamPath, body)
	if err != nil {
		return analysis, &InputError{Op: OpAnalyzeFiles, Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	metrics.UploadedFilesTotal.WithLabelValues(OpAnalyzeFiles).Add(float64(len(files)))

	resp, err := c.send(OpAnalyzeFiles, req)
	if err != nil {
		return analysis, err
	}
	defer resp.Body.Close()

	if err := decodeJSON(OpAnalyzeFiles, resp, &analysis); err != nil {
		return models.AnalysisResponse{}, err
	}
	if analysis.Results == nil {
		analysis.Results = []models.EmailAnalysisResult{}
	}

	if !analysis.Insights.Consistent() {
		c.logger.Warn("Service insights do not add up",
			zap.Int("total", analysis.Insights.TotalFilesAnalyzed),
			zap.Int("spam", analysis.Insights.SpamFilesDetected),
			zap.Int("safe", analysis.Insights.SafeFilesDetected))
	}

	return analysis, nil
}

// ExportReport uploads files and returns the rendered PDF report. The
// caller must close the returned Body.
func (c *Client) ExportReport(ctx context.Context, files models.SelectedFiles) (payload *models.ReportPayload, err error) {
	defer c.observe(OpExportReport, time.Now(), &err)

	body, contentType, err := buildMultipart(OpExportReport, files)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, generateReportPath, body)
	if err != nil {
		return nil, &InputError{Op: OpExportReport, Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", models.ReportContentType)
	metrics.UploadedFilesTotal.WithLabelValues(OpExportReport).Add(float64(len(files)))

	resp, err := c.send(OpExportReport, req)
	if err != nil {
		return nil, err
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = models.ReportContentType
	}
	if !strings.HasPrefix(ct, models.ReportContentType) {
		c.logger.Warn("Report has unexpected content type", zap.String("content_type", ct))
	}

	return &models.ReportPayload{ContentType: ct, Body: resp.Body}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// send performs the exchange and turns transport failures and non-2xx
// statuses into typed errors. On success the caller owns resp.Body.
func (c *Client) send(op string, req *http.Request) (*http.Response, error) {
	requestID := req.Header.Get("X-Request-ID")
	c.logger.Debug("Sending request",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", requestID))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	c.logger.Debug("Received response",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ServiceError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	return resp, nil
}

func (c *Client) observe(op string, start time.Time, err *error) {
	metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.RequestsTotal.WithLabelValues(op, OutcomeOf(*err).String()).Inc()
}

func decodeJSON(op string, resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
