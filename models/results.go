package models

import (
	"encoding/json"
	"io"
	"math"
)

// Verdicts returned by the phishing classifier
const (
	StatusPhishing = "Phishing"
	StatusSafe     = "Safe"
)

// SpamVerdict is the spam_result value that marks a message as spam.
// Any other value is treated as not spam.
const SpamVerdict = "SPAM"

const (
	ReportFilename    = "spam_detection_report.pdf"
	ReportContentType = "application/pdf"
)

// URLCheckResult is the verdict for a single URL. PhishingType is only set
// when Status is StatusPhishing.
type URLCheckResult struct {
	Status       string `json:"result" yaml:"result"`
	PhishingType string `json:"phishing_type,omitempty" yaml:"phishing_type,omitempty"`
}

// IsPhishing reports whether the verdict is StatusPhishing.
func (r URLCheckResult) IsPhishing() bool {
	return r.Status == StatusPhishing
}

// FakeLinkResult holds an absolute demo phishing link.
type FakeLinkResult struct {
	URL string `json:"url" yaml:"url"`
}

type EmailAnalysisResult struct {
	Filename        string             `json:"filename" yaml:"filename"`
	SpamResult      string             `json:"spam_result" yaml:"spam_result"`
	ConfidenceScore *float64           `json:"confidence_score" yaml:"confidence_score"`
	GeolocationInfo []GeolocationEntry `json:"geolocation_info" yaml:"geolocation_info"`
}

// UnmarshalJSON keeps GeolocationInfo non-nil so a null or missing list
// decodes to an empty one.
func (r *EmailAnalysisResult) UnmarshalJSON(data []byte) error {
	type plain EmailAnalysisResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.GeolocationInfo == nil {
		p.GeolocationInfo = []GeolocationEntry{}
	}
	*r = EmailAnalysisResult(p)
	return nil
}

func (r EmailAnalysisResult) IsSpam() bool {
	return r.SpamResult == SpamVerdict
}

type GeolocationEntry struct {
	IP      string `json:"ip" yaml:"ip"`
	City    string `json:"city,omitempty" yaml:"city,omitempty"`
	Country string `json:"country,omitempty" yaml:"country,omitempty"`
	ISP     string `json:"isp,omitempty" yaml:"isp,omitempty"`
	MapLink string `json:"google_maps_link,omitempty" yaml:"google_maps_link,omitempty"`
}

// InsightsSummary is computed by the remote service over one batch.
type InsightsSummary struct {
	TotalFilesAnalyzed int     `json:"total_files_analyzed" yaml:"total_files_analyzed"`
	SpamFilesDetected  int     `json:"spam_files_detected" yaml:"spam_files_detected"`
	SpamPercentage     float64 `json:"spam_percentage" yaml:"spam_percentage"`
	SafeFilesDetected  int     `json:"safe_files_detected" yaml:"safe_files_detected"`
	SafePercentage     float64 `json:"safe_percentage" yaml:"safe_percentage"`
}

// Consistent reports whether the counts add up and the percentages sum to
// 100 within rounding. An empty batch is consistent.
func (s InsightsSummary) Consistent() bool {
	if s.TotalFilesAnalyzed < 0 {
		return false
	}
	if s.SpamFilesDetected+s.SafeFilesDetected != s.TotalFilesAnalyzed {
		return false
	}
	if s.TotalFilesAnalyzed == 0 {
		return true
	}
	return math.Abs(s.SpamPercentage+s.SafePercentage-100) <= 0.5
}

// AnalysisResponse is the body of a bulk analysis call.
type AnalysisResponse struct {
	Results  []EmailAnalysisResult `json:"results" yaml:"results"`
	Insights InsightsSummary       `json:"insights" yaml:"insights"`
}

// ReportPayload is a binary report as returned by the service. The
// receiver owns Body and must close it.
type ReportPayload struct {
	ContentType string
	Body        io.ReadCloser
}

// GeolocationRow is one line of the flattened geolocation table.
type GeolocationRow struct {
	Filename string
	Entry    GeolocationEntry
}

// GeolocationRows flattens the per-file geolocation lists in result order,
// then entry order.
func GeolocationRows(results []EmailAnalysisResult) []GeolocationRow {
	var rows []GeolocationRow
	for _, r := range results {
		for _, geo := range r.GeolocationInfo {
			rows = append(rows, GeolocationRow{Filename: r.Filename, Entry: geo})
		}
	}
	return rows
}
