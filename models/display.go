package models

import (
	"fmt"
	"strconv"
)

// Fallback text for absent fields
const (
	UnknownText      = "Unknown"
	NotAvailableText = "N/A"
)

// String renders the verdict the way the results view shows it.
func (r URLCheckResult) String() string {
	if r.IsPhishing() {
		return r.Status + " - " + r.TypeDisplay()
	}
	return r.Status
}

// TypeDisplay is the phishing type, or "Unknown" when the service sent none.
func (r URLCheckResult) TypeDisplay() string { return orUnknown(r.PhishingType) }

// ConfidenceDisplay renders the score as "91%" or "N/A" when absent.
func (r EmailAnalysisResult) ConfidenceDisplay() string {
	if r.ConfidenceScore == nil {
		return NotAvailableText
	}
	return FormatNumber(*r.ConfidenceScore) + "%"
}

func (g GeolocationEntry) CityDisplay() string    { return orUnknown(g.City) }
func (g GeolocationEntry) CountryDisplay() string { return orUnknown(g.Country) }
func (g GeolocationEntry) ISPDisplay() string     { return orUnknown(g.ISP) }

func (g GeolocationEntry) MapLinkDisplay() string {
	if g.MapLink == "" {
		return NotAvailableText
	}
	return g.MapLink
}

// SpamDisplay renders "1 (50%)".
func (s InsightsSummary) SpamDisplay() string {
	return fmt.Sprintf("%d (%s%%)", s.SpamFilesDetected, FormatNumber(s.SpamPercentage))
}

// SafeDisplay renders "1 (50%)".
func (s InsightsSummary) SafeDisplay() string {
	return fmt.Sprintf("%d (%s%%)", s.SafeFilesDetected, FormatNumber(s.SafePercentage))
}

// FormatNumber prints a float without a trailing ".0" for whole numbers.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownText
	}
	return s
}
