package utils

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"invisiguard/models"
)

// AnalysisDocument is the on-disk form of one bulk analysis.
type AnalysisDocument struct {
	AnalysisInfo AnalysisInfo                 `yaml:"analysis_info"`
	Insights     models.InsightsSummary       `yaml:"insights"`
	Results      []models.EmailAnalysisResult `yaml:"results"`
	Geolocation  []GeolocationRecord          `yaml:"geolocation,omitempty"`
}

type AnalysisInfo struct {
	Service   string    `yaml:"service"`
	Files     []string  `yaml:"files"`
	Timestamp time.Time `yaml:"timestamp"`
}

// GeolocationRecord is a flattened geolocation row with display fallbacks
// already applied.
type GeolocationRecord struct {
	File    string `yaml:"file"`
	IP      string `yaml:"ip"`
	City    string `yaml:"city"`
	Country string `yaml:"country"`
	ISP     string `yaml:"isp"`
	MapLink string `yaml:"map_link"`
}

type ResultsWriter struct {
	outputDir string
	indent    int
	now       func() time.Time
}

func NewResultsWriter(outputDir string) *ResultsWriter {
	return &ResultsWriter{
		outputDir: outputDir,
		indent:    2,
		now:       time.Now,
	}
}

// WriteAnalysis saves files and analysis as YAML under the output
// directory and returns the path written.
func (w *ResultsWriter) WriteAnalysis(service string, files models.SelectedFiles, analysis models.AnalysisResponse) (string, error) {
	doc := w.buildDocument(service, files, analysis)
	content, err := w.format(doc)
	if err != nil {
		return "", err
	}

	// Saves within the same second get "(1)", "(2)" ... suffixes.
	name := GenerateOutputFilename("spam_analysis", "yaml", doc.AnalysisInfo.Timestamp)
	return NewFileSaver(w.outputDir).Save(name, bytes.NewReader(content))
}

func (w *ResultsWriter) buildDocument(service string, files models.SelectedFiles, analysis models.AnalysisResponse) AnalysisDocument {
	doc := AnalysisDocument{
		AnalysisInfo: AnalysisInfo{
			Service:   service,
			Files:     files.Names(),
			Timestamp: w.now().UTC(),
		},
		Insights: analysis.Insights,
		Results:  analysis.Results,
	}

	for _, row := range models.GeolocationRows(analysis.Results) {
		doc.Geolocation = append(doc.Geolocation, GeolocationRecord{
			File:    row.Filename,
			IP:      row.Entry.IP,
			City:    row.Entry.CityDisplay(),
			Country: row.Entry.CountryDisplay(),
			ISP:     row.Entry.ISPDisplay(),
			MapLink: row.Entry.MapLinkDisplay(),
		})
	}

	return doc
}

func (w *ResultsWriter) format(doc AnalysisDocument) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# InvisiGuard Spam Analysis Results\n")
	buf.WriteString("# Generated: " + doc.AnalysisInfo.Timestamp.Format(time.RFC3339) + "\n\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(w.indent)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("cannot encode results: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("cannot encode results: %w", err)
	}

	return buf.Bytes(), nil
}
