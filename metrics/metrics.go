package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "invisiguard"
)

var (
	// Gateway Metrics
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Count of requests sent to the detection service.",
	}, []string{"operation", "outcome"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Time taken for a detection service request to complete.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	UploadedFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_uploaded_files_total",
		Help:      "Number of files uploaded for analysis or report export.",
	}, []string{"operation"})

	// Workflow Metrics
	StaleResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workflow_stale_responses_total",
		Help:      "Responses dropped because the workflow was reset while they were in flight.",
	}, []string{"operation"})

	ReportsSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workflow_reports_saved_total",
		Help:      "Number of PDF reports saved to disk.",
	})
)
