package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "faceid",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "faceid",
		Name:      "requests_total",
		Help:      "Total number of extraction requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "faceid",
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual pipeline stages",
		Buckets:   prometheus.ExponentialBuckets(0.002, 2, 12),
	}, []string{"stage"})

	PipelineErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "faceid",
		Name:      "pipeline_errors_total",
		Help:      "Total number of pipeline stage errors by stage and error kind",
	}, []string{"stage", "kind"})

	FacesDetected = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "faceid",
		Name:      "faces_detected",
		Help:      "Number of faces surviving NMS per request",
		Buckets:   prometheus.LinearBuckets(0, 1, 10),
	})
)
