package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRequestsTotalIncrementsByLabel(t *testing.T) {
	RequestsTotal.Reset()

	RequestsTotal.WithLabelValues("general", "ok").Inc()
	RequestsTotal.WithLabelValues("general", "ok").Inc()
	RequestsTotal.WithLabelValues("general", "error").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(RequestsTotal.WithLabelValues("general", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(RequestsTotal.WithLabelValues("general", "error")))
}

func TestPipelineErrorsTracksStageAndKind(t *testing.T) {
	PipelineErrors.Reset()

	PipelineErrors.WithLabelValues("detect", "remote_unavailable").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(PipelineErrors.WithLabelValues("detect", "remote_unavailable")))
}

func TestFacesDetectedObservesSamples(t *testing.T) {
	FacesDetected.Observe(1)
	FacesDetected.Observe(2)

	assert.Equal(t, 1, testutil.CollectAndCount(FacesDetected))
}
