package pipeline

import (
	"math"
	"testing"

	"github.com/okieraised/faceid-gateway/internal/apierr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestL2NormalizeProducesUnitVector(t *testing.T) {
	v := []float32{3, 4, 0}
	out, err := l2Normalize(v)
	require.NoError(t, err)

	var sumSq float64
	for _, x := range out {
		sumSq += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSq), 1e-6)
	assert.InDelta(t, 0.6, out[0], 1e-6)
	assert.InDelta(t, 0.8, out[1], 1e-6)
}

func TestL2NormalizeRejectsZeroVector(t *testing.T) {
	_, err := l2Normalize([]float32{0, 0, 0})
	require.Error(t, err)

	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.ModelOutputInvalid, ae.Kind)
}
