package triton

import (
	"testing"

	"github.com/okieraised/faceid-gateway/internal/apierr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelHandleInputReturnsConfiguredInput(t *testing.T) {
	h := &ModelHandle{
		Name: "face_identification",
		Config: ModelConfig{
			Input: []ModelIO{{Name: "data", DataType: TypeFP32, Dims: []int64{3, 112, 112}}},
		},
	}

	in, err := h.Input(0)
	require.NoError(t, err)
	assert.Equal(t, "data", in.Name)
}

func TestModelHandleInputErrorsWhenMissing(t *testing.T) {
	h := &ModelHandle{Name: "face_identification"}

	_, err := h.Input(0)
	require.Error(t, err)

	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.ModelOutputInvalid, ae.Kind)
}
