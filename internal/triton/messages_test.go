package triton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelInferRequestRoundTrip(t *testing.T) {
	req := ModelInferRequest{
		ModelName:    "face_detection_retina",
		ModelVersion: "1",
		ID:           "req-42",
		Inputs: []InferInputTensor{
			{
				Name:     "data",
				Datatype: "FP32",
				Shape:    []int64{1, 3, 640, 640},
				Contents: &InferTensorContents{FP32Contents: []float32{0.1, -0.2, 3.5}},
			},
		},
		Outputs: []InferRequestedOutputTensor{{Name: "face_rpn_cls_prob_reshape_stride32"}},
	}

	raw, err := req.Marshal()
	require.NoError(t, err)

	var out ModelInferRequest
	require.NoError(t, out.Unmarshal(raw))

	assert.Equal(t, req.ModelName, out.ModelName)
	assert.Equal(t, req.ModelVersion, out.ModelVersion)
	assert.Equal(t, req.ID, out.ID)
	require.Len(t, out.Inputs, 1)
	assert.Equal(t, req.Inputs[0].Name, out.Inputs[0].Name)
	assert.Equal(t, req.Inputs[0].Shape, out.Inputs[0].Shape)
	require.NotNil(t, out.Inputs[0].Contents)
	assert.Equal(t, req.Inputs[0].Contents.FP32Contents, out.Inputs[0].Contents.FP32Contents)
}

func TestModelInferResponseRoundTrip(t *testing.T) {
	resp := ModelInferResponse{
		ModelName:         "face_identification",
		ModelVersion:      "1",
		ID:                "req-7",
		RawOutputContents: [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}},
	}

	raw, err := resp.Marshal()
	require.NoError(t, err)

	var out ModelInferResponse
	require.NoError(t, out.Unmarshal(raw))

	assert.Equal(t, resp.ModelName, out.ModelName)
	assert.Equal(t, resp.RawOutputContents, out.RawOutputContents)
}

func TestModelConfigRoundTrip(t *testing.T) {
	cfg := ModelConfig{
		Name:         "face_quality",
		Platform:     "onnxruntime_onnx",
		MaxBatchSize: 8,
		Input: []ModelIO{
			{Name: "input", DataType: TypeFP32, Dims: []int64{3, 112, 112}},
		},
		Output: []ModelIO{
			{Name: "output", DataType: TypeFP32, Dims: []int64{4}},
		},
	}
	resp := ModelConfigResponse{Config: &cfg}

	raw, err := resp.Marshal()
	require.NoError(t, err)

	var out ModelConfigResponse
	require.NoError(t, out.Unmarshal(raw))

	require.NotNil(t, out.Config)
	assert.Equal(t, cfg.Name, out.Config.Name)
	assert.Equal(t, cfg.MaxBatchSize, out.Config.MaxBatchSize)
	require.Len(t, out.Config.Input, 1)
	assert.Equal(t, cfg.Input[0].Dims, out.Config.Input[0].Dims)
	require.Len(t, out.Config.Output, 1)
	assert.Equal(t, cfg.Output[0].Name, out.Config.Output[0].Name)
}

func TestServerLiveResponseRoundTrip(t *testing.T) {
	for _, live := range []bool{true, false} {
		resp := ServerLiveResponse{Live: live}
		raw, err := resp.Marshal()
		require.NoError(t, err)

		var out ServerLiveResponse
		require.NoError(t, out.Unmarshal(raw))
		assert.Equal(t, live, out.Live)
	}
}

func TestDataTypeWireName(t *testing.T) {
	assert.Equal(t, "FP32", TypeFP32.WireName())
	assert.Equal(t, "INT64", TypeInt64.WireName())
	assert.Equal(t, "INVALID", TypeInvalid.WireName())
}
