package pipeline

import (
	"context"
	"math"

	"github.com/okieraised/faceid-gateway/internal/apierr"
	"github.com/okieraised/faceid-gateway/internal/triton"

	"gocv.io/x/gocv"
)

const extractionModelName = "face_identification"

var extractionMean = [3]float32{127.5, 127.5, 127.5}

const extractionScale = 0.0078125

// Extractor produces an L2-normalized embedding vector from an aligned face
// crop (§4.11).
type Extractor struct {
	client *triton.Client
	model  *triton.ModelHandle
}

func NewExtractor(client *triton.Client, model *triton.ModelHandle) *Extractor {
	return &Extractor{client: client, model: model}
}

func (e *Extractor) Extract(ctx context.Context, aligned gocv.Mat) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, apierr.WrapRemote(apierr.RemoteUnavailable, "extraction stage: context done before start", err)
	}

	resized := resizeTo(aligned, alignedSize, alignedSize)
	defer resized.Close()

	std := [3]float32{extractionScale, extractionScale, extractionScale}
	data := toNCHW(resized, extractionMean, std, true)

	in, err := e.model.Input(0)
	if err != nil {
		return nil, err
	}

	req := triton.ModelInferRequest{
		ModelName: extractionModelName,
		Inputs: []triton.InferInputTensor{
			{
				Name:     in.Name,
				Datatype: triton.TypeFP32.WireName(),
				Shape:    []int64{1, 3, alignedSize, alignedSize},
				Contents: &triton.InferTensorContents{FP32Contents: data},
			},
		},
	}
	for _, out := range e.model.Config.Output {
		req.Outputs = append(req.Outputs, triton.InferRequestedOutputTensor{Name: out.Name})
	}

	resp, err := e.client.ModelInfer(ctx, req)
	if err != nil {
		return nil, apierr.WrapRemote(apierr.RemoteUnavailable, "embedding inference failed", err)
	}

	tensors, err := extractFloatTensors(resp)
	if err != nil {
		return nil, err
	}
	if len(tensors) == 0 || len(tensors[0].data) == 0 {
		return nil, apierr.New(apierr.ModelOutputInvalid, "extraction: empty embedding tensor")
	}

	return l2Normalize(tensors[0].data)
}

func l2Normalize(v []float32) ([]float32, error) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := float32(math.Sqrt(sumSq))
	if norm == 0 {
		return nil, apierr.New(apierr.ModelOutputInvalid, "extraction: zero-norm embedding")
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out, nil
}
