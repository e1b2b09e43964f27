package pipeline

import (
	"context"

	"github.com/okieraised/faceid-gateway/internal/apierr"
	"github.com/okieraised/faceid-gateway/internal/triton"

	"gocv.io/x/gocv"
)

const qualityModelName = "face_quality"

var (
	qualityMean = [3]float32{123.675, 116.28, 103.53}
	qualityStd  = [3]float32{0.01712475, 0.017507, 0.01742919}
)

const qualityGoodScoreThreshold = 0.5

// QualityClassifier runs the 4-class quality head (§4.8): Bad, Good,
// WearingMask, WearingSunGlasses.
type QualityClassifier struct {
	client *triton.Client
	model  *triton.ModelHandle
}

func NewQualityClassifier(client *triton.Client, model *triton.ModelHandle) *QualityClassifier {
	return &QualityClassifier{client: client, model: model}
}

func (q *QualityClassifier) Classify(ctx context.Context, aligned gocv.Mat) (QualityClass, float32, error) {
	if err := ctx.Err(); err != nil {
		return QualityBad, 0, apierr.WrapRemote(apierr.RemoteUnavailable, "quality stage: context done before start", err)
	}

	resized := resizeTo(aligned, alignedSize, alignedSize)
	defer resized.Close()

	data := toNCHW(resized, qualityMean, qualityStd, true)

	in, err := q.model.Input(0)
	if err != nil {
		return QualityBad, 0, err
	}

	req := triton.ModelInferRequest{
		ModelName: qualityModelName,
		Inputs: []triton.InferInputTensor{
			{
				Name:     in.Name,
				Datatype: triton.TypeFP32.WireName(),
				Shape:    []int64{1, 3, alignedSize, alignedSize},
				Contents: &triton.InferTensorContents{FP32Contents: data},
			},
		},
	}
	for _, out := range q.model.Config.Output {
		req.Outputs = append(req.Outputs, triton.InferRequestedOutputTensor{Name: out.Name})
	}

	resp, err := q.client.ModelInfer(ctx, req)
	if err != nil {
		return QualityBad, 0, apierr.WrapRemote(apierr.RemoteUnavailable, "quality inference failed", err)
	}

	tensors, err := extractFloatTensors(resp)
	if err != nil {
		return QualityBad, 0, err
	}
	if len(tensors) == 0 || len(tensors[0].data) != 4 {
		return QualityBad, 0, apierr.New(apierr.ModelOutputInvalid, "quality: expected a 1x4 output tensor")
	}

	scores := tensors[0].data
	best := 0
	for i := 1; i < 4; i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	class := QualityClass(best)
	if class == QualityGood && scores[best] < qualityGoodScoreThreshold {
		class = QualityBad
	}
	return class, scores[best], nil
}
