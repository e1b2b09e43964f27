package pipeline

import (
	"context"

	"github.com/okieraised/faceid-gateway/internal/apierr"
	"github.com/okieraised/faceid-gateway/internal/triton"

	"gocv.io/x/gocv"
)

// qualityAssessmentModelName intentionally reproduces the upstream model
// registry's name verbatim, typo included.
const qualityAssessmentModelName = "face_quality_assetment"

var qaNormMean = [3]float32{127.5, 127.5, 127.5}

const (
	qaNormScale     = 0.00784313725
	qaGoodThreshold = 55.0
)

// QualityAssessment runs the binary quality-score regressor (§4.9). Unlike
// the 4-class classifier, this head returns a single scalar on a 0-100-ish
// scale; above qaGoodThreshold is Good, otherwise Bad.
type QualityAssessment struct {
	client *triton.Client
	model  *triton.ModelHandle
}

func NewQualityAssessment(client *triton.Client, model *triton.ModelHandle) *QualityAssessment {
	return &QualityAssessment{client: client, model: model}
}

func (q *QualityAssessment) Assess(ctx context.Context, aligned gocv.Mat) (QualityClass, float32, error) {
	if err := ctx.Err(); err != nil {
		return QualityBad, 0, apierr.WrapRemote(apierr.RemoteUnavailable, "quality-assessment stage: context done before start", err)
	}

	resized := resizeTo(aligned, alignedSize, alignedSize)
	defer resized.Close()

	std := [3]float32{qaNormScale, qaNormScale, qaNormScale}
	data := toNCHW(resized, qaNormMean, std, true)

	in, err := q.model.Input(0)
	if err != nil {
		return QualityBad, 0, err
	}

	req := triton.ModelInferRequest{
		ModelName: qualityAssessmentModelName,
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
		return QualityBad, 0, apierr.WrapRemote(apierr.RemoteUnavailable, "quality-assessment inference failed", err)
	}

	tensors, err := extractFloatTensors(resp)
	if err != nil {
		return QualityBad, 0, err
	}
	if len(tensors) == 0 || len(tensors[0].data) != 1 {
		return QualityBad, 0, apierr.New(apierr.ModelOutputInvalid, "quality-assessment: expected a scalar output tensor")
	}

	score := tensors[0].data[0]
	if score > qaGoodThreshold {
		return QualityGood, score, nil
	}
	return QualityBad, score, nil
}
