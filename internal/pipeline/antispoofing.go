package pipeline

import (
	"context"
	"image"

	"github.com/okieraised/faceid-gateway/internal/apierr"
	"github.com/okieraised/faceid-gateway/internal/triton"

	"golang.org/x/sync/errgroup"

	"gocv.io/x/gocv"
)

const livenessGoodThreshold = 0.55

// antiSpoofingScale is one of the four fixed crop/model configurations
// voted over by the anti-spoofing stage (§4.10).
type antiSpoofingScale struct {
	modelName string
	inputSize int
	scale     float32
}

var antiSpoofingScales = []antiSpoofingScale{
	{modelName: "miniFAS_4", inputSize: 80, scale: 4.0},
	{modelName: "miniFAS_2_7", inputSize: 80, scale: 2.7},
	{modelName: "miniFAS_2", inputSize: 256, scale: 2.0},
	{modelName: "miniFAS_1", inputSize: 128, scale: 1.0},
}

// AntiSpoofing runs the 4-scale liveness vote (§4.10). Models are invoked
// concurrently (a deliberate departure from the original's sequential
// scale-by-scale evaluation): ordering of the weighted vote does not depend
// on completion order, since each scale's contribution is accumulated into
// a fixed-size indexed slot.
type AntiSpoofing struct {
	client *triton.Client
	models map[string]*triton.ModelHandle
}

func NewAntiSpoofing(client *triton.Client, models map[string]*triton.ModelHandle) *AntiSpoofing {
	return &AntiSpoofing{client: client, models: models}
}

func (a *AntiSpoofing) Check(ctx context.Context, img gocv.Mat, b Box) (LivenessClass, float32, error) {
	if err := ctx.Err(); err != nil {
		return LivenessFake, 0, apierr.WrapRemote(apierr.RemoteUnavailable, "anti-spoofing stage: context done before start", err)
	}

	results := make([]struct {
		weight float32
		live   float32
	}, len(antiSpoofingScales))

	g, ctx := errgroup.WithContext(ctx)
	for i, sc := range antiSpoofingScales {
		i, sc := i, sc
		g.Go(func() error {
			weight, live, err := a.evalScale(ctx, img, b, sc)
			if err != nil {
				return err
			}
			results[i].weight = weight
			results[i].live = live
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return LivenessFake, 0, apierr.WrapRemote(apierr.RemoteModelError, "anti-spoofing inference failed", err)
	}

	var num, den float32
	for _, r := range results {
		num += r.weight * r.live
		den += r.weight
	}
	if den == 0 {
		return LivenessFake, 0, apierr.New(apierr.ModelOutputInvalid, "anti-spoofing: zero total vote weight")
	}

	liveScore := num / den
	if liveScore > livenessGoodThreshold {
		return LivenessReal, liveScore, nil
	}
	return LivenessFake, liveScore, nil
}

// shiftedCropBox mirrors the Rust original's _get_new_box (face_antispoofing.rs):
// it scales a box of size boxW x boxH around its center by scaleOri, then,
// whenever the scaled box would spill past an edge, shifts the opposite edge
// outward to preserve the full scaled size instead of truncating the
// overflowing edge. Only when the scaled box no longer fits inside the image
// at all is the scale itself reduced, and weight (scale/scaleOri) drops below 1.
func shiftedCropBox(x, y, boxW, boxH, srcW, srcH, scaleOri float32) (x1, y1, x2, y2, weight float32) {
	scale := minf(scaleOri, minf((srcH-1)/boxH, (srcW-1)/boxW))

	newWidth := boxW * scale
	newHeight := boxH * scale
	centerX := boxW/2 + x
	centerY := boxH/2 + y

	left := centerX - newWidth/2
	top := centerY - newHeight/2
	right := centerX + newWidth/2
	bottom := centerY + newHeight/2

	if left < 0 {
		right -= left
		left = 0
	}
	if top < 0 {
		bottom -= top
		top = 0
	}
	if right > srcW-1 {
		left -= right - srcW + 1
		right = srcW - 1
	}
	if bottom > srcH-1 {
		top -= bottom - srcH + 1
		bottom = srcH - 1
	}

	return left, top, right, bottom, scale / scaleOri
}

// evalScale crops the face region for one scale/model pair and returns its
// vote weight (1 unless the requested scale's crop is larger than the image
// itself) and its "live" class probability.
func (a *AntiSpoofing) evalScale(ctx context.Context, img gocv.Mat, b Box, sc antiSpoofingScale) (weight, live float32, err error) {
	h, w := img.Rows(), img.Cols()
	bh := b.Y2 - b.Y1
	cx := (b.X1 + b.X2) / 2

	halfWidth := 0.47 * bh
	x1, y1, x2, y2 := cx-halfWidth, b.Y1, cx+halfWidth, b.Y2

	boxW := x2 - x1
	boxH := y2 - y1

	cropX1, cropY1, cropX2, cropY2, weight := shiftedCropBox(x1, y1, boxW, boxH, float32(w), float32(h), sc.scale)

	rx1, ry1, rx2, ry2 := int(cropX1), int(cropY1), int(cropX2), int(cropY2)
	if rx2 <= rx1 || ry2 <= ry1 {
		return 0, 0, apierr.New(apierr.ModelOutputInvalid, "anti-spoofing: degenerate crop region")
	}

	roi := img.Region(image.Rect(rx1, ry1, rx2, ry2))
	defer roi.Close()

	resized := resizeTo(roi, sc.inputSize, sc.inputSize)
	defer resized.Close()

	// BGR channel order kept as-is, no mean/std normalization (§4.10).
	data := toNCHW(resized, [3]float32{0, 0, 0}, [3]float32{1, 1, 1}, false)

	model, ok := a.models[sc.modelName]
	if !ok {
		return 0, 0, apierr.New(apierr.RemoteModelError, "anti-spoofing: model "+sc.modelName+" not loaded")
	}
	in, err := model.Input(0)
	if err != nil {
		return 0, 0, err
	}

	req := triton.ModelInferRequest{
		ModelName: sc.modelName,
		Inputs: []triton.InferInputTensor{
			{
				Name:     in.Name,
				Datatype: triton.TypeFP32.WireName(),
				Shape:    []int64{1, 3, int64(sc.inputSize), int64(sc.inputSize)},
				Contents: &triton.InferTensorContents{FP32Contents: data},
			},
		},
	}
	for _, out := range model.Config.Output {
		req.Outputs = append(req.Outputs, triton.InferRequestedOutputTensor{Name: out.Name})
	}

	resp, err := a.client.ModelInfer(ctx, req)
	if err != nil {
		return 0, 0, apierr.WrapRemote(apierr.RemoteUnavailable, sc.modelName+" inference failed", err)
	}
	tensors, err := extractFloatTensors(resp)
	if err != nil {
		return 0, 0, err
	}
	if len(tensors) == 0 || len(tensors[0].data) != 2 {
		return 0, 0, apierr.New(apierr.ModelOutputInvalid, sc.modelName+": expected a 1x2 output tensor")
	}

	return weight, tensors[0].data[1], nil
}
