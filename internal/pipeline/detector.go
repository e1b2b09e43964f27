package pipeline

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/okieraised/faceid-gateway/internal/apierr"
	"github.com/okieraised/faceid-gateway/internal/triton"

	"gocv.io/x/gocv"
)

const detectorModelName = "face_detection_retina"

const (
	detectorInputSize  = 640
	detectorScoreThr   = 0.7
	detectorNMSThr     = 0.45
)

// Detector runs RetinaFace-style anchor-based face detection (§4.3-§4.5)
// against the remote tensor server. It is built once at startup and shared
// read-only across requests.
type Detector struct {
	client  *triton.Client
	model   *triton.ModelHandle
	strides []AnchorStride
}

func NewDetector(client *triton.Client, model *triton.ModelHandle) *Detector {
	return &Detector{client: client, model: model, strides: GenerateAnchorStrides()}
}

// letterbox isotropically scales img so it fits inside a detectorInputSize
// square, preserving aspect ratio, and pastes it top-left into a zero-padded
// canvas. det_scale is new_height/original_height (§4.5).
func letterbox(img gocv.Mat) (canvas gocv.Mat, detScale float32) {
	h, w := img.Rows(), img.Cols()
	imRatio := float32(h) / float32(w)
	modelRatio := float32(1.0)

	var newWidth, newHeight int
	if imRatio > modelRatio {
		newHeight = detectorInputSize
		newWidth = int(float32(newHeight) / imRatio)
	} else {
		newWidth = detectorInputSize
		newHeight = int(float32(newWidth) * imRatio)
	}
	detScale = float32(newHeight) / float32(h)

	resized := resizeTo(img, newWidth, newHeight)
	defer resized.Close()

	canvas = gocv.NewMatWithSize(detectorInputSize, detectorInputSize, gocv.MatTypeCV8UC3)
	roi := canvas.Region(image.Rect(0, 0, newWidth, newHeight))
	resized.CopyTo(&roi)
	roi.Close()
	return canvas, detScale
}

// Detect runs the full detection pipeline on img and returns surviving
// detections (post-NMS, rescaled to img's own coordinate space).
func (d *Detector) Detect(ctx context.Context, img gocv.Mat) (Detections, error) {
	if err := ctx.Err(); err != nil {
		return Detections{}, apierr.WrapRemote(apierr.RemoteUnavailable, "detection stage: context done before start", err)
	}

	canvas, detScale := letterbox(img)
	defer canvas.Close()

	data := toNCHW(canvas, [3]float32{0, 0, 0}, [3]float32{1, 1, 1}, true)

	outIn, err := d.model.Input(0)
	if err != nil {
		return Detections{}, err
	}

	req := triton.ModelInferRequest{
		ModelName: detectorModelName,
		Inputs: []triton.InferInputTensor{
			{
				Name:     outIn.Name,
				Datatype: triton.TypeFP32.WireName(),
				Shape:    []int64{1, 3, detectorInputSize, detectorInputSize},
				Contents: &triton.InferTensorContents{FP32Contents: data},
			},
		},
	}
	for _, out := range d.model.Config.Output {
		req.Outputs = append(req.Outputs, triton.InferRequestedOutputTensor{Name: out.Name})
	}

	resp, err := d.client.ModelInfer(ctx, req)
	if err != nil {
		return Detections{}, apierr.WrapRemote(apierr.RemoteUnavailable, "face detection inference failed", err)
	}

	tensors, err := extractFloatTensors(resp)
	if err != nil {
		return Detections{}, err
	}

	scoreByStride, bboxByStride, lmkByStride, err := groupDetectorOutputs(d.model.Config.Output, tensors)
	if err != nil {
		return Detections{}, err
	}

	var boxes []Box
	var landmarks []Landmark
	for _, as := range d.strides {
		sc, okS := scoreByStride[as.Stride]
		bb, okB := bboxByStride[as.Stride]
		lm, okL := lmkByStride[as.Stride]
		if !okS || !okB || !okL {
			return Detections{}, apierr.New(apierr.ModelOutputInvalid, fmt.Sprintf("detector: missing output for stride %d", as.Stride))
		}

		featH, featW, err := strideFeatureDims(sc.shape, as.NumAnchors())
		if err != nil {
			return Detections{}, err
		}
		anchors := as.Shift(featH, featW)

		sb, ib, err := decodeStride(as, anchors, sc, bb, lm, featH, featW)
		if err != nil {
			return Detections{}, err
		}
		boxes = append(boxes, sb...)
		landmarks = append(landmarks, ib...)
	}

	// Clip to the letterboxed canvas's own bounds (§4.4) and run NMS in
	// canvas space, before det_scale division (§4.5) — matching the Rust
	// original, where clip_boxes runs inside _forward against the 640x640
	// canvas and det_scale division happens only in the later _postprocess
	// step, after NMS has already chosen survivors.
	for i := range boxes {
		clipped := ClipBox([4]float32{boxes[i].X1, boxes[i].Y1, boxes[i].X2, boxes[i].Y2}, detectorInputSize, detectorInputSize)
		boxes[i].X1, boxes[i].Y1, boxes[i].X2, boxes[i].Y2 = clipped[0], clipped[1], clipped[2], clipped[3]
	}
	for i := range landmarks {
		landmarks[i] = ClipLandmark(landmarks[i], detectorInputSize, detectorInputSize)
	}

	survivors := NMS(boxes, landmarks, detectorNMSThr)

	for i := range survivors.Boxes {
		survivors.Boxes[i].X1 /= detScale
		survivors.Boxes[i].Y1 /= detScale
		survivors.Boxes[i].X2 /= detScale
		survivors.Boxes[i].Y2 /= detScale
	}
	for i := range survivors.Landmarks {
		for p := 0; p < 5; p++ {
			survivors.Landmarks[i][p][0] /= detScale
			survivors.Landmarks[i][p][1] /= detScale
		}
	}

	return survivors, nil
}

type floatTensor struct {
	name  string
	shape []int64
	data  []float32
}

func extractFloatTensors(resp *triton.ModelInferResponse) ([]floatTensor, error) {
	if len(resp.Outputs) != len(resp.RawOutputContents) {
		return nil, apierr.New(apierr.ModelOutputInvalid, "detector: output descriptor/content count mismatch")
	}
	out := make([]floatTensor, len(resp.Outputs))
	for i, o := range resp.Outputs {
		raw := resp.RawOutputContents[i]
		if len(raw)%4 != 0 {
			return nil, apierr.New(apierr.ModelOutputInvalid, "detector: malformed raw tensor content")
		}
		vals := make([]float32, len(raw)/4)
		for j := range vals {
			vals[j] = bytesToFloat32(raw[j*4 : j*4+4])
		}
		out[i] = floatTensor{name: o.Name, shape: o.Shape, data: vals}
	}
	return out, nil
}

func bytesToFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}

// groupDetectorOutputs sorts the model's flat output list into per-stride
// score/bbox/landmark tensors by looking each one up by name, using the
// RetinaFace export convention face_rpn_cls_prob_reshape_stride{N},
// face_rpn_bbox_pred_stride{N} and face_rpn_landmark_pred_stride{N}.
// cfgOutputs is not consulted: the declared output order plays no part, and
// a stride whose three names are not all present is skipped.
func groupDetectorOutputs(cfgOutputs []triton.ModelIO, tensors []floatTensor) (scores, bboxes, lmks map[int]floatTensor, err error) {
	scores = map[int]floatTensor{}
	bboxes = map[int]floatTensor{}
	lmks = map[int]floatTensor{}

	byName := map[string]floatTensor{}
	for _, t := range tensors {
		byName[t.name] = t
	}

	for _, stride := range []int{32, 16, 8} {
		s, ok1 := byName[fmt.Sprintf("face_rpn_cls_prob_reshape_stride%d", stride)]
		b, ok2 := byName[fmt.Sprintf("face_rpn_bbox_pred_stride%d", stride)]
		l, ok3 := byName[fmt.Sprintf("face_rpn_landmark_pred_stride%d", stride)]
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		scores[stride] = s
		bboxes[stride] = b
		lmks[stride] = l
	}
	if len(scores) == 0 {
		err = apierr.New(apierr.ModelOutputInvalid, "detector: no recognized stride outputs in model response")
	}
	return
}

func strideFeatureDims(shape []int64, numAnchors int) (h, w int, err error) {
	if len(shape) != 4 {
		return 0, 0, apierr.New(apierr.ModelOutputInvalid, "detector: expected rank-4 output tensor")
	}
	return int(shape[2]), int(shape[3]), nil
}

// decodeStride decodes one stride's raw NCHW tensors into boxes/landmarks in
// the letterboxed canvas's coordinate space.
func decodeStride(as AnchorStride, anchors [][4]float32, score, bbox, lmk floatTensor, featH, featW int) ([]Box, []Landmark, error) {
	a := as.NumAnchors()
	hw := featH * featW

	if len(score.data) < 2*a*hw || len(bbox.data) < 4*a*hw || len(lmk.data) < 10*a*hw {
		return nil, nil, apierr.New(apierr.ModelOutputInvalid, "detector: truncated stride tensor")
	}

	var boxes []Box
	var landmarks []Landmark
	idx := 0
	for y := 0; y < featH; y++ {
		for x := 0; x < featW; x++ {
			pos := y*featW + x
			for ai := 0; ai < a; ai++ {
				anchor := anchors[idx]
				idx++

				s := score.data[(a+ai)*hw+pos]
				if s < detectorScoreThr {
					continue
				}

				var delta [4]float32
				for k := 0; k < 4; k++ {
					delta[k] = bbox.data[(ai*4+k)*hw+pos]
				}
				decoded := DecodeBox(anchor, delta)

				var lmDelta [5][2]float32
				for p := 0; p < 5; p++ {
					lmDelta[p][0] = lmk.data[(ai*10+p*2+0)*hw+pos]
					lmDelta[p][1] = lmk.data[(ai*10+p*2+1)*hw+pos]
				}
				decodedLm := DecodeLandmark(anchor, lmDelta)

				boxes = append(boxes, Box{X1: decoded[0], Y1: decoded[1], X2: decoded[2], Y2: decoded[3], Score: s})
				landmarks = append(landmarks, decodedLm)
			}
		}
	}
	return boxes, landmarks, nil
}

