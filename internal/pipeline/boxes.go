package pipeline

import "sort"

// DecodeBox applies the center-parametrized bounding-box regression (§4.4)
// to one anchor, producing an absolute box in the same coordinate frame as
// the anchor. Delta is (dx, dy, dw, dh); all bbox-delta std multipliers are
// 1.0, so no additional scaling is applied here.
func DecodeBox(anchor [4]float32, delta [4]float32) [4]float32 {
	w := anchor[2] - anchor[0] + 1
	h := anchor[3] - anchor[1] + 1
	cx := anchor[0] + 0.5*(w-1)
	cy := anchor[1] + 0.5*(h-1)

	predCx := delta[0]*w + cx
	predCy := delta[1]*h + cy
	predW := expf(delta[2]) * w
	predH := expf(delta[3]) * h

	return [4]float32{
		predCx - 0.5*(predW-1),
		predCy - 0.5*(predH-1),
		predCx + 0.5*(predW-1),
		predCy + 0.5*(predH-1),
	}
}

// DecodeLandmark applies the landmark regression (§4.4) to one anchor; the
// landmark-delta std multiplier is also 1.0.
func DecodeLandmark(anchor [4]float32, delta [5][2]float32) Landmark {
	w := anchor[2] - anchor[0] + 1
	h := anchor[3] - anchor[1] + 1
	cx := anchor[0] + 0.5*(w-1)
	cy := anchor[1] + 0.5*(h-1)

	var lm Landmark
	for i := 0; i < 5; i++ {
		lm[i][0] = delta[i][0]*w + cx
		lm[i][1] = delta[i][1]*h + cy
	}
	return lm
}

// ClipBox clamps a box to the image bounds [0, width-1] x [0, height-1].
func ClipBox(b [4]float32, width, height int) [4]float32 {
	maxX := float32(width - 1)
	maxY := float32(height - 1)
	return [4]float32{
		clampf(b[0], 0, maxX),
		clampf(b[1], 0, maxY),
		clampf(b[2], 0, maxX),
		clampf(b[3], 0, maxY),
	}
}

// ClipLandmark clamps every point of a landmark set to the image bounds.
func ClipLandmark(lm Landmark, width, height int) Landmark {
	maxX := float32(width - 1)
	maxY := float32(height - 1)
	var out Landmark
	for i := 0; i < 5; i++ {
		out[i][0] = clampf(lm[i][0], 0, maxX)
		out[i][1] = clampf(lm[i][1], 0, maxY)
	}
	return out
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// iou computes the inclusive-pixel intersection-over-union of two boxes:
// area is measured with the +1 convention (x2-x1+1) throughout, matching
// the detector's box-decode convention.
func iou(a, b Box) float32 {
	x1 := maxf(a.X1, b.X1)
	y1 := maxf(a.Y1, b.Y1)
	x2 := minf(a.X2, b.X2)
	y2 := minf(a.Y2, b.Y2)

	w := maxf(0, x2-x1+1)
	h := maxf(0, y2-y1+1)
	inter := w * h

	areaA := (a.X2 - a.X1 + 1) * (a.Y2 - a.Y1 + 1)
	areaB := (b.X2 - b.X1 + 1) * (b.Y2 - b.Y1 + 1)

	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// NMS performs greedy non-maximum suppression (§4.4): candidates are
// processed in descending score order, and any remaining candidate whose
// IoU with an already-kept box exceeds threshold is discarded. Landmarks
// are carried alongside their box and returned in the same kept order.
func NMS(boxes []Box, landmarks []Landmark, threshold float32) Detections {
	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return boxes[order[i]].Score > boxes[order[j]].Score })

	suppressed := make([]bool, len(boxes))
	var out Detections
	for _, i := range order {
		if suppressed[i] {
			continue
		}
		out.Boxes = append(out.Boxes, boxes[i])
		if landmarks != nil {
			out.Landmarks = append(out.Landmarks, landmarks[i])
		}
		for _, j := range order {
			if j == i || suppressed[j] {
				continue
			}
			if iou(boxes[i], boxes[j]) > threshold {
				suppressed[j] = true
			}
		}
	}
	return out
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
