package pipeline

import (
	"image"

	"github.com/okieraised/faceid-gateway/internal/apierr"

	"gocv.io/x/gocv"
)

const alignedSize = 112

// canonicalTemplate is the fixed five-point target used for similarity-
// transform alignment into the 112x112 output frame.
var canonicalTemplate = [5][2]float32{
	{38.2946, 51.6963},
	{73.5318, 51.5014},
	{56.0252, 71.7366},
	{41.5493, 92.3655},
	{70.7299, 92.2041},
}

const (
	alignRansacThreshold = 3.0
	alignMaxIters        = 2000
	alignConfidence      = 0.99
	alignMargin          = 44 // total px margin added around the fallback crop/box before resize
)

// Align warps img into the fixed 112x112 canonical frame (§4.7). When lm is
// non-nil, a similarity transform is estimated via LMEDS and applied with
// warpAffine; if no transform can be found, or lm is nil, alignment falls
// back to a plain crop-and-resize using b (or, absent a box too, a centered
// 87.5% crop of img).
func Align(img gocv.Mat, b *Box, lm *Landmark) (gocv.Mat, error) {
	if lm != nil {
		if out, ok := alignBySimilarity(img, *lm); ok {
			return out, nil
		}
	}
	return alignByCrop(img, b)
}

func alignBySimilarity(img gocv.Mat, lm Landmark) (gocv.Mat, bool) {
	src := make([]gocv.Point2f, 5)
	dst := make([]gocv.Point2f, 5)
	for i := 0; i < 5; i++ {
		src[i] = gocv.NewPoint2f(lm[i][0], lm[i][1])
		dst[i] = gocv.NewPoint2f(canonicalTemplate[i][0], canonicalTemplate[i][1])
	}

	inliers := gocv.NewMat()
	defer inliers.Close()

	m := gocv.EstimateAffinePartial2DWithParams(src, dst, &inliers, gocv.LMEDS,
		alignRansacThreshold, alignMaxIters, alignConfidence, 10)
	defer m.Close()

	if m.Empty() {
		return gocv.Mat{}, false
	}

	dst112 := gocv.NewMat()
	gocv.WarpAffineWithParams(img, &dst112, m, image.Pt(alignedSize, alignedSize),
		gocv.InterpolationLinear, gocv.BorderConstant, gocv.NewScalar(0, 0, 0, 0))
	return dst112, true
}

func alignByCrop(img gocv.Mat, b *Box) (gocv.Mat, error) {
	h, w := img.Rows(), img.Cols()

	var x1, y1, x2, y2 float32
	if b != nil {
		x1, y1, x2, y2 = b.X1, b.Y1, b.X2, b.Y2
	} else {
		// Centered 87.5% crop: 6.25% inset on each side.
		insetX := 0.0625 * float32(w)
		insetY := 0.0625 * float32(h)
		x1, y1 = insetX, insetY
		x2, y2 = float32(w)-insetX, float32(h)-insetY
	}

	half := float32(alignMargin) / 2
	x1 -= half
	y1 -= half
	x2 += half
	y2 += half

	clipped := ClipBox([4]float32{x1, y1, x2, y2}, w, h)
	rx1, ry1, rx2, ry2 := int(clipped[0]), int(clipped[1]), int(clipped[2]), int(clipped[3])
	if rx2 <= rx1 || ry2 <= ry1 {
		return gocv.Mat{}, apierr.New(apierr.ModelOutputInvalid, "alignment: degenerate crop region")
	}

	roi := img.Region(image.Rect(rx1, ry1, rx2, ry2))
	defer roi.Close()

	return resizeTo(roi, alignedSize, alignedSize), nil
}
