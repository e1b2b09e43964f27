package pipeline

import (
	"image"

	"gocv.io/x/gocv"
)

// toNCHW packs a BGR gocv.Mat into a planar (1, 3, H, W) float32 buffer,
// converting BGR to RGB and applying per-channel (pixel-mean)*std, matching
// every stage's documented normalization. channelOrderRGB controls whether
// channel 0 carries red (true) or blue (false) data.
func toNCHW(img gocv.Mat, mean, std [3]float32, channelOrderRGB bool) []float32 {
	rows, cols := img.Rows(), img.Cols()
	out := make([]float32, 3*rows*cols)
	plane := rows * cols

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := img.GetVecbAt(y, x) // BGR order
			b := float32(v[0])
			g := float32(v[1])
			r := float32(v[2])

			idx := y*cols + x
			if channelOrderRGB {
				out[0*plane+idx] = (r - mean[0]) * std[0]
				out[1*plane+idx] = (g - mean[1]) * std[1]
				out[2*plane+idx] = (b - mean[2]) * std[2]
			} else {
				out[0*plane+idx] = (b - mean[0]) * std[0]
				out[1*plane+idx] = (g - mean[1]) * std[1]
				out[2*plane+idx] = (r - mean[2]) * std[2]
			}
		}
	}
	return out
}

// resizeTo returns a new Mat resized to size using linear interpolation.
// The caller owns the returned Mat and must Close it.
func resizeTo(img gocv.Mat, width, height int) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Resize(img, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	return dst
}
