package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocv.io/x/gocv"
)

func singlePixelMat(t *testing.T, b, g, r byte) gocv.Mat {
	t.Helper()
	img, err := gocv.NewMatFromBytes(1, 1, gocv.MatTypeCV8UC3, []byte{b, g, r})
	require.NoError(t, err)
	return img
}

func TestToNCHWConvertsBGRToRGBAndNormalizes(t *testing.T) {
	img := singlePixelMat(t, 10, 20, 30) // B=10, G=20, R=30
	defer img.Close()

	mean := [3]float32{0, 0, 0}
	std := [3]float32{1, 1, 1}

	rgb := toNCHW(img, mean, std, true)
	require.Len(t, rgb, 3)
	assert.Equal(t, float32(30), rgb[0], "channel 0 carries red when channelOrderRGB")
	assert.Equal(t, float32(20), rgb[1])
	assert.Equal(t, float32(10), rgb[2])

	bgr := toNCHW(img, mean, std, false)
	assert.Equal(t, float32(10), bgr[0], "channel 0 carries blue when !channelOrderRGB")
	assert.Equal(t, float32(20), bgr[1])
	assert.Equal(t, float32(30), bgr[2])
}

func TestToNCHWAppliesMeanAndScale(t *testing.T) {
	img := singlePixelMat(t, 127, 127, 127)
	defer img.Close()

	mean := [3]float32{127.5, 127.5, 127.5}
	std := [3]float32{0.0078125, 0.0078125, 0.0078125}

	out := toNCHW(img, mean, std, true)
	for _, v := range out {
		assert.InDelta(t, (127.0-127.5)*0.0078125, v, 1e-6)
	}
}

func TestResizeToProducesRequestedDimensions(t *testing.T) {
	img := gocv.NewMatWithSize(50, 40, gocv.MatTypeCV8UC3)
	defer img.Close()

	out := resizeTo(img, 112, 112)
	defer out.Close()

	assert.Equal(t, 112, out.Rows())
	assert.Equal(t, 112, out.Cols())
}
