package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBoxIdentityDelta(t *testing.T) {
	anchor := [4]float32{10, 10, 49, 49} // 40x40 anchor
	box := DecodeBox(anchor, [4]float32{0, 0, 0, 0})

	assert.InDelta(t, anchor[0], box[0], 1e-3)
	assert.InDelta(t, anchor[1], box[1], 1e-3)
	assert.InDelta(t, anchor[2], box[2], 1e-3)
	assert.InDelta(t, anchor[3], box[3], 1e-3)
}

func TestDecodeBoxTranslatesCenterAndScales(t *testing.T) {
	anchor := [4]float32{0, 0, 15, 15} // 16x16 anchor
	box := DecodeBox(anchor, [4]float32{1, 0, 0, 0})

	width := box[2] - box[0] + 1
	assert.InDelta(t, 16, width, 1e-2, "dx-only delta must not change box size")
	assert.Greater(t, box[0], anchor[0], "positive dx shifts the box right")
}

func TestDecodeLandmarkTracksAnchorCenter(t *testing.T) {
	anchor := [4]float32{0, 0, 15, 15}
	var delta [5][2]float32
	lm := DecodeLandmark(anchor, delta)

	cx := anchor[0] + 0.5*(anchor[2]-anchor[0])
	cy := anchor[1] + 0.5*(anchor[3]-anchor[1])
	for i := 0; i < 5; i++ {
		assert.InDelta(t, cx, lm[i][0], 1)
		assert.InDelta(t, cy, lm[i][1], 1)
	}
}

func TestClipBoxClampsToBounds(t *testing.T) {
	b := ClipBox([4]float32{-10, -5, 200, 150}, 100, 80)
	assert.Equal(t, [4]float32{0, 0, 99, 79}, b)
}

func TestNMSSuppressesOverlapping(t *testing.T) {
	boxes := []Box{
		{X1: 0, Y1: 0, X2: 19, Y2: 19, Score: 0.9},
		{X1: 1, Y1: 1, X2: 20, Y2: 20, Score: 0.8}, // heavy overlap with box 0
		{X1: 100, Y1: 100, X2: 119, Y2: 119, Score: 0.7},
	}
	landmarks := make([]Landmark, len(boxes))

	det := NMS(boxes, landmarks, 0.45)

	require.Len(t, det.Boxes, 2)
	assert.Equal(t, float32(0.9), det.Boxes[0].Score)
	assert.Equal(t, float32(0.7), det.Boxes[1].Score)
}

func TestNMSKeepsLandmarksAligned(t *testing.T) {
	boxes := []Box{
		{X1: 0, Y1: 0, X2: 9, Y2: 9, Score: 0.5},
		{X1: 50, Y1: 50, X2: 59, Y2: 59, Score: 0.95},
	}
	landmarks := []Landmark{
		{{1, 1}},
		{{51, 51}},
	}

	det := NMS(boxes, landmarks, 0.3)

	require.Len(t, det.Boxes, 2)
	require.Len(t, det.Landmarks, 2)
	// highest score first; its landmark must be the one that was paired with it
	assert.Equal(t, float32(0.95), det.Boxes[0].Score)
	assert.Equal(t, Landmark{{51, 51}}, det.Landmarks[0])
}

func TestNMSIsIdempotent(t *testing.T) {
	boxes := []Box{
		{X1: 0, Y1: 0, X2: 19, Y2: 19, Score: 0.9},
		{X1: 40, Y1: 40, X2: 59, Y2: 59, Score: 0.6},
	}
	landmarks := make([]Landmark, len(boxes))

	first := NMS(boxes, landmarks, 0.45)
	second := NMS(first.Boxes, first.Landmarks, 0.45)

	assert.Equal(t, first.Boxes, second.Boxes)
}

func TestIOUIdenticalBoxesIsOne(t *testing.T) {
	a := Box{X1: 0, Y1: 0, X2: 9, Y2: 9}
	assert.InDelta(t, float32(1.0), iou(a, a), 1e-6)
}

func TestIOUDisjointBoxesIsZero(t *testing.T) {
	a := Box{X1: 0, Y1: 0, X2: 9, Y2: 9}
	b := Box{X1: 100, Y1: 100, X2: 109, Y2: 109}
	assert.Equal(t, float32(0), iou(a, b))
}
