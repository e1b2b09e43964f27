package pipeline

// AnchorStride is one feature-pyramid level's anchor configuration (§4.3).
type AnchorStride struct {
	Stride int
	Base   [][4]float32 // A_s base anchors, centered at the stride's origin cell
}

// strideScales is the FPN's fixed anchor-scale table: one (high, low) scale
// pair per stride, largest stride first, matching the detector's declared
// feature-pyramid order (32, 16, 8).
var strideScales = map[int][2]float32{
	32: {32, 16},
	16: {8, 4},
	8:  {2, 1},
}

const anchorBaseSize = 16

// GenerateAnchorStrides builds the base anchor set for every FPN level. Each
// stride contributes A_s=2 anchors: a square box of side anchorBaseSize*scale
// for each of the stride's two scales, centered on the origin cell.
func GenerateAnchorStrides() []AnchorStride {
	strides := []int{32, 16, 8}
	out := make([]AnchorStride, 0, len(strides))
	for _, s := range strides {
		scales := strideScales[s]
		base := make([][4]float32, 0, 2)
		for _, scale := range scales {
			side := float32(anchorBaseSize) * scale
			half := (side - 1) / 2
			cx := float32(anchorBaseSize-1) / 2
			cy := cx
			base = append(base, [4]float32{cx - half, cy - half, cx + half, cy + half})
		}
		out = append(out, AnchorStride{Stride: s, Base: base})
	}
	return out
}

// Shift tiles the base anchors across an H×W feature map, translating each
// base anchor by (x*stride, y*stride) at every cell and flattening the
// result in row-major (H, W, A) order, per §4.3.
func (a AnchorStride) Shift(featH, featW int) [][4]float32 {
	out := make([][4]float32, 0, featH*featW*len(a.Base))
	stride := float32(a.Stride)
	for y := 0; y < featH; y++ {
		dy := float32(y) * stride
		for x := 0; x < featW; x++ {
			dx := float32(x) * stride
			for _, base := range a.Base {
				out = append(out, [4]float32{base[0] + dx, base[1] + dy, base[2] + dx, base[3] + dy})
			}
		}
	}
	return out
}

// NumAnchors is A_s, the number of anchors this stride contributes per cell.
func (a AnchorStride) NumAnchors() int { return len(a.Base) }
