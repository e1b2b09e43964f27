package pipeline

// Select picks the single detection a request should proceed with, from the
// detector's full candidate set. Behavior differs by mode and preserves two
// documented quirks rather than "fixing" them (§4.6, §9 Open Questions 1-2):
//
//  1. Enroll mode always returns the largest-area box. A width-ratio check
//     (width >= 25% of image width) is computed but its result is discarded.
//  2. Verify mode's "valid" test compares the box width *squared* against
//     0.75% of the image area — not the box area — a mismatch carried
//     forward unchanged from the original classifier.
//
// Select returns (nil, nil) iff det has no candidates.
func Select(det Detections, imgW, imgH int, isEnroll bool) (*Box, *Landmark) {
	if len(det.Boxes) == 0 {
		return nil, nil
	}

	if isEnroll {
		return selectEnroll(det, imgW)
	}
	return selectVerify(det, imgW, imgH)
}

func selectEnroll(det Detections, imgW int) (*Box, *Landmark) {
	best := 0
	bestArea := det.Boxes[0].Area()
	for i := 1; i < len(det.Boxes); i++ {
		// Computed for parity with the original classifier; the result is
		// intentionally unused in the selection decision.
		_ = isFaceAreaBigEnough(det.Boxes[i], imgW)
		if a := det.Boxes[i].Area(); a > bestArea {
			bestArea = a
			best = i
		}
	}
	b := det.Boxes[best]
	var lm *Landmark
	if best < len(det.Landmarks) {
		l := det.Landmarks[best]
		lm = &l
	}
	return &b, lm
}

func isFaceAreaBigEnough(b Box, imgW int) bool {
	return b.Width() >= 0.25*float32(imgW)
}

func selectVerify(det Detections, imgW, imgH int) (*Box, *Landmark) {
	marginEdge := minf(50, 0.1*float32(imgW))
	W, H := float32(imgW), float32(imgH)

	isValid := func(b Box) bool {
		cx, cy := b.CenterX(), b.CenterY()
		insideShrunk := cx >= marginEdge && cx <= W-marginEdge && cy >= marginEdge && cy <= H-marginEdge
		widthSq := b.Width() * b.Width()
		bigEnough := widthSq/(W*H) >= 0.0075
		return insideShrunk && bigEnough
	}

	isCentered := func(b Box) bool {
		if !isValid(b) {
			return false
		}
		cx := b.CenterX()
		return cx >= W/2-0.3*W && cx <= W/2+0.3*W
	}

	pick := func(indices []int) int {
		best := indices[0]
		bestScore := det.Boxes[best].Width() + det.Boxes[best].Height()
		for _, i := range indices[1:] {
			if s := det.Boxes[i].Width() + det.Boxes[i].Height(); s > bestScore {
				bestScore = s
				best = i
			}
		}
		return best
	}

	var centered, valid, all []int
	for i, b := range det.Boxes {
		all = append(all, i)
		if isValid(b) {
			valid = append(valid, i)
		}
		if isCentered(b) {
			centered = append(centered, i)
		}
	}

	var chosen int
	switch {
	case len(centered) > 0:
		chosen = pick(centered)
	case len(valid) > 0:
		chosen = pick(valid)
	default:
		chosen = pick(all)
	}

	b := det.Boxes[chosen]
	var lm *Landmark
	if chosen < len(det.Landmarks) {
		l := det.Landmarks[chosen]
		lm = &l
	}
	return &b, lm
}
