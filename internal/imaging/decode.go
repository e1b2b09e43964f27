// Package imaging wraps the OpenCV-backed image decode used at the HTTP
// boundary, grounded in gocv's IMDecode as the idiomatic Go counterpart of
// the Rust original's opencv::imgcodecs usage.
package imaging

import (
	"github.com/okieraised/faceid-gateway/internal/apierr"

	"gocv.io/x/gocv"
)

// Decode turns raw encoded bytes into a 3-channel 8-bit BGR image (§4.1).
// Channel-count normalization (alpha drop, grayscale replication) is handled
// by gocv.IMDecode's IMReadColor flag, which always yields a 3-channel BGR
// Mat regardless of the source channel count.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.Mat{}, apierr.New(apierr.InputInvalid, "image is empty")
	}

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, apierr.Wrap(apierr.InputInvalid, "undecodable image", err)
	}
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, apierr.New(apierr.InputInvalid, "undecodable image")
	}

	return img, nil
}
