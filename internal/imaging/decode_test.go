package imaging

import (
	"testing"

	"github.com/okieraised/faceid-gateway/internal/apierr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocv.io/x/gocv"
)

func TestDecodeRejectsEmptyInput(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)

	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.InputInvalid, ae.Kind)
}

func TestDecodeRejectsGarbageBytes(t *testing.T) {
	_, err := Decode([]byte("this is not an image"))
	require.Error(t, err)

	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.InputInvalid, ae.Kind)
}

func TestDecodeAcceptsValidEncodedImage(t *testing.T) {
	src := gocv.NewMatWithSize(32, 32, gocv.MatTypeCV8UC3)
	defer src.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, src)
	require.NoError(t, err)
	defer buf.Close()

	img, err := Decode(buf.GetBytes())
	require.NoError(t, err)
	defer img.Close()

	assert.Equal(t, 32, img.Rows())
	assert.Equal(t, 32, img.Cols())
	assert.Equal(t, 3, img.Channels())
}
