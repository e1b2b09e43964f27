package triton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/encoding"
)

func TestCodecRegisteredUnderProtoName(t *testing.T) {
	c := encoding.GetCodec("proto")
	require.NotNil(t, c)
	assert.Equal(t, "proto", c.Name())
}

func TestCodecMarshalUnmarshalRoundTrip(t *testing.T) {
	c := codec{}
	req := &ModelReadyRequest{Name: "face_identification", Version: "1"}

	raw, err := c.Marshal(req)
	require.NoError(t, err)

	var out ModelReadyRequest
	require.NoError(t, c.Unmarshal(raw, &out))
	assert.Equal(t, req.Name, out.Name)
	assert.Equal(t, req.Version, out.Version)
}

func TestCodecRejectsNonWireTypes(t *testing.T) {
	c := codec{}
	_, err := c.Marshal(struct{}{})
	require.Error(t, err)

	var out struct{}
	err = c.Unmarshal([]byte{}, &out)
	require.Error(t, err)
}
