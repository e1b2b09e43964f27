package triton

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// wireMarshaler/wireUnmarshaler are implemented by every request/response
// struct in messages.go.
type wireMarshaler interface {
	Marshal() ([]byte, error)
}

type wireUnmarshaler interface {
	Unmarshal([]byte) error
}

// codec adapts the hand-written protowire Marshal/Unmarshal methods to
// grpc-go's encoding.Codec, so the real grpc-go transport stack carries
// genuine wire-compatible protobuf frames without requiring compiled
// descriptors or the protoreflect machinery grpc-go's default codec needs.
type codec struct{}

func (codec) Name() string { return "proto" }

func (codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(wireMarshaler)
	if !ok {
		return nil, fmt.Errorf("triton: %T does not implement Marshal() ([]byte, error)", v)
	}
	return m.Marshal()
}

func (codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(wireUnmarshaler)
	if !ok {
		return fmt.Errorf("triton: %T does not implement Unmarshal([]byte) error", v)
	}
	return m.Unmarshal(data)
}

// init registers codec under the name "proto", which is the codec grpc-go
// selects whenever a call carries no content-subtype override — i.e. every
// call made through this package's client.
func init() {
	encoding.RegisterCodec(codec{})
}
