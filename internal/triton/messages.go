// Package triton implements a client for the KServe gRPC inference protocol
// (github.com/kserve/open-inference-protocol /
// nvidia/triton-inference-server's GRPCInferenceService), modeled directly
// on the Rust original's pipeline/triton_client/client.rs, which wraps
// tonic-generated bindings for the same service.
//
// The Go toolchain used to build this repository cannot invoke protoc, so
// the wire messages below are hand-written structs with their own
// Marshal/Unmarshal built on google.golang.org/protobuf/encoding/protowire
// — the same stable, descriptor-free wire-format primitives protoc-gen-go
// itself is built on. Field numbers match the published grpc_service.proto
// and model_config.proto exactly, so these structs interoperate with a real
// Triton (or any KServe-compatible) server on the wire.
package triton

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// DataType mirrors model_config.proto's DataType enum. Only the few values
// this gateway emits/consumes are named; others decode fine as their raw
// int32 but have no symbolic constant here.
type DataType int32

const (
	TypeInvalid DataType = 0
	TypeBool    DataType = 1
	TypeUint8   DataType = 2
	TypeInt64   DataType = 9
	TypeFP32    DataType = 11
	TypeFP64    DataType = 12
	TypeString  DataType = 13
)

func (d DataType) WireName() string {
	switch d {
	case TypeFP32:
		return "FP32"
	case TypeFP64:
		return "FP64"
	case TypeInt64:
		return "INT64"
	case TypeBool:
		return "BOOL"
	case TypeUint8:
		return "UINT8"
	case TypeString:
		return "BYTES"
	default:
		return "INVALID"
	}
}

// ---- ServerLive ----

type ServerLiveRequest struct{}

func (m ServerLiveRequest) Marshal() ([]byte, error) { return nil, nil }
func (m *ServerLiveRequest) Unmarshal(b []byte) error { return nil }

type ServerLiveResponse struct {
	Live bool
}

func (m ServerLiveResponse) Marshal() ([]byte, error) {
	var b []byte
	if m.Live {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b, nil
}

func (m *ServerLiveResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		if num == 1 {
			m.Live = v.varint != 0
		}
		return nil
	})
}

// ---- ServerReady ----

type ServerReadyRequest struct{}

func (m ServerReadyRequest) Marshal() ([]byte, error)  { return nil, nil }
func (m *ServerReadyRequest) Unmarshal(b []byte) error { return nil }

type ServerReadyResponse struct {
	Ready bool
}

func (m ServerReadyResponse) Marshal() ([]byte, error) {
	var b []byte
	if m.Ready {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b, nil
}

func (m *ServerReadyResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		if num == 1 {
			m.Ready = v.varint != 0
		}
		return nil
	})
}

// ---- ModelReady ----

type ModelReadyRequest struct {
	Name    string
	Version string
}

func (m ModelReadyRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Version)
	return b, nil
}

func (m *ModelReadyRequest) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			m.Name = v.str
		case 2:
			m.Version = v.str
		}
		return nil
	})
}

type ModelReadyResponse struct {
	Ready bool
}

func (m ModelReadyResponse) Marshal() ([]byte, error) {
	var b []byte
	if m.Ready {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b, nil
}

func (m *ModelReadyResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		if num == 1 {
			m.Ready = v.varint != 0
		}
		return nil
	})
}

// ---- ServerMetadata ----

type ServerMetadataRequest struct{}

func (m ServerMetadataRequest) Marshal() ([]byte, error)  { return nil, nil }
func (m *ServerMetadataRequest) Unmarshal(b []byte) error { return nil }

type ServerMetadataResponse struct {
	Name       string
	Version    string
	Extensions []string
}

func (m ServerMetadataResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Version)
	for _, e := range m.Extensions {
		b = appendString(b, 3, e)
	}
	return b, nil
}

func (m *ServerMetadataResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			m.Name = v.str
		case 2:
			m.Version = v.str
		case 3:
			m.Extensions = append(m.Extensions, v.str)
		}
		return nil
	})
}

// ---- ModelMetadata ----

type ModelMetadataRequest struct {
	Name    string
	Version string
}

func (m ModelMetadataRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Version)
	return b, nil
}

func (m *ModelMetadataRequest) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			m.Name = v.str
		case 2:
			m.Version = v.str
		}
		return nil
	})
}

type TensorMetadata struct {
	Name     string
	Datatype string
	Shape    []int64
}

func (t TensorMetadata) marshalInto(fieldNum protowire.Number, b []byte) []byte {
	var inner []byte
	inner = appendString(inner, 1, t.Name)
	inner = appendString(inner, 2, t.Datatype)
	for _, s := range t.Shape {
		inner = appendVarintField(inner, 3, uint64(s))
	}
	return appendBytesField(b, fieldNum, inner)
}

func unmarshalTensorMetadata(b []byte) (TensorMetadata, error) {
	var t TensorMetadata
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			t.Name = v.str
		case 2:
			t.Datatype = v.str
		case 3:
			t.Shape = append(t.Shape, int64(v.varint))
		}
		return nil
	})
	return t, err
}

type ModelMetadataResponse struct {
	Name     string
	Versions []string
	Platform string
	Inputs   []TensorMetadata
	Outputs  []TensorMetadata
}

func (m ModelMetadataResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Name)
	for _, v := range m.Versions {
		b = appendString(b, 2, v)
	}
	b = appendString(b, 3, m.Platform)
	for _, in := range m.Inputs {
		b = in.marshalInto(4, b)
	}
	for _, out := range m.Outputs {
		b = out.marshalInto(5, b)
	}
	return b, nil
}

func (m *ModelMetadataResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			m.Name = v.str
		case 2:
			m.Versions = append(m.Versions, v.str)
		case 3:
			m.Platform = v.str
		case 4:
			tm, err := unmarshalTensorMetadata(v.bytes)
			if err != nil {
				return err
			}
			m.Inputs = append(m.Inputs, tm)
		case 5:
			tm, err := unmarshalTensorMetadata(v.bytes)
			if err != nil {
				return err
			}
			m.Outputs = append(m.Outputs, tm)
		}
		return nil
	})
}

// ---- ModelConfig ----

type ModelConfigRequest struct {
	Name    string
	Version string
}

func (m ModelConfigRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Version)
	return b, nil
}

func (m *ModelConfigRequest) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			m.Name = v.str
		case 2:
			m.Version = v.str
		}
		return nil
	})
}

// ModelIO matches model_config.proto's ModelInput/ModelOutput shape closely
// enough for this gateway's purposes: name, data_type, dims.
type ModelIO struct {
	Name     string
	DataType DataType
	Dims     []int64
}

func (io ModelIO) marshalInto(fieldNum protowire.Number, b []byte) []byte {
	var inner []byte
	inner = appendString(inner, 1, io.Name)
	inner = appendVarintField(inner, 2, uint64(io.DataType))
	for _, d := range io.Dims {
		inner = appendVarintField(inner, 4, uint64(d))
	}
	return appendBytesField(b, fieldNum, inner)
}

func unmarshalModelIO(b []byte) (ModelIO, error) {
	var io ModelIO
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			io.Name = v.str
		case 2:
			io.DataType = DataType(v.varint)
		case 4:
			io.Dims = append(io.Dims, int64(v.varint))
		}
		return nil
	})
	return io, err
}

type ModelConfig struct {
	Name         string
	Platform     string
	MaxBatchSize int32
	Input        []ModelIO
	Output       []ModelIO
}

func (m ModelConfig) marshalInto(fieldNum protowire.Number, b []byte) []byte {
	var inner []byte
	inner = appendString(inner, 1, m.Name)
	inner = appendString(inner, 2, m.Platform)
	inner = appendVarintField(inner, 4, uint64(m.MaxBatchSize))
	for _, in := range m.Input {
		inner = in.marshalInto(5, inner)
	}
	for _, out := range m.Output {
		inner = out.marshalInto(6, inner)
	}
	return appendBytesField(b, fieldNum, inner)
}

func unmarshalModelConfig(b []byte) (ModelConfig, error) {
	var m ModelConfig
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			m.Name = v.str
		case 2:
			m.Platform = v.str
		case 4:
			m.MaxBatchSize = int32(v.varint)
		case 5:
			io, err := unmarshalModelIO(v.bytes)
			if err != nil {
				return err
			}
			m.Input = append(m.Input, io)
		case 6:
			io, err := unmarshalModelIO(v.bytes)
			if err != nil {
				return err
			}
			m.Output = append(m.Output, io)
		}
		return nil
	})
	return m, err
}

type ModelConfigResponse struct {
	Config *ModelConfig
}

func (m ModelConfigResponse) Marshal() ([]byte, error) {
	if m.Config == nil {
		return nil, nil
	}
	return m.Config.marshalInto(1, nil), nil
}

func (m *ModelConfigResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		if num == 1 {
			cfg, err := unmarshalModelConfig(v.bytes)
			if err != nil {
				return err
			}
			m.Config = &cfg
		}
		return nil
	})
}

// ---- InferTensorContents / tensors / ModelInfer ----

// InferTensorContents carries the flat payload for one of the supported
// element types; this gateway only ever populates FP32Contents (§6: "float32
// used exclusively here"), but the other fields round-trip for completeness.
type InferTensorContents struct {
	BoolContents   []bool
	IntContents    []int32
	Int64Contents  []int64
	UintContents   []uint32
	Uint64Contents []uint64
	FP32Contents   []float32
	FP64Contents   []float64
	BytesContents  [][]byte
}

func (c InferTensorContents) marshalInto(fieldNum protowire.Number, b []byte) []byte {
	var inner []byte
	for _, v := range c.BoolContents {
		inner = appendVarintField(inner, 1, boolToUint64(v))
	}
	for _, v := range c.IntContents {
		inner = appendVarintField(inner, 2, uint64(uint32(v)))
	}
	for _, v := range c.Int64Contents {
		inner = appendVarintField(inner, 3, uint64(v))
	}
	for _, v := range c.UintContents {
		inner = appendVarintField(inner, 4, uint64(v))
	}
	for _, v := range c.Uint64Contents {
		inner = appendVarintField(inner, 5, v)
	}
	for _, v := range c.FP32Contents {
		inner = protowire.AppendTag(inner, 6, protowire.Fixed32Type)
		inner = protowire.AppendFixed32(inner, float32bits(v))
	}
	for _, v := range c.FP64Contents {
		inner = protowire.AppendTag(inner, 7, protowire.Fixed64Type)
		inner = protowire.AppendFixed64(inner, float64bits(v))
	}
	for _, v := range c.BytesContents {
		inner = appendBytesField(inner, 8, v)
	}
	return appendBytesField(b, fieldNum, inner)
}

func unmarshalInferTensorContents(b []byte) (InferTensorContents, error) {
	var c InferTensorContents
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			c.BoolContents = append(c.BoolContents, v.varint != 0)
		case 2:
			c.IntContents = append(c.IntContents, int32(v.varint))
		case 3:
			c.Int64Contents = append(c.Int64Contents, int64(v.varint))
		case 4:
			c.UintContents = append(c.UintContents, uint32(v.varint))
		case 5:
			c.Uint64Contents = append(c.Uint64Contents, v.varint)
		case 6:
			c.FP32Contents = append(c.FP32Contents, v.f32)
		case 7:
			c.FP64Contents = append(c.FP64Contents, v.f64)
		case 8:
			c.BytesContents = append(c.BytesContents, v.bytes)
		}
		return nil
	})
	return c, err
}

type InferInputTensor struct {
	Name     string
	Datatype string
	Shape    []int64
	Contents *InferTensorContents
}

func (t InferInputTensor) marshalInto(fieldNum protowire.Number, b []byte) []byte {
	var inner []byte
	inner = appendString(inner, 1, t.Name)
	inner = appendString(inner, 2, t.Datatype)
	for _, s := range t.Shape {
		inner = appendVarintField(inner, 3, uint64(s))
	}
	if t.Contents != nil {
		inner = t.Contents.marshalInto(5, inner)
	}
	return appendBytesField(b, fieldNum, inner)
}

func unmarshalInferInputTensor(b []byte) (InferInputTensor, error) {
	var t InferInputTensor
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			t.Name = v.str
		case 2:
			t.Datatype = v.str
		case 3:
			t.Shape = append(t.Shape, int64(v.varint))
		case 5:
			c, err := unmarshalInferTensorContents(v.bytes)
			if err != nil {
				return err
			}
			t.Contents = &c
		}
		return nil
	})
	return t, err
}

type InferRequestedOutputTensor struct {
	Name string
}

func (t InferRequestedOutputTensor) marshalInto(fieldNum protowire.Number, b []byte) []byte {
	var inner []byte
	inner = appendString(inner, 1, t.Name)
	return appendBytesField(b, fieldNum, inner)
}

type InferOutputTensor struct {
	Name     string
	Datatype string
	Shape    []int64
}

func unmarshalInferOutputTensor(b []byte) (InferOutputTensor, error) {
	var t InferOutputTensor
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			t.Name = v.str
		case 2:
			t.Datatype = v.str
		case 3:
			if typ == protowire.BytesType {
				// proto3 writes repeated int64 fields packed by default.
				packed := v.bytes
				for len(packed) > 0 {
					val, n := protowire.ConsumeVarint(packed)
					if n < 0 {
						return fmt.Errorf("triton: invalid packed shape: %w", protowire.ParseError(n))
					}
					t.Shape = append(t.Shape, int64(val))
					packed = packed[n:]
				}
			} else {
				t.Shape = append(t.Shape, int64(v.varint))
			}
		}
		return nil
	})
	return t, err
}

type ModelInferRequest struct {
	ModelName        string
	ModelVersion     string
	ID               string
	Inputs           []InferInputTensor
	Outputs          []InferRequestedOutputTensor
	RawInputContents [][]byte
}

func (m ModelInferRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.ModelName)
	b = appendString(b, 2, m.ModelVersion)
	b = appendString(b, 3, m.ID)
	for _, in := range m.Inputs {
		b = in.marshalInto(5, b)
	}
	for _, out := range m.Outputs {
		b = out.marshalInto(6, b)
	}
	for _, raw := range m.RawInputContents {
		b = appendBytesField(b, 7, raw)
	}
	return b, nil
}

func (m *ModelInferRequest) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			m.ModelName = v.str
		case 2:
			m.ModelVersion = v.str
		case 3:
			m.ID = v.str
		case 5:
			t, err := unmarshalInferInputTensor(v.bytes)
			if err != nil {
				return err
			}
			m.Inputs = append(m.Inputs, t)
		case 7:
			m.RawInputContents = append(m.RawInputContents, v.bytes)
		}
		return nil
	})
}

type ModelInferResponse struct {
	ModelName         string
	ModelVersion      string
	ID                string
	Outputs           []InferOutputTensor
	RawOutputContents [][]byte
}

func (m ModelInferResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.ModelName)
	b = appendString(b, 2, m.ModelVersion)
	b = appendString(b, 3, m.ID)
	for _, raw := range m.RawOutputContents {
		b = appendBytesField(b, 6, raw)
	}
	return b, nil
}

func (m *ModelInferResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			m.ModelName = v.str
		case 2:
			m.ModelVersion = v.str
		case 3:
			m.ID = v.str
		case 5:
			t, err := unmarshalInferOutputTensor(v.bytes)
			if err != nil {
				return err
			}
			m.Outputs = append(m.Outputs, t)
		case 6:
			m.RawOutputContents = append(m.RawOutputContents, v.bytes)
		}
		return nil
	})
}

// ---- RepositoryIndex / ModelStatistics (supplemental, ops-tooling only) ----

type RepositoryIndexRequest struct {
	RepositoryName string
	Ready          bool
}

func (m RepositoryIndexRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.RepositoryName)
	b = appendVarintField(b, 2, boolToUint64(m.Ready))
	return b, nil
}

func (m *RepositoryIndexRequest) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			m.RepositoryName = v.str
		case 2:
			m.Ready = v.varint != 0
		}
		return nil
	})
}

type RepositoryModelState struct {
	Name  string
	State string
}

func unmarshalRepositoryModelState(b []byte) (RepositoryModelState, error) {
	var s RepositoryModelState
	err := forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			s.Name = v.str
		case 3:
			s.State = v.str
		}
		return nil
	})
	return s, err
}

type RepositoryIndexResponse struct {
	Models []RepositoryModelState
}

func (m *RepositoryIndexResponse) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		if num == 1 {
			s, err := unmarshalRepositoryModelState(v.bytes)
			if err != nil {
				return err
			}
			m.Models = append(m.Models, s)
		}
		return nil
	})
}

type ModelStatisticsRequest struct {
	Name    string
	Version string
}

func (m ModelStatisticsRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Version)
	return b, nil
}

func (m *ModelStatisticsRequest) Unmarshal(b []byte) error {
	return forEachField(b, func(num protowire.Number, typ protowire.Type, v fieldValue) error {
		switch num {
		case 1:
			m.Name = v.str
		case 2:
			m.Version = v.str
		}
		return nil
	})
}

// ModelStatisticsResponse is intentionally shallow: this gateway keeps it
// as the opaque raw message bytes rather than decoding the full
// nested inference/execution-count statistics tree, which no pipeline
// component consumes.
type ModelStatisticsResponse struct {
	Raw []byte
}

func (m *ModelStatisticsResponse) Unmarshal(b []byte) error {
	m.Raw = append([]byte(nil), b...)
	return nil
}

// ---- shared wire helpers ----

type fieldValue struct {
	varint uint64
	f32    float32
	f64    float64
	str    string
	bytes  []byte
}

func forEachField(b []byte, fn func(num protowire.Number, typ protowire.Type, v fieldValue) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("triton: invalid tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		var v fieldValue
		switch typ {
		case protowire.VarintType:
			val, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("triton: invalid varint: %w", protowire.ParseError(n))
			}
			v.varint = val
			b = b[n:]
		case protowire.Fixed32Type:
			val, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return fmt.Errorf("triton: invalid fixed32: %w", protowire.ParseError(n))
			}
			v.f32 = float32FromBits(val)
			b = b[n:]
		case protowire.Fixed64Type:
			val, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return fmt.Errorf("triton: invalid fixed64: %w", protowire.ParseError(n))
			}
			v.f64 = float64FromBits(val)
			b = b[n:]
		case protowire.BytesType:
			val, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("triton: invalid bytes: %w", protowire.ParseError(n))
			}
			v.bytes = val
			v.str = string(val)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("triton: invalid field: %w", protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		if err := fn(num, typ, v); err != nil {
			return err
		}
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendString(b, s)
	return b
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendBytes(b, v)
	return b
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	b = protowire.AppendVarint(b, v)
	return b
}

func boolToUint64(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}
