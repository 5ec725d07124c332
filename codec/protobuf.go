package codec

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Protobuf encodes proto messages with deterministic map ordering.
type Protobuf[T proto.Message] struct {
	new func() T // constructor for a concrete message, e.g. func() *structpb.Struct { return &structpb.Struct{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

var marshalDet = proto.MarshalOptions{Deterministic: true}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return marshalDet.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

// Struct carries a JSON-like map as a google.protobuf.Struct message.
// Values must be what structpb.NewValue accepts: nil, bool, numbers,
// strings, []any and map[string]any.
type Struct struct{}

var structCodec = NewProtobuf(func() *structpb.Struct { return &structpb.Struct{} })

func (Struct) Encode(m map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, err
	}
	return structCodec.Encode(s)
}

func (Struct) Decode(b []byte) (map[string]any, error) {
	s, err := structCodec.Decode(b)
	if err != nil {
		return nil, err
	}
	return s.AsMap(), nil
}
