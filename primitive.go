package layout

import "encoding/binary"

var le = binary.LittleEndian

// fixed is the codec for every fixed-width primitive: width bytes,
// little-endian, no framing.
type fixed[V any] struct {
	kind  Kind
	width int
	get   func(b []byte) V
	put   func(dst []byte, v V) []byte
}

func (f fixed[V]) Kind() Kind     { return f.kind }
func (f fixed[V]) Width() int     { return f.width }
func (f fixed[V]) String() string { return f.kind.String() }

func (f fixed[V]) Decode(c *Cursor) (V, error) {
	b, err := c.Next(f.width)
	if err != nil {
		var zero V
		return zero, err
	}
	return f.get(b), nil
}

func (f fixed[V]) Append(dst []byte, v V) ([]byte, error) {
	return f.put(dst, v), nil
}

var (
	U8 Codec[uint8] = fixed[uint8]{KindUint8, 1,
		func(b []byte) uint8 { return b[0] },
		func(dst []byte, v uint8) []byte { return append(dst, v) }}
	U16 Codec[uint16] = fixed[uint16]{KindUint16, 2, le.Uint16, le.AppendUint16}
	U32 Codec[uint32] = fixed[uint32]{KindUint32, 4, le.Uint32, le.AppendUint32}
	U64 Codec[uint64] = fixed[uint64]{KindUint64, 8, le.Uint64, le.AppendUint64}

	U128 Codec[Uint128] = fixed[Uint128]{KindUint128, 16,
		func(b []byte) Uint128 { return Uint128{Lo: le.Uint64(b), Hi: le.Uint64(b[8:])} },
		func(dst []byte, v Uint128) []byte { return le.AppendUint64(le.AppendUint64(dst, v.Lo), v.Hi) }}

	I8 Codec[int8] = fixed[int8]{KindInt8, 1,
		func(b []byte) int8 { return int8(b[0]) },
		func(dst []byte, v int8) []byte { return append(dst, byte(v)) }}
	I16 Codec[int16] = fixed[int16]{KindInt16, 2,
		func(b []byte) int16 { return int16(le.Uint16(b)) },
		func(dst []byte, v int16) []byte { return le.AppendUint16(dst, uint16(v)) }}
	I32 Codec[int32] = fixed[int32]{KindInt32, 4,
		func(b []byte) int32 { return int32(le.Uint32(b)) },
		func(dst []byte, v int32) []byte { return le.AppendUint32(dst, uint32(v)) }}
	I64 Codec[int64] = fixed[int64]{KindInt64, 8,
		func(b []byte) int64 { return int64(le.Uint64(b)) },
		func(dst []byte, v int64) []byte { return le.AppendUint64(dst, uint64(v)) }}

	I128 Codec[Int128] = fixed[Int128]{KindInt128, 16,
		func(b []byte) Int128 { return Int128{Lo: le.Uint64(b), Hi: int64(le.Uint64(b[8:]))} },
		func(dst []byte, v Int128) []byte { return le.AppendUint64(le.AppendUint64(dst, v.Lo), uint64(v.Hi)) }}

	// Bool is one byte: 0 decodes to false, anything else to true.
	Bool Codec[bool] = fixed[bool]{KindBool, 1,
		func(b []byte) bool { return b[0] != 0 },
		func(dst []byte, v bool) []byte {
			if v {
				return append(dst, 1)
			}
			return append(dst, 0)
		}}
)
