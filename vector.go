package layout

import (
	"fmt"
	"math"
)

// VecU8 is a byte vector with a 4-byte length prefix.
var VecU8 = Vector(4)

// Vector returns the codec for a byte sequence prefixed by its length as a
// width-byte little-endian unsigned integer. Width must be 1, 2, 4 or 8.
//
// Decoded payloads alias the source buffer. An empty payload decodes to nil.
func Vector(width int) Codec[[]byte] {
	switch width {
	case 1, 2, 4, 8:
	default:
		panic(fmt.Sprintf("layout: vector length width %d, want 1, 2, 4 or 8", width))
	}
	return vector{width: width}
}

type vector struct {
	width int
}

func (vector) Kind() Kind { return KindVector }

// LenWidth is the width of the length prefix in bytes.
func (v vector) LenWidth() int { return v.width }

func (v vector) String() string { return fmt.Sprintf("vec<%d>", v.width) }

func (v vector) max() uint64 {
	if v.width == 8 {
		return math.MaxUint64
	}
	return 1<<(8*uint(v.width)) - 1
}

func (v vector) Decode(c *Cursor) ([]byte, error) {
	start := c.Pos()
	hdr, err := c.Next(v.width)
	if err != nil {
		return nil, err
	}
	var n uint64
	switch v.width {
	case 1:
		n = uint64(hdr[0])
	case 2:
		n = uint64(le.Uint16(hdr))
	case 4:
		n = uint64(le.Uint32(hdr))
	case 8:
		n = le.Uint64(hdr)
	}
	if n > uint64(c.Len()) {
		have := c.Len()
		c.Rewind(start)
		return nil, fmt.Errorf("%w: vector of %d bytes, have %d", ErrInsufficientBytes, n, have)
	}
	if n == 0 {
		return nil, nil
	}
	return c.Next(int(n))
}

func (v vector) Append(dst []byte, p []byte) ([]byte, error) {
	n := uint64(len(p))
	if n > v.max() {
		return dst, fmt.Errorf("%w: %d bytes in vec<%d>", ErrLengthOverflow, n, v.width)
	}
	switch v.width {
	case 1:
		dst = append(dst, byte(n))
	case 2:
		dst = le.AppendUint16(dst, uint16(n))
	case 4:
		dst = le.AppendUint32(dst, uint32(n))
	case 8:
		dst = le.AppendUint64(dst, n)
	}
	return append(dst, p...), nil
}
