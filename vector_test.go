package layout_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/layout"
)

func TestVectorFraming(t *testing.T) {
	got, err := layout.Encode(layout.VecU8, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 0, 0, 0, 1, 2, 3}, got)

	v, n, err := layout.Decode(layout.VecU8, got)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, v)
	assert.Equal(t, 7, n)
}

func TestVectorWidths(t *testing.T) {
	payload := []byte("abc")
	for _, w := range []int{1, 2, 4, 8} {
		c := layout.Vector(w)
		enc, err := layout.Encode(c, payload)
		require.NoError(t, err)
		require.Len(t, enc, w+len(payload))
		assert.Equal(t, byte(3), enc[0])

		dec, n, err := layout.Decode(c, enc)
		require.NoError(t, err)
		assert.Equal(t, payload, dec)
		assert.Equal(t, len(enc), n)
	}
}

func TestVectorInvalidWidthPanics(t *testing.T) {
	for _, w := range []int{0, 3, 16, -1} {
		assert.Panics(t, func() { layout.Vector(w) }, "width %d", w)
	}
}

func TestVectorEmptyDecodesNil(t *testing.T) {
	v, n, err := layout.Decode(layout.VecU8, []byte{0, 0, 0, 0, 9})
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 4, n)
}

func TestVectorShortPayload(t *testing.T) {
	// length claims 0x03000301 bytes
	c := layout.NewCursor([]byte{1, 3, 0, 3, 1, 0, 0, 1})
	_, err := layout.VecU8.Decode(c)
	require.ErrorIs(t, err, layout.ErrInsufficientBytes)
	assert.Equal(t, 0, c.Pos())

	c = layout.NewCursor([]byte{1, 0})
	_, err = layout.VecU8.Decode(c)
	require.ErrorIs(t, err, layout.ErrInsufficientBytes)
	assert.Equal(t, 0, c.Pos())
}

func TestVectorHugeLengthPrefix(t *testing.T) {
	b := bytes.Repeat([]byte{0xFF}, 8)
	_, _, err := layout.Decode(layout.Vector(8), b)
	require.ErrorIs(t, err, layout.ErrInsufficientBytes)
}

func TestVectorZeroCopy(t *testing.T) {
	src := []byte{2, 0, 0, 0, 'h', 'i'}
	v, _, err := layout.Decode(layout.VecU8, src)
	require.NoError(t, err)
	src[4] = 'H'
	assert.Equal(t, "Hi", string(v))
	assert.Equal(t, 2, cap(v), "payload must not expose bytes past itself")
}

func TestVectorLengthOverflow(t *testing.T) {
	_, err := layout.Encode(layout.Vector(1), make([]byte, 256))
	require.ErrorIs(t, err, layout.ErrLengthOverflow)

	enc, err := layout.Encode(layout.Vector(1), make([]byte, 255))
	require.NoError(t, err)
	assert.Len(t, enc, 256)

	_, err = layout.Encode(layout.Vector(2), make([]byte, 1<<16))
	require.ErrorIs(t, err, layout.ErrLengthOverflow)
}

func TestOptional(t *testing.T) {
	opt := layout.Optional(layout.U32)

	v, n, err := layout.Decode(opt, []byte{3, 0, 0, 0})
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, uint32(3), *v)
	assert.Equal(t, 4, n)

	c := layout.NewCursor([]byte{3, 0})
	v, err = opt.Decode(c)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 0, c.Pos(), "absent optional consumes nothing")

	enc, err := layout.Encode(opt, nil)
	require.NoError(t, err)
	assert.Empty(t, enc)

	x := uint32(7)
	enc, err = layout.Encode(opt, &x)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 0, 0, 0}, enc)
}

func TestOptionalRewindsPartialInner(t *testing.T) {
	// the vector header is readable but the payload is not
	opt := layout.Optional(layout.VecU8)
	c := layout.NewCursor([]byte{9, 0, 0, 0, 1})
	v, err := opt.Decode(c)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 0, c.Pos())
}
