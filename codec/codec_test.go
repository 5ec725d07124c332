package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/layout"
	"github.com/unkn0wn-root/layout/codec"
)

type pair struct {
	A uint16
	B []byte
}

var pairSchema = layout.MustSchema(layout.Options[pair]{Name: "Pair"},
	layout.Bind("a", layout.U16, func(p *pair) *uint16 { return &p.A }),
	layout.Bind("b", layout.Vector(1), func(p *pair) *[]byte { return &p.B }),
)

func TestLayoutCodec(t *testing.T) {
	c := codec.NewLayout[pair](pairSchema)

	b, err := c.Encode(pair{A: 0x0102, B: []byte("hi")})
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 1, 2, 'h', 'i'}, b)

	p, err := c.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, pair{A: 0x0102, B: []byte("hi")}, p)

	_, err = c.Decode(append(b, 0))
	require.ErrorIs(t, err, layout.ErrTrailingBytes)

	_, err = c.Decode(b[:3])
	require.ErrorIs(t, err, layout.ErrInsufficientBytes)

	assert.Equal(t, pairSchema.Fingerprint(), c.Fingerprint())
	assert.Zero(t, codec.NewLayout(layout.U8).Fingerprint())
}

func TestLimitCodec(t *testing.T) {
	c := codec.LimitCodec[pair]{Inner: codec.NewLayout[pair](pairSchema), MaxDecode: 4}
	_, err := c.Decode([]byte{2, 1, 2, 'h', 'i'})
	require.ErrorIs(t, err, codec.ErrTooLarge)

	p, err := c.Decode([]byte{2, 1, 1, 'h'})
	require.NoError(t, err)
	assert.Equal(t, []byte("h"), p.B)

	off := codec.LimitCodec[pair]{Inner: codec.NewLayout[pair](pairSchema)}
	_, err = off.Decode([]byte{2, 1, 2, 'h', 'i'})
	require.NoError(t, err)
}

func TestInterchangeCodecs(t *testing.T) {
	in := map[string]any{"amount": "3", "data": "0x010203", "flag": true}

	cases := []struct {
		name string
		c    codec.Codec[map[string]any]
	}{
		{"cbor", codec.MustCBOR[map[string]any](true)},
		{"msgpack", codec.Msgpack[map[string]any]{}},
		{"json", codec.JSON[map[string]any]{Indent: "  "}},
		{"proto", codec.Struct{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := tc.c.Encode(in)
			require.NoError(t, err)
			out, err := tc.c.Decode(b)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestDeterministicEncodings(t *testing.T) {
	in := map[string]any{"z": "1", "a": "2", "m": "3"}
	cb := codec.MustCBOR[map[string]any](true)
	mp := codec.Msgpack[map[string]any]{}

	first, err := cb.Encode(in)
	require.NoError(t, err)
	firstMP, err := mp.Encode(in)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		b, err := cb.Encode(in)
		require.NoError(t, err)
		assert.Equal(t, first, b)
		b, err = mp.Encode(in)
		require.NoError(t, err)
		assert.Equal(t, firstMP, b)
	}
}

func TestCBORNestedMapsDecodeWithStringKeys(t *testing.T) {
	c := codec.MustCBOR[any](false)
	b, err := c.Encode(map[string]any{"nested": map[string]any{"x": "y"}})
	require.NoError(t, err)
	v, err := c.Decode(b)
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	_, ok = m["nested"].(map[string]any)
	assert.True(t, ok)
}

func TestHex(t *testing.T) {
	b, err := codec.Hex{}.Encode([]byte{0x01, 0xAB})
	require.NoError(t, err)
	assert.Equal(t, "01ab", string(b))

	for _, in := range []string{"01ab", "0x01AB", " 01 ab\n"} {
		got, err := codec.Hex{}.Decode([]byte(in))
		require.NoError(t, err, in)
		assert.Equal(t, []byte{0x01, 0xAB}, got)
	}
	_, err = codec.Hex{}.Decode([]byte("0g"))
	assert.Error(t, err)
}
