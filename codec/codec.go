// Package codec turns values into whole byte buffers and back. Layout wraps a
// layout codec; the other codecs render decoded records into interchange
// formats for tooling.
package codec

import (
	"fmt"

	"github.com/unkn0wn-root/layout"
)

// Codec encodes/decodes values V to a complete []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Layout adapts a layout.Codec to Codec. Decode requires the buffer to hold
// exactly one value.
type Layout[V any] struct {
	c layout.Codec[V]
}

var _ Codec[uint32] = Layout[uint32]{}

func NewLayout[V any](c layout.Codec[V]) Layout[V] {
	return Layout[V]{c: c}
}

func (l Layout[V]) Encode(v V) ([]byte, error) {
	return layout.Encode(l.c, v)
}

func (l Layout[V]) Decode(b []byte) (V, error) {
	v, n, err := layout.Decode(l.c, b)
	if err != nil {
		return v, err
	}
	if n != len(b) {
		var zero V
		return zero, fmt.Errorf("%w: used %d of %d bytes", layout.ErrTrailingBytes, n, len(b))
	}
	return v, nil
}

// Fingerprint forwards to the wrapped codec, or returns 0 when it has none.
func (l Layout[V]) Fingerprint() uint64 {
	if f, ok := l.c.(interface{ Fingerprint() uint64 }); ok {
		return f.Fingerprint()
	}
	return 0
}
