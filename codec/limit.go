package codec

import (
	"errors"
	"fmt"
)

var ErrTooLarge = errors.New("codec: payload too large")

// LimitCodec rejects payloads longer than MaxDecode before Inner sees them.
// Encode is forwarded unchanged. MaxDecode <= 0 disables the check.
//
// Store entries come from a shared provider; bounding them keeps a corrupt
// or hostile value from driving a large decode.
type LimitCodec[V any] struct {
	Inner     Codec[V]
	MaxDecode int
}

func (c LimitCodec[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }

func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
