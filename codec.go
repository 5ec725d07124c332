package layout

// Codec decodes and encodes values V at a cursor position.
// Implementations are stateless and safe for concurrent use.
type Codec[V any] interface {
	// Decode reads one V at the cursor and advances past it. On error the
	// cursor position is unspecified unless the codec documents otherwise.
	Decode(c *Cursor) (V, error)

	// Append appends the encoding of v to dst.
	Append(dst []byte, v V) ([]byte, error)

	// Kind is the codec family, used for descriptors and validation.
	Kind() Kind
}

// Fixed is implemented by codecs whose encoding always has the same length.
type Fixed interface {
	Width() int
}

// WidthOf returns the fixed encoded width of c, or -1 when it varies.
func WidthOf[V any](c Codec[V]) int {
	if f, ok := c.(Fixed); ok {
		return f.Width()
	}
	return -1
}

// Encode returns the encoding of v.
func Encode[V any](c Codec[V], v V) ([]byte, error) {
	size := WidthOf(c)
	if size < 0 {
		size = 0
	}
	return c.Append(make([]byte, 0, size), v)
}

// Decode decodes one V from the start of b and returns it with the number
// of bytes consumed.
func Decode[V any](c Codec[V], b []byte) (V, int, error) {
	cur := NewCursor(b)
	v, err := c.Decode(cur)
	if err != nil {
		var zero V
		return zero, 0, err
	}
	return v, cur.Pos(), nil
}
