package layout

// Optional wraps inner so that a value which cannot be decoded reads as
// absent instead of failing. Absent values are nil.
//
// Decode never returns an error: if inner fails for any reason the cursor
// goes back to where it was and the result is nil. Append writes nothing for
// nil and the inner encoding otherwise.
func Optional[V any](inner Codec[V]) Codec[*V] {
	if inner == nil {
		panic("layout: Optional of nil codec")
	}
	return optional[V]{inner: inner}
}

type optional[V any] struct {
	inner Codec[V]
}

func (optional[V]) Kind() Kind { return KindOptional }

// Elem returns the wrapped codec.
func (o optional[V]) Elem() any { return o.inner }

func (o optional[V]) Decode(c *Cursor) (*V, error) {
	start := c.Pos()
	c.depth++
	v, err := o.inner.Decode(c)
	c.depth--
	if err != nil {
		c.Rewind(start)
		return nil, nil
	}
	return &v, nil
}

// Absent reports whether v is the value Decode returns for a missing field.
func (optional[V]) Absent(v *V) bool { return v == nil }

func (o optional[V]) Append(dst []byte, v *V) ([]byte, error) {
	if v == nil {
		return dst, nil
	}
	return o.inner.Append(dst, *v)
}

func (o optional[V]) String() string { return "option<" + describe(o.inner) + ">" }
