package schemafile

import (
	"fmt"

	"github.com/unkn0wn-root/layout"
)

// dynamic adapts a typed codec to the untyped values held in a Record.
type dynamic[V any] struct {
	c    layout.Codec[V]
	conv func(any) (V, bool)
}

func wrap[V any](c layout.Codec[V]) layout.Codec[any] {
	return dynamic[V]{c: c, conv: func(v any) (V, bool) {
		x, ok := v.(V)
		return x, ok
	}}
}

func (d dynamic[V]) Kind() layout.Kind { return d.c.Kind() }
func (d dynamic[V]) Width() int        { return layout.WidthOf(d.c) }
func (d dynamic[V]) String() string    { return fmt.Sprint(d.c) }

func (d dynamic[V]) Decode(c *layout.Cursor) (any, error) {
	v, err := d.c.Decode(c)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (d dynamic[V]) Append(dst []byte, v any) ([]byte, error) {
	x, ok := d.conv(v)
	if !ok {
		if v == nil {
			return dst, fmt.Errorf("%w: no value for %v", layout.ErrSchemaMismatch, d.c)
		}
		var want V
		return dst, fmt.Errorf("%w: %v wants %T, got %T", layout.ErrSchemaMismatch, d.c, want, v)
	}
	return d.c.Append(dst, x)
}

// nestedCodec carries a nested record. It accepts Record or a plain map.
type nestedCodec struct {
	dynamic[Record]
	s *layout.Schema[Record]
}

func nested(s *layout.Schema[Record]) layout.Codec[any] {
	return nestedCodec{s: s, dynamic: dynamic[Record]{c: s, conv: func(v any) (Record, bool) {
		switch m := v.(type) {
		case Record:
			return m, true
		case map[string]any:
			return Record(m), true
		}
		return nil, false
	}}}
}

func (n nestedCodec) Fingerprint() uint64 { return n.s.Fingerprint() }

// optionalAny stores absent values as nil instead of a nil pointer.
type optionalAny struct {
	c layout.Codec[*any]
}

func (o optionalAny) Kind() layout.Kind { return layout.KindOptional }
func (o optionalAny) String() string    { return fmt.Sprint(o.c) }

func (o optionalAny) Decode(c *layout.Cursor) (any, error) {
	p, err := o.c.Decode(c)
	if err != nil || p == nil {
		return nil, err
	}
	return *p, nil
}

func (optionalAny) Absent(v any) bool { return v == nil }

func (o optionalAny) Append(dst []byte, v any) ([]byte, error) {
	if v == nil {
		return o.c.Append(dst, nil)
	}
	return o.c.Append(dst, &v)
}
