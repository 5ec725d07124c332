package layout

import "fmt"

// Decode reads one record at the cursor. Fields are read in order, skipping
// excluded and virtual ones, then the InjectFunc runs. On failure the zero T
// is returned with a *FieldError naming the field and the offset it started at.
func (s *Schema[T]) Decode(c *Cursor) (T, error) {
	var zero T
	c.depth++
	defer func() { c.depth-- }()
	rec := s.newRec()
	for i := range s.fields {
		f := &s.fields[i]
		if f.virtual || s.excluded[i] {
			continue
		}
		start := c.Pos()
		absent, err := f.decode(c, &rec)
		if err != nil {
			fe := fieldError("decode", s.name, f.name, start, err).(*FieldError)
			s.decodeFailed(c, fe)
			return zero, fe
		}
		if absent {
			s.hooks.OptionalAbsent(s.name, f.name, start)
		}
	}
	if s.inject != nil {
		if err := s.inject(s, &rec); err != nil {
			fe := &FieldError{Op: "decode", Record: s.name, Offset: c.Pos(), Err: fmt.Errorf("inject: %w", err)}
			s.decodeFailed(c, fe)
			return zero, fe
		}
	}
	return rec, nil
}

// decodeFailed reports fe once, from the outermost decode. Nested records
// return their error to the parent, which reports the merged path.
func (s *Schema[T]) decodeFailed(c *Cursor, fe *FieldError) {
	if c.depth > 1 {
		return
	}
	s.hooks.DecodeFailed(s.name, fe.Field(), fe.Offset, fe.Err)
	s.log.Debug("layout: decode failed", Fields{
		"record": s.name,
		"field":  fe.Field(),
		"offset": fe.Offset,
		"err":    fe.Err,
	})
}

// Append appends the encoding of rec to dst. Accessors see a copy of rec.
// On failure dst is returned with nothing appended.
func (s *Schema[T]) Append(dst []byte, rec T) ([]byte, error) {
	mark := len(dst)
	for i := range s.fields {
		f := &s.fields[i]
		if f.virtual || s.excluded[i] {
			continue
		}
		var err error
		if dst, err = f.encode(dst, &rec); err != nil {
			err = fieldError("encode", s.name, f.name, -1, err)
			fe := err.(*FieldError)
			s.hooks.EncodeFailed(s.name, fe.Field(), fe.Err)
			return dst[:mark], err
		}
	}
	return dst, nil
}

// Marshal returns the encoding of rec.
func (s *Schema[T]) Marshal(rec T) ([]byte, error) {
	n := s.size
	if n < 0 {
		n = 64
	}
	return s.Append(make([]byte, 0, n), rec)
}

// DecodeBytes decodes one record from the start of b and reports how many
// bytes it used. Bytes after the record are ignored.
func (s *Schema[T]) DecodeBytes(b []byte) (T, int, error) {
	return Decode[T](s, b)
}

// Unmarshal decodes b, which must hold exactly one record.
func (s *Schema[T]) Unmarshal(b []byte) (T, error) {
	rec, n, err := s.DecodeBytes(b)
	if err != nil {
		return rec, err
	}
	if n != len(b) {
		var zero T
		return zero, fmt.Errorf("%w: %s used %d of %d bytes", ErrTrailingBytes, s.name, n, len(b))
	}
	return rec, nil
}
