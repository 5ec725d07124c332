package layout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientBytes means the remaining buffer is shorter than a field needs.
	// It is fatal for the whole decode.
	ErrInsufficientBytes = errors.New("layout: insufficient bytes")

	// ErrUnsupportedFieldType is returned at registration for a field whose
	// type matches no codec family. Decode never sees unknown types.
	ErrUnsupportedFieldType = errors.New("layout: unsupported field type")

	// ErrSchemaMismatch means a field name or value type does not match the
	// schema: an unknown exclusion, or an injection hook touching a field
	// that is not declared. It indicates a programming error, not bad input.
	ErrSchemaMismatch = errors.New("layout: schema mismatch")

	ErrDuplicateField = errors.New("layout: duplicate field")
	ErrLengthOverflow = errors.New("layout: vector length overflows length field")
	ErrTrailingBytes  = errors.New("layout: trailing bytes after record")
)

// FieldError annotates a failure with where it happened. Nested composites
// collapse into a single FieldError whose Path walks down from the outermost
// record, and whose Offset is absolute within the source buffer.
type FieldError struct {
	Op     string // "decode" or "encode"
	Record string
	Path   []string
	Offset int // -1 for encode failures
	Err    error
}

func (e *FieldError) Error() string {
	var b strings.Builder
	b.WriteString("layout: ")
	b.WriteString(e.Op)
	b.WriteByte(' ')
	b.WriteString(e.Record)
	if len(e.Path) > 0 {
		b.WriteByte('.')
		b.WriteString(e.Field())
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	b.WriteString(": ")
	b.WriteString(strings.TrimPrefix(e.Err.Error(), "layout: "))
	return b.String()
}

func (e *FieldError) Unwrap() error { return e.Err }

// Field returns the dotted field path, e.g. "nested.uint32".
func (e *FieldError) Field() string { return strings.Join(e.Path, ".") }

func fieldError(op, record, field string, offset int, err error) error {
	if fe, ok := err.(*FieldError); ok && fe.Op == op {
		path := make([]string, 0, len(fe.Path)+1)
		path = append(path, field)
		path = append(path, fe.Path...)
		return &FieldError{Op: op, Record: record, Path: path, Offset: fe.Offset, Err: fe.Err}
	}
	return &FieldError{Op: op, Record: record, Path: []string{field}, Offset: offset, Err: err}
}

func mismatch(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrSchemaMismatch}, args...)...)
}
