package layout

import "fmt"

// Cursor is a read offset into an immutable source buffer. One Cursor is
// shared by reference across the decode of a record and all of its nested
// records; it must not be shared across independent decode calls.
//
// The position never leaves [0, len(buf)]: a read that would pass the end
// fails with ErrInsufficientBytes and leaves the position where it was.
type Cursor struct {
	buf   []byte
	pos   int
	depth int // nesting of schema and optional decodes in progress
}

func NewCursor(b []byte) *Cursor { return &Cursor{buf: b} }

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the number of unread bytes.
func (c *Cursor) Len() int { return len(c.buf) - c.pos }

// Next consumes n bytes and returns them as a subslice of the source buffer.
func (c *Cursor) Next(n int) ([]byte, error) {
	if n < 0 || n > len(c.buf)-c.pos { // overflow-safe bound check
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientBytes, n, len(c.buf)-c.pos)
	}
	b := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return b, nil
}

// Peek is Next without consuming.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 || n > len(c.buf)-c.pos {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientBytes, n, len(c.buf)-c.pos)
	}
	return c.buf[c.pos : c.pos+n : c.pos+n], nil
}

// Rewind moves the cursor back to pos, a value previously returned by Pos.
// Custom codecs use it to undo a partial read.
func (c *Cursor) Rewind(pos int) {
	if pos < 0 || pos > c.pos {
		panic(fmt.Sprintf("layout: rewind to %d from %d", pos, c.pos))
	}
	c.pos = pos
}
