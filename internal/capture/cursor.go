package capture

import "bytes"

// Cursor is a read-only view over the raw capture bytes.
type Cursor struct {
	data []byte
}

// NewCursor wraps data. The slice must not be modified while the cursor is
// in use.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Len returns the capture length in bytes.
func (c *Cursor) Len() int { return len(c.data) }

// Find returns the offset of the first exact occurrence of pattern at or
// after from.
func (c *Cursor) Find(pattern []byte, from int) (int, bool) {
	if from < 0 {
		from = 0
	}
	if from > len(c.data) {
		return 0, false
	}
	idx := bytes.Index(c.data[from:], pattern)
	if idx < 0 {
		return 0, false
	}
	return from + idx, true
}

// FindByte is Find for a single byte.
func (c *Cursor) FindByte(b byte, from int) (int, bool) {
	if from < 0 {
		from = 0
	}
	if from > len(c.data) {
		return 0, false
	}
	idx := bytes.IndexByte(c.data[from:], b)
	if idx < 0 {
		return 0, false
	}
	return from + idx, true
}

// Slice returns data[start:end]. The returned slice aliases the capture.
func (c *Cursor) Slice(start, end int) ([]byte, error) {
	if start < 0 || start > end || end > len(c.data) {
		return nil, newError(OutOfBounds, "cursor", start, end)
	}
	return c.data[start:end], nil
}
