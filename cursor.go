package midi

// This file contains the bounds-checked reader used when decoding SMF data
// held in memory.

import (
	"encoding/binary"
	"fmt"
)

// A ByteCursor reads big-endian fields from an in-memory buffer. Every read
// advances the position, and no read ever goes past the end of the buffer:
// reads that don't fit return an error wrapping ErrUnexpectedEOF and leave the
// position unchanged. A ByteCursor isn't safe for concurrent use, but any
// number of cursors may share the same buffer.
type ByteCursor struct {
	data     []byte
	position int
}

// Returns a new cursor positioned at the start of data.
func NewByteCursor(data []byte) *ByteCursor {
	return &ByteCursor{
		data: data,
	}
}

// Returns the current offset into the buffer.
func (c *ByteCursor) Position() int {
	return c.position
}

// Returns the total length of the underlying buffer.
func (c *ByteCursor) Len() int {
	return len(c.data)
}

// Returns the number of unread bytes.
func (c *ByteCursor) Remaining() int {
	return len(c.data) - c.position
}

// Returns true if at least n more bytes can be read.
func (c *ByteCursor) HasAtLeast(n int) bool {
	return (n >= 0) && (c.Remaining() >= n)
}

func (c *ByteCursor) eof(field string, wanted int) error {
	return fmt.Errorf("Failed reading %s at offset %d: need %d bytes, have "+
		"%d: %w", field, c.position, wanted, c.Remaining(), ErrUnexpectedEOF)
}

// Reads a single byte.
func (c *ByteCursor) ReadU8() (uint8, error) {
	if !c.HasAtLeast(1) {
		return 0, c.eof("byte", 1)
	}
	b := c.data[c.position]
	c.position++
	return b, nil
}

// Reads a 16-bit big-endian integer.
func (c *ByteCursor) ReadU16BE() (uint16, error) {
	if !c.HasAtLeast(2) {
		return 0, c.eof("16-bit integer", 2)
	}
	v := binary.BigEndian.Uint16(c.data[c.position:])
	c.position += 2
	return v, nil
}

// Reads a 32-bit big-endian integer.
func (c *ByteCursor) ReadU32BE() (uint32, error) {
	if !c.HasAtLeast(4) {
		return 0, c.eof("32-bit integer", 4)
	}
	v := binary.BigEndian.Uint32(c.data[c.position:])
	c.position += 4
	return v, nil
}

// Reads n bytes. The returned slice is a copy, so it stays valid (and doesn't
// alias the input) after the caller is done with the buffer.
func (c *ByteCursor) ReadBytes(n int) ([]byte, error) {
	if (n < 0) || !c.HasAtLeast(n) {
		return nil, c.eof("data", n)
	}
	toReturn := make([]byte, n)
	copy(toReturn, c.data[c.position:c.position+n])
	c.position += n
	return toReturn, nil
}

// Advances the position by n bytes without copying them.
func (c *ByteCursor) Skip(n int) error {
	if (n < 0) || !c.HasAtLeast(n) {
		return c.eof("skipped bytes", n)
	}
	c.position += n
	return nil
}

// Moves the position back by one byte, so the last byte read will be read
// again. Does nothing at the start of the buffer.
func (c *ByteCursor) Unread() {
	if c.position > 0 {
		c.position--
	}
}

// Moves the position to the given offset, clamped to the buffer's bounds.
func (c *ByteCursor) Seek(offset int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(c.data) {
		offset = len(c.data)
	}
	c.position = offset
}

// Returns a cursor at the same position that can't read past the given end
// offset. The end offset is clamped to the buffer's length.
func (c *ByteCursor) Limit(end int) *ByteCursor {
	if end > len(c.data) {
		end = len(c.data)
	}
	if end < c.position {
		end = c.position
	}
	return &ByteCursor{
		data:     c.data[:end],
		position: c.position,
	}
}
