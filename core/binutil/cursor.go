// Package binutil provides the endian-aware readers, container-signature
// probes, and fixed-encoding helpers every codec in sdmeta builds on top
// of. It generalizes the ad-hoc binary.BigEndian/LittleEndian calls
// scattered through the teacher's core/image/image.go into a single
// reusable cursor type.
package binutil

import (
	"encoding/binary"
	"errors"
)

// ErrShortRead is returned when a Cursor read would run past the end of
// the buffer.
var ErrShortRead = errors.New("binutil: short read")

// Cursor is a forward-only reader over a byte slice, tracking position
// without copying the underlying buffer.
type Cursor struct {
	Buf []byte
	Pos int
}

// NewCursor returns a Cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor { return &Cursor{Buf: buf} }

// Remaining reports how many bytes are left to read.
func (c *Cursor) Remaining() int { return len(c.Buf) - c.Pos }

// Bytes reads n raw bytes and advances the cursor.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || c.Pos+n > len(c.Buf) {
		return nil, ErrShortRead
	}
	b := c.Buf[c.Pos : c.Pos+n]
	c.Pos += n
	return b, nil
}

// Byte reads a single byte.
func (c *Cursor) Byte() (byte, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16BE reads a big-endian uint16.
func (c *Cursor) U16BE() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// U32BE reads a big-endian uint32.
func (c *Cursor) U32BE() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// U16LE reads a little-endian uint16.
func (c *Cursor) U16LE() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32LE reads a little-endian uint32.
func (c *Cursor) U32LE() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Peek returns the next n bytes without advancing the cursor, or nil if
// fewer than n bytes remain.
func (c *Cursor) Peek(n int) []byte {
	if n < 0 || c.Pos+n > len(c.Buf) {
		return nil
	}
	return c.Buf[c.Pos : c.Pos+n]
}

// AtEnd reports whether the cursor has consumed the whole buffer.
func (c *Cursor) AtEnd() bool { return c.Pos >= len(c.Buf) }
