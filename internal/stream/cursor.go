package stream

import (
	"encoding/binary"
	"fmt"
)

// Cursor reads forward over an immutable in-memory copy of a stream.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor creates a cursor over data. The caller must not modify data
// while the cursor is in use.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Load copies the unread contents of s into memory and returns a cursor
// over the copy.
func Load(s Stream) (*Cursor, error) {
	p, err := s.ReadBytes(s.Remaining())
	if err != nil {
		return nil, fmt.Errorf("failed to load stream: %w", err)
	}
	data := make([]byte, len(p))
	copy(data, p)
	return NewCursor(data), nil
}

// Pos returns the current read offset
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the total length of the underlying data
func (c *Cursor) Len() int {
	return len(c.data)
}

// Remaining returns the number of unread bytes
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// AtEnd reports whether every byte has been consumed
func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.data)
}

// Next consumes n bytes. The returned slice aliases the cursor's data.
func (c *Cursor) Next(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, c.pos, c.Remaining(), ErrTruncated)
	}
	p := c.data[c.pos : c.pos+n]
	c.pos += n
	return p, nil
}

// Skip advances the cursor by n bytes
func (c *Cursor) Skip(n int) error {
	_, err := c.Next(n)
	return err
}

func (c *Cursor) Byte() (byte, error) {
	p, err := c.Next(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (c *Cursor) Uint16() (uint16, error) {
	p, err := c.Next(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(p), nil
}

func (c *Cursor) Uint32() (uint32, error) {
	p, err := c.Next(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(p), nil
}

func (c *Cursor) Uint64() (uint64, error) {
	p, err := c.Next(8)
	if err != nil {
		return 0, err
	}
	return order.Uint64(p), nil
}

// Uvarint reads an unsigned varint
func (c *Cursor) Uvarint() (uint64, error) {
	v, n := binary.Uvarint(c.data[c.pos:])
	switch {
	case n == 0:
		return 0, fmt.Errorf("varint at offset %d: %w", c.pos, ErrTruncated)
	case n < 0:
		return 0, fmt.Errorf("varint at offset %d: %w", c.pos, ErrOverflow)
	}
	c.pos += n
	return v, nil
}
