package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when fewer bytes remain than a value requires
	ErrTruncated = errors.New("truncated stream")
	// ErrOverflow is returned when a varint does not fit in 64 bits
	ErrOverflow = errors.New("varint overflows 64 bits")
)

// Stream is the byte transport a save is written to or loaded from.
// The serialization layer only appends to it when writing and only reads
// forward when loading.
type Stream interface {
	ReadBytes(n int) ([]byte, error)
	WriteBytes(p []byte) error
	Size() int
	// Remaining returns the number of bytes not yet read
	Remaining() int
	AtEnd() bool
}

// MemStream is an in-memory Stream.
type MemStream struct {
	data []byte
	pos  int
}

// NewMemStream returns a stream reading from data. Writes append after it.
func NewMemStream(data []byte) *MemStream {
	return &MemStream{data: data}
}

// ReadBytes returns the next n bytes. The returned slice aliases the stream.
func (m *MemStream) ReadBytes(n int) ([]byte, error) {
	if n < 0 || m.pos+n > len(m.data) {
		return nil, fmt.Errorf("read %d bytes at offset %d of %d: %w", n, m.pos, len(m.data), ErrTruncated)
	}
	p := m.data[m.pos : m.pos+n]
	m.pos += n
	return p, nil
}

// WriteBytes appends p to the stream.
func (m *MemStream) WriteBytes(p []byte) error {
	m.data = append(m.data, p...)
	return nil
}

// Size returns the total number of bytes held by the stream.
func (m *MemStream) Size() int {
	return len(m.data)
}

// Remaining returns the number of unread bytes.
func (m *MemStream) Remaining() int {
	return len(m.data) - m.pos
}

// AtEnd reports whether every byte has been read.
func (m *MemStream) AtEnd() bool {
	return m.pos >= len(m.data)
}

// Bytes returns the full contents of the stream.
func (m *MemStream) Bytes() []byte {
	return m.data
}
