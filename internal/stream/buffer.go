package stream

import (
	"encoding/binary"
	"fmt"
)

// DefaultBufferSize is the initial capacity of a write buffer
const DefaultBufferSize = 64 * 1024

var order = binary.LittleEndian

// Buffer is an append-only growable write buffer. It is flushed to a Stream
// once, when the save is complete.
type Buffer struct {
	data []byte
}

// NewBuffer creates a buffer with the given initial capacity
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &Buffer{data: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written so far
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the written bytes. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Reset empties the buffer and keeps its capacity
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

func (b *Buffer) AppendByte(v byte) {
	b.data = append(b.data, v)
}

func (b *Buffer) Append(p []byte) {
	b.data = append(b.data, p...)
}

func (b *Buffer) AppendUint16(v uint16) {
	b.data = order.AppendUint16(b.data, v)
}

func (b *Buffer) AppendUint32(v uint32) {
	b.data = order.AppendUint32(b.data, v)
}

func (b *Buffer) AppendUint64(v uint64) {
	b.data = order.AppendUint64(b.data, v)
}

// AppendUvarint writes v using the unsigned varint encoding
func (b *Buffer) AppendUvarint(v uint64) {
	b.data = binary.AppendUvarint(b.data, v)
}

// ReserveUint32 appends a zeroed 4-byte slot and returns its offset, so a
// length can be patched in once the payload that follows is known.
func (b *Buffer) ReserveUint32() int {
	off := len(b.data)
	b.data = append(b.data, 0, 0, 0, 0)
	return off
}

// PatchUint32 overwrites a slot previously returned by ReserveUint32
func (b *Buffer) PatchUint32(off int, v uint32) {
	order.PutUint32(b.data[off:off+4], v)
}

// FlushTo writes the whole buffer to s in a single call
func (b *Buffer) FlushTo(s Stream) error {
	if err := s.WriteBytes(b.data); err != nil {
		return fmt.Errorf("failed to flush %d bytes: %w", len(b.data), err)
	}
	return nil
}
