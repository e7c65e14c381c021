// Package container provides array types that plug into the savegame codec
// as single fields and write only the elements that differ from a default.
package container

import (
	"encoding/binary"
	"fmt"

	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/savegame"
)

var order = binary.LittleEndian

// Element is a fixed-width value that can be stored in a JITArray
type Element interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// JITArray is an array that allocates its storage only when an element
// first differs from the default. Arrays indexed by a content category
// have their indices translated on load.
type JITArray[T Element] struct {
	category content.Category
	indexed  bool
	length   int
	def      T
	values   []T
}

// NewJITArray returns an array of length elements that are not content
// indices
func NewJITArray[T Element](length int, def T) *JITArray[T] {
	if length < 0 {
		panic(fmt.Sprintf("container: negative length %d", length))
	}
	return &JITArray[T]{length: length, def: def}
}

// NewCategoryArray returns an array with one element per entry of the
// content table of category c
func NewCategoryArray[T Element](reg *content.Registry, c content.Category, def T) *JITArray[T] {
	return &JITArray[T]{category: c, indexed: true, length: reg.Len(c), def: def}
}

func (a *JITArray[T]) Len() int {
	return a.length
}

func (a *JITArray[T]) Default() T {
	return a.def
}

// Category returns the index category, if the array has one
func (a *JITArray[T]) Category() (content.Category, bool) {
	return a.category, a.indexed
}

// IsAllocated reports whether storage has been allocated
func (a *JITArray[T]) IsAllocated() bool {
	return a.values != nil
}

func (a *JITArray[T]) check(i int) {
	if i < 0 || i >= a.length {
		panic(fmt.Sprintf("container: index %d out of range [0,%d)", i, a.length))
	}
}

func (a *JITArray[T]) Get(i int) T {
	a.check(i)
	if a.values == nil {
		return a.def
	}
	return a.values[i]
}

// Set stores v at i. Setting the default on an unallocated array does not
// allocate.
func (a *JITArray[T]) Set(i int, v T) {
	a.check(i)
	if a.values == nil {
		if v == a.def {
			return
		}
		a.values = make([]T, a.length)
		for j := range a.values {
			a.values[j] = a.def
		}
	}
	a.values[i] = v
}

// Count returns the number of elements that differ from the default
func (a *JITArray[T]) Count() int {
	n := 0
	for _, v := range a.values {
		if v != a.def {
			n++
		}
	}
	return n
}

// HasContent reports whether any element differs from the default
func (a *JITArray[T]) HasContent() bool {
	for _, v := range a.values {
		if v != a.def {
			return true
		}
	}
	return false
}

// Reset releases the storage; every element reads as the default again
func (a *JITArray[T]) Reset() {
	a.values = nil
}

// MarshalSave writes uvarint(count) followed by (index, value) for each
// element that differs from the default
func (a *JITArray[T]) MarshalSave(w savegame.Writer) {
	w.PutUvarint(uint64(a.Count()))
	var buf []byte
	for i, v := range a.values {
		if v == a.def {
			continue
		}
		if a.indexed {
			w.PutIndex(a.category, i)
		} else {
			w.PutUvarint(uint64(i))
		}
		buf = binary.Append(buf[:0], order, v)
		w.PutBytes(buf)
	}
}

// UnmarshalSave replaces the contents with the saved elements. Elements
// whose index no longer exists are dropped.
func (a *JITArray[T]) UnmarshalSave(r savegame.Reader) error {
	a.Reset()
	n, err := r.GetUvarint()
	if err != nil {
		return err
	}
	size := binary.Size(a.def)
	for k := uint64(0); k < n; k++ {
		i := content.NoEntity
		if a.indexed {
			if i, err = r.GetIndex(a.category); err != nil {
				return err
			}
		} else {
			raw, err := r.GetUvarint()
			if err != nil {
				return err
			}
			if raw < uint64(a.length) {
				i = int(raw)
			}
		}
		p, err := r.GetBytes(size)
		if err != nil {
			return err
		}
		var v T
		if _, err := binary.Decode(p, order, &v); err != nil {
			return fmt.Errorf("element %d: %w", k, err)
		}
		if i >= 0 && i < a.length {
			a.Set(i, v)
		}
	}
	return nil
}
