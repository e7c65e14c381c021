package container

import (
	"fmt"
	"math/bits"

	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/savegame"
)

// MaxPlayers bounds every player-indexed array
const MaxPlayers = 48

// BoolArray is a fixed-length bitset stored LSB first. It is written as
// uvarint(length) followed by the packed bytes.
type BoolArray struct {
	category content.Category
	indexed  bool
	length   int
	bits     []byte
}

// NewBoolArray returns a bitset of length bits, all false
func NewBoolArray(length int) *BoolArray {
	if length < 0 {
		panic(fmt.Sprintf("container: negative length %d", length))
	}
	return &BoolArray{length: length}
}

// NewCategoryBoolArray returns a bitset with one bit per entry of the
// content table of category c. Bit positions are translated on load.
func NewCategoryBoolArray(reg *content.Registry, c content.Category) *BoolArray {
	return &BoolArray{category: c, indexed: true, length: reg.Len(c)}
}

func (a *BoolArray) Len() int {
	return a.length
}

func (a *BoolArray) check(i int) {
	if i < 0 || i >= a.length {
		panic(fmt.Sprintf("container: bit %d out of range [0,%d)", i, a.length))
	}
}

func (a *BoolArray) Get(i int) bool {
	a.check(i)
	if a.bits == nil {
		return false
	}
	return a.bits[i/8]&(1<<(i%8)) != 0
}

func (a *BoolArray) Set(i int, v bool) {
	a.check(i)
	if a.bits == nil {
		if !v {
			return
		}
		a.bits = make([]byte, (a.length+7)/8)
	}
	if v {
		a.bits[i/8] |= 1 << (i % 8)
	} else {
		a.bits[i/8] &^= 1 << (i % 8)
	}
}

// Count returns the number of set bits
func (a *BoolArray) Count() int {
	n := 0
	for _, b := range a.bits {
		n += bits.OnesCount8(b)
	}
	return n
}

func (a *BoolArray) HasContent() bool {
	for _, b := range a.bits {
		if b != 0 {
			return true
		}
	}
	return false
}

func (a *BoolArray) Reset() {
	a.bits = nil
}

func (a *BoolArray) MarshalSave(w savegame.Writer) {
	if a.indexed {
		w.UseCategory(a.category)
	}
	w.PutUvarint(uint64(a.length))
	if a.bits == nil {
		w.PutBytes(make([]byte, (a.length+7)/8))
		return
	}
	w.PutBytes(a.bits)
}

// UnmarshalSave replaces the contents with the saved bits. When the saved
// length differs, bits past the current length are dropped.
func (a *BoolArray) UnmarshalSave(r savegame.Reader) error {
	a.Reset()
	n, err := r.GetUvarint()
	if err != nil {
		return err
	}
	if n > 1<<24 {
		return fmt.Errorf("%w: bit array of %d bits", savegame.ErrCorrupt, n)
	}
	saved := int(n)
	p, err := r.GetBytes((saved + 7) / 8)
	if err != nil {
		return err
	}
	for i := 0; i < saved; i++ {
		if p[i/8]&(1<<(i%8)) == 0 {
			continue
		}
		j := i
		if a.indexed {
			if j, err = r.ConvertIndex(a.category, i); err != nil {
				return err
			}
		}
		if j >= 0 && j < a.length {
			a.Set(j, true)
		}
	}
	return nil
}

// PlayerBoolArray holds one bit per player
type PlayerBoolArray struct {
	BoolArray
	dropped int
}

func NewPlayerBoolArray() *PlayerBoolArray {
	return &PlayerBoolArray{BoolArray: BoolArray{length: MaxPlayers}}
}

// UnmarshalSave reads a player bitset. Longer saved arrays are clamped to
// MaxPlayers and set bits beyond it are counted in Dropped.
func (a *PlayerBoolArray) UnmarshalSave(r savegame.Reader) error {
	a.dropped = 0
	a.Reset()
	n, err := r.GetUvarint()
	if err != nil {
		return err
	}
	if n > 1<<16 {
		return fmt.Errorf("%w: player array of %d bits", savegame.ErrCorrupt, n)
	}
	saved := int(n)
	p, err := r.GetBytes((saved + 7) / 8)
	if err != nil {
		return err
	}
	for i := 0; i < saved; i++ {
		if p[i/8]&(1<<(i%8)) == 0 {
			continue
		}
		if i >= MaxPlayers {
			a.dropped++
			continue
		}
		a.Set(i, true)
	}
	return nil
}

// Dropped returns the number of set bits beyond MaxPlayers seen by the
// last load
func (a *PlayerBoolArray) Dropped() int {
	return a.dropped
}
