package savegame

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/TFMV/savefmt/internal/content"
)

// maxDepth bounds record nesting so a corrupt file cannot exhaust the stack
const maxDepth = 64

var order = binary.LittleEndian

func sortCategories(cats []content.Category) {
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
}

// skipValue advances past one value of kind k without interpreting it
func (b *ReaderBase) skipValue(k Kind, depth int) error {
	if n := k.fixedSize(); n >= 0 {
		_, err := b.next(n)
		return err
	}

	switch k {
	case KindString:
		n, err := b.uvarint()
		if err != nil {
			return err
		}
		if n > uint64(b.cur.Remaining()) {
			return fmt.Errorf("string of %d bytes: %w", n, ErrTruncated)
		}
		_, err = b.next(int(n))
		return err
	case KindWString:
		n, err := b.uvarint()
		if err != nil {
			return err
		}
		if n > uint64(b.cur.Remaining()/2) {
			return fmt.Errorf("wide string of %d units: %w", n, ErrTruncated)
		}
		_, err = b.next(int(n) * 2)
		return err
	case KindBlob:
		p, err := b.next(4)
		if err != nil {
			return err
		}
		_, err = b.next(int(order.Uint32(p)))
		return err
	case KindRecord:
		return b.skipRecord(depth + 1)
	case KindList:
		n, err := b.uvarint()
		if err != nil {
			return err
		}
		if n > uint64(b.cur.Remaining()/3) {
			return fmt.Errorf("%w: list of %d records in %d bytes", ErrCorrupt, n, b.cur.Remaining())
		}
		for i := uint64(0); i < n; i++ {
			if err := b.skipRecord(depth + 1); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown value kind %d", ErrCorrupt, uint8(k))
	}
}

// skipRecord advances past a class marker, its fields and the end tag
func (b *ReaderBase) skipRecord(depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: records nested deeper than %d", ErrCorrupt, maxDepth)
	}
	if _, err := b.next(1); err != nil {
		return err
	}
	for {
		p, err := b.next(2)
		if err != nil {
			return err
		}
		if VarType(order.Uint16(p)) == VarEnd {
			return nil
		}
		p, err = b.next(1)
		if err != nil {
			return err
		}
		if err := b.skipValue(Kind(p[0]), depth); err != nil {
			return err
		}
	}
}
