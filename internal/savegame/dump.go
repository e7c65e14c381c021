package savegame

import (
	"fmt"
	"unicode/utf16"

	"github.com/TFMV/savefmt/internal/content"
)

// Node is one record or field found by Dump
type Node struct {
	Class    string  `json:"class,omitempty"`
	Tag      VarType `json:"tag,omitempty"`
	Kind     string  `json:"kind,omitempty"`
	Value    any     `json:"value,omitempty"`
	Size     int     `json:"size"`
	Children []Node  `json:"children,omitempty"`
}

// EnumValue describes a content-backed enum found by Dump
type EnumValue struct {
	Category string `json:"category"`
	Saved    int    `json:"saved"`
	ID       string `json:"id,omitempty"`
	Current  int    `json:"current"`
}

// Dump walks the remaining body without knowing any record layout and
// returns the top-level records. It uses only the kind bytes, so it can
// describe saves written by any version of the entity code.
func (b *ReaderBase) Dump() ([]Node, error) {
	var out []Node
	for !b.cur.AtEnd() {
		n, err := b.dumpRecord(0)
		if err != nil {
			return out, b.fail(err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (b *ReaderBase) dumpRecord(depth int) (Node, error) {
	if depth > maxDepth {
		return Node{}, fmt.Errorf("%w: records nested deeper than %d", ErrCorrupt, maxDepth)
	}
	start := b.cur.Pos()
	p, err := b.next(1)
	if err != nil {
		return Node{}, err
	}
	node := Node{Class: ClassType(p[0]).String(), Kind: KindRecord.String()}
	for {
		p, err := b.next(2)
		if err != nil {
			return node, err
		}
		tag := VarType(order.Uint16(p))
		if tag == VarEnd {
			break
		}
		p, err = b.next(1)
		if err != nil {
			return node, err
		}
		field, err := b.dumpValue(tag, Kind(p[0]), depth)
		if err != nil {
			return node, fmt.Errorf("%s field %d: %w", node.Class, tag, err)
		}
		node.Children = append(node.Children, field)
	}
	node.Size = b.cur.Pos() - start
	return node, nil
}

func (b *ReaderBase) dumpValue(tag VarType, k Kind, depth int) (Node, error) {
	start := b.cur.Pos()
	node := Node{Tag: tag, Kind: k.String()}

	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64, KindBool:
		p, err := b.next(k.fixedSize())
		if err != nil {
			return node, err
		}
		node.Value = decodeFixed(k, p)
	case KindEnum:
		p, err := b.next(6)
		if err != nil {
			return node, err
		}
		c := content.Category(order.Uint16(p))
		ev := EnumValue{Category: c.String(), Saved: int(int32(order.Uint32(p[2:]))), Current: content.NoEntity}
		if t, ok := b.tables[c]; ok {
			if ev.Saved >= 0 && ev.Saved < len(t.Saved) {
				ev.ID = t.Saved[ev.Saved]
			}
			ev.Current = t.Convert(ev.Saved)
		}
		node.Value = ev
	case KindIDInfo:
		p, err := b.next(8)
		if err != nil {
			return node, err
		}
		node.Value = IDInfo{Owner: int32(order.Uint32(p)), ID: int32(order.Uint32(p[4:]))}
	case KindString, KindWString:
		n, err := b.uvarint()
		if err != nil {
			return node, err
		}
		width := 1
		if k == KindWString {
			width = 2
		}
		if n > uint64(b.cur.Remaining()/width) {
			return node, fmt.Errorf("%s of %d: %w", k, n, ErrTruncated)
		}
		p, err := b.next(int(n) * width)
		if err != nil {
			return node, err
		}
		if k == KindString {
			node.Value = string(p)
		} else {
			units := make([]uint16, n)
			for i := range units {
				units[i] = order.Uint16(p[2*i:])
			}
			node.Value = string(utf16.Decode(units))
		}
	case KindBlob:
		p, err := b.next(4)
		if err != nil {
			return node, err
		}
		if p, err = b.next(int(order.Uint32(p))); err != nil {
			return node, err
		}
		node.Value = append([]byte{}, p...)
	case KindRecord:
		child, err := b.dumpRecord(depth + 1)
		if err != nil {
			return node, err
		}
		node.Children = []Node{child}
	case KindList:
		n, err := b.uvarint()
		if err != nil {
			return node, err
		}
		if n > uint64(b.cur.Remaining()/3) {
			return node, fmt.Errorf("%w: list of %d records in %d bytes", ErrCorrupt, n, b.cur.Remaining())
		}
		for i := uint64(0); i < n; i++ {
			child, err := b.dumpRecord(depth + 1)
			if err != nil {
				return node, err
			}
			node.Children = append(node.Children, child)
		}
		node.Value = n
	default:
		if err := b.skipValue(k, depth); err != nil {
			return node, err
		}
	}
	node.Size = b.cur.Pos() - start
	return node, nil
}

func decodeFixed(k Kind, p []byte) any {
	switch k {
	case KindInt8:
		return int64(int8(p[0]))
	case KindUint8:
		return uint64(p[0])
	case KindInt16:
		return int64(int16(order.Uint16(p)))
	case KindUint16:
		return uint64(order.Uint16(p))
	case KindInt32:
		return int64(int32(order.Uint32(p)))
	case KindUint32:
		return uint64(order.Uint32(p))
	case KindInt64:
		return int64(order.Uint64(p))
	case KindUint64:
		return order.Uint64(p)
	case KindBool:
		return p[0] != 0
	}
	return nil
}
