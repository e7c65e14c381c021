package savegame

import (
	"fmt"

	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/stream"
)

// Translation maps the enum indices of one category as written in a save to
// the indices of the current content tables. It is immutable once built.
type Translation struct {
	Category content.Category
	// Saved holds the identifiers in saved order; position is the saved index
	Saved []string
	// remap is nil when saved and current order agree
	remap []int
}

func newTranslation(c content.Category, saved []string, reg *content.Registry) *Translation {
	t := &Translation{Category: c, Saved: saved}

	table, ok := reg.Table(c)
	if ok && table.Len() == len(saved) && table.Fingerprint() == content.Fingerprint(saved) {
		return t
	}

	t.remap = make([]int, len(saved))
	for old, id := range saved {
		t.remap[old] = content.NoEntity
		if ok {
			if cur, found := table.Index(id); found {
				t.remap[old] = cur
			}
		}
	}
	return t
}

// Identity reports whether every saved index is also the current index
func (t *Translation) Identity() bool {
	return t.remap == nil
}

// Convert maps a saved index to the current index. Indices outside the saved
// table and identifiers missing from the current content map to NoEntity.
func (t *Translation) Convert(old int) int {
	if old < 0 || old >= len(t.Saved) {
		return content.NoEntity
	}
	if t.remap == nil {
		return old
	}
	return t.remap[old]
}

// Missing returns the saved identifiers that no longer exist
func (t *Translation) Missing() []string {
	var out []string
	for old, id := range t.Saved {
		if t.Convert(old) == content.NoEntity {
			out = append(out, id)
		}
	}
	return out
}

// writeTranslationTable writes one table per used category, in ascending
// category order. Position within a category implies the index.
func writeTranslationTable(out *stream.Buffer, reg *content.Registry, used map[content.Category]struct{}) {
	cats := make([]content.Category, 0, len(used))
	for c := range used {
		cats = append(cats, c)
	}
	sortCategories(cats)

	for _, c := range cats {
		table, ok := reg.Table(c)
		if !ok {
			continue
		}
		out.AppendUint16(uint16(c))
		for i := 0; i < table.Len(); i++ {
			id := table.ID(i)
			out.AppendUvarint(uint64(len(id)))
			out.Append([]byte(id))
		}
		out.AppendUvarint(0)
	}
	out.AppendUint16(uint16(content.CategoryEnd))
}

// readTranslationTable reads the translation section and resolves every
// saved identifier against reg. A duplicate category or identifier fails
// the load.
func readTranslationTable(cur *stream.Cursor, reg *content.Registry) (map[content.Category]*Translation, error) {
	tables := make(map[content.Category]*Translation)
	for {
		raw, err := cur.Uint16()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
		}
		c := content.Category(raw)
		if c == content.CategoryEnd {
			return tables, nil
		}
		if _, ok := tables[c]; ok {
			return nil, fmt.Errorf("%w: category %s listed twice", ErrMalformedTable, c)
		}

		var saved []string
		seen := make(map[string]int)
		for {
			n, err := cur.Uvarint()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformedTable, c, err)
			}
			if n == 0 {
				break
			}
			if n > uint64(cur.Remaining()) {
				return nil, fmt.Errorf("%w: %s: identifier length %d: %w", ErrMalformedTable, c, n, ErrTruncated)
			}
			p, err := cur.Next(int(n))
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformedTable, c, err)
			}
			id := string(p)
			if prev, ok := seen[id]; ok {
				return nil, fmt.Errorf("%w: %s: %q at %d and %d", ErrMalformedTable, c, id, prev, len(saved))
			}
			seen[id] = len(saved)
			saved = append(saved, id)
		}
		tables[c] = newTranslation(c, saved, reg)
	}
}
