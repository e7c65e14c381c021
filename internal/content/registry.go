package content

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spaolacci/murmur3"
)

// NoEntity is the index of an identifier that does not exist in a table
const NoEntity = -1

var (
	// ErrUnknownCategory is returned for category names or keys outside the known set
	ErrUnknownCategory = errors.New("unknown content category")
	// ErrDuplicateIdentifier is returned when a table lists an identifier twice
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	// ErrEmptyIdentifier is returned when a table contains an empty identifier
	ErrEmptyIdentifier = errors.New("empty identifier")
	// ErrDuplicateCategory is returned when a registry already holds a table for a category
	ErrDuplicateCategory = errors.New("duplicate category")
)

// Table is one ordered content table. Position is the index.
type Table struct {
	category Category
	ids      []string
	index    map[string]int
	fp       uint64
}

// NewTable builds a table for c from identifiers in index order
func NewTable(c Category, ids []string) (*Table, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, uint16(c))
	}
	t := &Table{
		category: c,
		ids:      make([]string, len(ids)),
		index:    make(map[string]int, len(ids)),
	}
	for i, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("%s[%d]: %w", c, i, ErrEmptyIdentifier)
		}
		if prev, ok := t.index[id]; ok {
			return nil, fmt.Errorf("%s: %q at %d and %d: %w", c, id, prev, i, ErrDuplicateIdentifier)
		}
		t.ids[i] = id
		t.index[id] = i
	}
	t.fp = Fingerprint(t.ids)
	return t, nil
}

func (t *Table) Category() Category {
	return t.category
}

func (t *Table) Len() int {
	return len(t.ids)
}

// ID returns the identifier at index i
func (t *Table) ID(i int) string {
	return t.ids[i]
}

// Index looks up the current index of id
func (t *Table) Index(id string) (int, bool) {
	i, ok := t.index[id]
	if !ok {
		return NoEntity, false
	}
	return i, true
}

// Identifiers returns a copy of the identifiers in index order
func (t *Table) Identifiers() []string {
	out := make([]string, len(t.ids))
	copy(out, t.ids)
	return out
}

// Fingerprint returns the hash of the ordered identifiers, computed once
// when the table is built. Two tables with the same fingerprint and length
// assign the same index to every identifier.
func (t *Table) Fingerprint() uint64 {
	return t.fp
}

// Fingerprint hashes an ordered identifier sequence
func Fingerprint(ids []string) uint64 {
	h := murmur3.New64()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// Registry holds the current content tables, keyed by category. It is
// populated before any load and never modified by the serialization layer.
type Registry struct {
	tables map[Category]*Table
}

func NewRegistry() *Registry {
	return &Registry{tables: make(map[Category]*Table)}
}

// Add registers a table
func (r *Registry) Add(t *Table) error {
	if _, ok := r.tables[t.category]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCategory, t.category)
	}
	r.tables[t.category] = t
	return nil
}

// Set builds and registers a table from identifiers
func (r *Registry) Set(c Category, ids ...string) error {
	t, err := NewTable(c, ids)
	if err != nil {
		return err
	}
	return r.Add(t)
}

// Table returns the table for c
func (r *Registry) Table(c Category) (*Table, bool) {
	t, ok := r.tables[c]
	return t, ok
}

// Len returns the size of the table for c, or 0 when it is not registered
func (r *Registry) Len(c Category) int {
	if t, ok := r.tables[c]; ok {
		return t.Len()
	}
	return 0
}

// Index resolves id against the current table for c
func (r *Registry) Index(c Category, id string) (int, bool) {
	t, ok := r.tables[c]
	if !ok {
		return NoEntity, false
	}
	return t.Index(id)
}

// Identifiers returns the identifiers of c in index order, or nil
func (r *Registry) Identifiers(c Category) []string {
	if t, ok := r.tables[c]; ok {
		return t.Identifiers()
	}
	return nil
}

// Categories returns the registered categories in ascending order
func (r *Registry) Categories() []Category {
	out := make([]Category, 0, len(r.tables))
	for c := range r.tables {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
