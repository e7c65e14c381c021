// Package diff compares the record trees of two saves field by field.
package diff

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/TFMV/savefmt/internal/savegame"
)

// ErrOperationCanceled is returned when an operation is canceled
var ErrOperationCanceled = errors.New("operation canceled")

// Change types
const (
	New      = "New"
	Modified = "Modified"
	Deleted  = "Deleted"
)

// DiffEntry represents a single difference between saves
type DiffEntry struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Old  any    `json:"old,omitempty"`
	New  any    `json:"new,omitempty"`
}

// String returns a string representation of a DiffEntry
func (d DiffEntry) String() string {
	switch d.Type {
	case Modified:
		return fmt.Sprintf("%s: %s %v -> %v", d.Type, d.Path, d.Old, d.New)
	case New:
		return fmt.Sprintf("%s: %s = %v", d.Type, d.Path, d.New)
	default:
		return fmt.Sprintf("%s: %s", d.Type, d.Path)
	}
}

// Loader returns the dumped records of a save
type Loader func(name string) ([]savegame.Node, error)

// Flatten maps every leaf field of a record tree to its value. Paths name
// records by class and position and fields by tag, for example
// "map#0.6[3]:plot.2". Enum fields are keyed by identifier rather than
// index. Blobs are compared as raw bytes.
func Flatten(nodes []savegame.Node) map[string]any {
	out := make(map[string]any)
	for i, n := range nodes {
		flattenRecord(out, fmt.Sprintf("%s#%d", n.Class, i), n)
	}
	return out
}

func flattenRecord(out map[string]any, path string, rec savegame.Node) {
	for _, f := range rec.Children {
		fp := fmt.Sprintf("%s.%d", path, f.Tag)
		switch {
		case f.Kind == savegame.KindRecord.String():
			for _, c := range f.Children {
				flattenRecord(out, fp+":"+c.Class, c)
			}
		case f.Kind == savegame.KindList.String():
			out[fp+".len"] = len(f.Children)
			for i, c := range f.Children {
				flattenRecord(out, fmt.Sprintf("%s[%d]:%s", fp, i, c.Class), c)
			}
		default:
			out[fp] = leaf(f.Value)
		}
	}
}

func leaf(v any) any {
	switch v := v.(type) {
	case savegame.EnumValue:
		if v.ID == "" {
			return fmt.Sprintf("%s:#%d", v.Category, v.Saved)
		}
		return v.Category + ":" + v.ID
	case []byte:
		return hex.EncodeToString(v)
	default:
		return v
	}
}

// Compare returns the differences between two record trees, sorted by path
func Compare(oldNodes, newNodes []savegame.Node) []DiffEntry {
	oldFields, newFields := Flatten(oldNodes), Flatten(newNodes)

	diffs := make([]DiffEntry, 0, max(len(oldFields)/10, 10))
	for path, nv := range newFields {
		ov, exists := oldFields[path]
		if !exists {
			diffs = append(diffs, DiffEntry{Type: New, Path: path, New: nv})
			continue
		}
		if !reflect.DeepEqual(ov, nv) {
			diffs = append(diffs, DiffEntry{Type: Modified, Path: path, Old: ov, New: nv})
		}
	}
	for path, ov := range oldFields {
		if _, exists := newFields[path]; !exists {
			diffs = append(diffs, DiffEntry{Type: Deleted, Path: path, Old: ov})
		}
	}

	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Path < diffs[j].Path })
	return diffs
}

// CompareSaves loads two saves concurrently and compares them
func CompareSaves(ctx context.Context, load Loader, oldName, newName string) ([]DiffEntry, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrOperationCanceled, ctx.Err())
	default:
	}

	var wg sync.WaitGroup
	var oldNodes, newNodes []savegame.Node
	var oldErr, newErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		oldNodes, oldErr = load(oldName)
	}()
	go func() {
		defer wg.Done()
		newNodes, newErr = load(newName)
	}()
	wg.Wait()

	if oldErr != nil {
		return nil, fmt.Errorf("error loading old save: %w", oldErr)
	}
	if newErr != nil {
		return nil, fmt.Errorf("error loading new save: %w", newErr)
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrOperationCanceled, ctx.Err())
	default:
	}

	return Compare(oldNodes, newNodes), nil
}
