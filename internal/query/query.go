// Package query filters and ranks catalogued saves.
package query

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/TFMV/savefmt/internal/hash"
	"github.com/TFMV/savefmt/internal/storage"
)

// Catalog is the interface required by the query engine.
type Catalog interface {
	Entries() []storage.Entry
}

// QueryOptions represents options for querying saves.
type QueryOptions struct {
	// Pattern is a filepath.Match pattern to filter saves by name.
	Pattern string
	// MinSize is the minimum save size in bytes.
	MinSize int64
	// MaxSize is the maximum save size in bytes (0 means no maximum).
	MaxSize int64
	// StartTime is the start of the creation time range.
	StartTime time.Time
	// EndTime is the end of the creation time range.
	EndTime time.Time
	// Digest is a specific digest to match.
	Digest string
	// Autosave filters for autosaves (true) or named saves (false), nil means both.
	Autosave *bool
	// Category keeps saves with a translation table for this category.
	Category string
	// MissingContent keeps saves that referenced identifiers absent from
	// the content they were catalogued against.
	MissingContent bool
}

// DefaultQueryOptions returns the default query options.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{Pattern: "*"}
}

// QueryEngine answers queries over a catalog.
type QueryEngine struct {
	catalog Catalog
}

// NewQueryEngine creates a new query engine.
func NewQueryEngine(catalog Catalog) *QueryEngine {
	return &QueryEngine{catalog: catalog}
}

// Query returns the matching entries, newest first.
func (q *QueryEngine) Query(options QueryOptions) ([]storage.Entry, error) {
	if options.Pattern != "" {
		if _, err := filepath.Match(options.Pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", options.Pattern, err)
		}
	}
	var results []storage.Entry
	for _, e := range q.catalog.Entries() {
		if q.matchEntry(e, options) {
			results = append(results, e)
		}
	}
	return results, nil
}

func (q *QueryEngine) matchEntry(e storage.Entry, options QueryOptions) bool {
	if options.Pattern != "" {
		if ok, _ := filepath.Match(options.Pattern, e.Name); !ok {
			return false
		}
	}
	if e.Size < options.MinSize || (options.MaxSize > 0 && e.Size > options.MaxSize) {
		return false
	}
	if !options.StartTime.IsZero() && e.Created.Before(options.StartTime) {
		return false
	}
	if !options.EndTime.IsZero() && e.Created.After(options.EndTime) {
		return false
	}
	if options.Digest != "" && !hash.Equal(e.Digest, options.Digest) {
		return false
	}
	if options.Autosave != nil && e.Autosave != *options.Autosave {
		return false
	}
	if options.Category != "" || options.MissingContent {
		found, missing := false, false
		for _, c := range e.Categories {
			if strings.EqualFold(c.Name, options.Category) {
				found = true
			}
			if len(c.Missing) > 0 {
				missing = true
			}
		}
		if options.Category != "" && !found {
			return false
		}
		if options.MissingContent && !missing {
			return false
		}
	}
	return true
}

// FindLargestSaves finds the N largest matching saves.
func (q *QueryEngine) FindLargestSaves(n int, options QueryOptions) ([]storage.Entry, error) {
	return q.top(n, options, func(a, b storage.Entry) bool { return a.Size > b.Size })
}

// FindNewestSaves finds the N newest matching saves.
func (q *QueryEngine) FindNewestSaves(n int, options QueryOptions) ([]storage.Entry, error) {
	return q.top(n, options, func(a, b storage.Entry) bool { return a.Created.After(b.Created) })
}

// FindOldestSaves finds the N oldest matching saves.
func (q *QueryEngine) FindOldestSaves(n int, options QueryOptions) ([]storage.Entry, error) {
	return q.top(n, options, func(a, b storage.Entry) bool { return a.Created.Before(b.Created) })
}

func (q *QueryEngine) top(n int, options QueryOptions, less func(a, b storage.Entry) bool) ([]storage.Entry, error) {
	results, err := q.Query(options)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool { return less(results[i], results[j]) })
	if n > 0 && n < len(results) {
		return results[:n], nil
	}
	return results, nil
}

// FindDuplicateSaves groups matching saves with identical contents by
// digest. Only groups of two or more are returned.
func (q *QueryEngine) FindDuplicateSaves(options QueryOptions) (map[string][]storage.Entry, error) {
	results, err := q.Query(options)
	if err != nil {
		return nil, err
	}
	groups := make(map[string][]storage.Entry)
	for _, e := range results {
		key := e.Algorithm + ":" + strings.ToLower(e.Digest)
		groups[key] = append(groups[key], e)
	}
	for key, g := range groups {
		if len(g) < 2 {
			delete(groups, key)
		}
	}
	return groups, nil
}
