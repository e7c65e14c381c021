package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/hash"
	"github.com/TFMV/savefmt/internal/savegame"
	"github.com/TFMV/savefmt/internal/stream"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// CatalogFile is the name of the catalog inside a store directory
const CatalogFile = "catalog.json"

// CategoryInfo summarizes one translation table of a save
type CategoryInfo struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Fingerprint uint64 `json:"fingerprint"`
	// Missing lists identifiers absent from the content at describe time
	Missing []string `json:"missing,omitempty"`
}

// Entry is the catalog record of one save
type Entry struct {
	ID         uuid.UUID      `json:"id"`
	Name       string         `json:"name"`
	Created    time.Time      `json:"created"`
	Size       int64          `json:"size"`
	Version    uint32         `json:"version"`
	Algorithm  string         `json:"algorithm"`
	Digest     string         `json:"digest"`
	Autosave   bool           `json:"autosave,omitempty"`
	Categories []CategoryInfo `json:"categories,omitempty"`
}

// Describe builds a catalog entry for a save blob. The blob header and
// translation section are parsed; the body is not.
func Describe(name string, data []byte, reg *content.Registry, alg hash.Algorithm) (Entry, error) {
	base, err := savegame.NewReaderBase(stream.NewMemStream(data), reg, savegame.DefaultReaderOptions())
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read save %s: %w", name, err)
	}

	digest := hash.Bytes(data, alg)
	if digest.Error != nil {
		return Entry{}, digest.Error
	}

	_, _, autoErr := ParseAutosaveName(name)
	entry := Entry{
		ID:        uuid.New(),
		Name:      name,
		Created:   time.Now().UTC(),
		Size:      int64(len(data)),
		Version:   base.Version(),
		Algorithm: alg.String(),
		Digest:    digest.Hash,
		Autosave:  autoErr == nil,
	}
	for _, c := range base.Categories() {
		t, _ := base.Translation(c)
		entry.Categories = append(entry.Categories, CategoryInfo{
			Name:        c.String(),
			Count:       len(t.Saved),
			Fingerprint: content.Fingerprint(t.Saved),
			Missing:     t.Missing(),
		})
	}
	return entry, nil
}

// Catalog is the JSON index of the saves in a store directory
type Catalog struct {
	mu      sync.RWMutex
	path    string
	entries map[string]Entry
}

type catalogFile struct {
	Entries []Entry `json:"entries"`
}

// LoadCatalog reads the catalog at path. A missing file is an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	c := &Catalog{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	for _, e := range file.Entries {
		c.entries[e.Name] = e
	}
	return c, nil
}

// Flush writes the catalog to disk
func (c *Catalog) Flush() error {
	c.mu.RLock()
	file := catalogFile{Entries: c.sortedLocked()}
	c.mu.RUnlock()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}

// Put adds or replaces the entry with e.Name
func (c *Catalog) Put(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.Name] = e
}

func (c *Catalog) Get(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	return e, ok
}

// Remove deletes the entry for name and reports whether it existed
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[name]
	delete(c.entries, name)
	return ok
}

// Entries returns all entries, newest first
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortedLocked()
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Catalog) sortedLocked() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.After(out[j].Created)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func catalogPath(dir string) string {
	return filepath.Join(dir, CatalogFile)
}
