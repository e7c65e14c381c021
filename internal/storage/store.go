package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/hash"
	"github.com/TFMV/savefmt/internal/savegame"
	"github.com/TFMV/savefmt/internal/stream"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// ErrDigestMismatch is returned when a save no longer matches its catalog digest
var ErrDigestMismatch = errors.New("save does not match catalog digest")

// Store combines save files with their catalog
type Store struct {
	saves   *SaveStore
	catalog *Catalog
	content *content.Registry
	digest  hash.Algorithm
	logger  log.Logger
}

// StoreOptions represents options for configuring the store
type StoreOptions struct {
	Save   Options
	Digest hash.Algorithm
}

// DefaultStoreOptions returns the default options for the store
func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		Save:   DefaultOptions(),
		Digest: hash.BLAKE3,
	}
}

// NewStore opens the store in baseDir. reg describes the current content
// and is used to read save headers.
func NewStore(baseDir string, reg *content.Registry, options StoreOptions) (*Store, error) {
	if options.Save.Logger == nil {
		options.Save.Logger = log.NewNopLogger()
	}
	if options.Digest == hash.UndefinedAlgorithm {
		options.Digest = hash.BLAKE3
	}

	saves, err := NewSaveStore(baseDir, options.Save)
	if err != nil {
		return nil, fmt.Errorf("failed to create save store: %w", err)
	}

	catalog, err := LoadCatalog(catalogPath(baseDir))
	if err != nil {
		saves.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return &Store{
		saves:   saves,
		catalog: catalog,
		content: reg,
		digest:  options.Digest,
		logger:  options.Save.Logger,
	}, nil
}

// Close closes the store
func (s *Store) Close() error {
	return s.saves.Close()
}

// Saves returns the underlying save files
func (s *Store) Saves() *SaveStore {
	return s.saves
}

// Put stores a save blob and records it in the catalog
func (s *Store) Put(name string, data []byte) (Entry, error) {
	entry, err := Describe(name, data, s.content, s.digest)
	if err != nil {
		return Entry{}, err
	}
	if err := s.saves.WriteSave(name, data); err != nil {
		return Entry{}, fmt.Errorf("failed to write save: %w", err)
	}
	s.catalog.Put(entry)
	if err := s.catalog.Flush(); err != nil {
		return entry, err
	}
	level.Info(s.logger).Log("msg", "save stored", "name", name, "id", entry.ID, "bytes", entry.Size)
	return entry, nil
}

// Save encodes records with a new session and stores the result
func (s *Store) Save(name string, opts savegame.WriterOptions, records ...savegame.RecordWriter) (Entry, error) {
	data, err := savegame.Marshal(s.content, opts, records...)
	if err != nil {
		return Entry{}, err
	}
	return s.Put(name, data)
}

// Get returns a save blob, checking it against its catalog digest when the
// save is catalogued
func (s *Store) Get(name string) ([]byte, error) {
	data, err := s.saves.ReadSave(name)
	if err != nil {
		return nil, err
	}
	entry, ok := s.catalog.Get(name)
	if !ok {
		return data, nil
	}
	alg, err := hash.ParseAlgorithm(entry.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("catalog entry %s: %w", name, err)
	}
	match, err := hash.Verify(data, entry.Digest, alg)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, fmt.Errorf("%w: %s", ErrDigestMismatch, name)
	}
	return data, nil
}

// Load reads a stored save into records
func (s *Store) Load(name string, opts savegame.ReaderOptions, records ...savegame.RecordReader) (*savegame.ReaderBase, error) {
	data, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	return savegame.Load(stream.NewMemStream(data), s.content, opts, records...)
}

// Open returns a reader positioned at the first record of a stored save
func (s *Store) Open(name string, opts savegame.ReaderOptions) (*savegame.ReaderBase, error) {
	return s.Load(name, opts)
}

// Verify checks the file checksum, the catalog digest and the structure of
// every record of a save
func (s *Store) Verify(name string) ([]savegame.Node, error) {
	base, err := s.Open(name, savegame.DefaultReaderOptions())
	if err != nil {
		return nil, err
	}
	nodes, err := base.Dump()
	if err != nil {
		return nodes, fmt.Errorf("%s: %w", name, err)
	}
	return nodes, nil
}

// Entry returns the catalog entry for name
func (s *Store) Entry(name string) (Entry, bool) {
	return s.catalog.Get(name)
}

// Entries returns every catalog entry, newest first
func (s *Store) Entries() []Entry {
	return s.catalog.Entries()
}

// Delete removes a save and its catalog entry
func (s *Store) Delete(name string) error {
	if err := s.saves.DeleteSave(name); err != nil {
		return err
	}
	s.catalog.Remove(name)
	return s.catalog.Flush()
}

// Autosave stores data under a timestamped name and rotates older autosaves.
// It returns the new entry and the names of deleted autosaves.
func (s *Store) Autosave(prefix string, data []byte, now time.Time) (Entry, []string, error) {
	entry, err := s.Put(AutosaveName(prefix, now), data)
	if err != nil {
		return Entry{}, nil, err
	}
	deleted, err := s.Rotate(now)
	return entry, deleted, err
}

// Rotate applies the rotation policy and drops deleted autosaves from the
// catalog
func (s *Store) Rotate(now time.Time) ([]string, error) {
	deleted, err := s.saves.ApplyRotation(now)
	for _, name := range deleted {
		s.catalog.Remove(name)
	}
	if len(deleted) > 0 {
		if ferr := s.catalog.Flush(); ferr != nil && err == nil {
			err = ferr
		}
	}
	return deleted, err
}

// Sync adds catalog entries for uncatalogued save files and removes entries
// whose file is gone. It returns the number of entries added and removed.
func (s *Store) Sync() (int, int, error) {
	files, err := s.saves.ListSaves()
	if err != nil {
		return 0, 0, err
	}
	present := make(map[string]bool, len(files))
	added := 0
	for _, f := range files {
		present[f.Name] = true
		if _, ok := s.catalog.Get(f.Name); ok {
			continue
		}
		data, err := s.saves.ReadSave(f.Name)
		if err != nil {
			level.Warn(s.logger).Log("msg", "skipping unreadable save", "name", f.Name, "err", err)
			continue
		}
		entry, err := Describe(f.Name, data, s.content, s.digest)
		if err != nil {
			level.Warn(s.logger).Log("msg", "skipping invalid save", "name", f.Name, "err", err)
			continue
		}
		entry.Created = f.Timestamp.UTC()
		s.catalog.Put(entry)
		added++
	}
	removed := 0
	for _, e := range s.catalog.Entries() {
		if !present[e.Name] {
			s.catalog.Remove(e.Name)
			removed++
		}
	}
	if added > 0 || removed > 0 {
		if err := s.catalog.Flush(); err != nil {
			return added, removed, err
		}
	}
	return added, removed, nil
}
