package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/klauspost/compress/zstd"
)

const (
	// DefaultCompression is the default zstd level for compressed stores
	DefaultCompression = 3
	// DefaultCacheSize is the default number of saves to cache
	DefaultCacheSize = 10
	// SaveFileExt is the file extension for saves
	SaveFileExt = ".sav"

	footerSize = 8
)

// first byte of every save file
const (
	flagRaw  byte = 0
	flagZstd byte = 1
)

var (
	// ErrSaveNotFound is returned when a save does not exist
	ErrSaveNotFound = errors.New("save not found")
	// ErrCorruptSave is returned when a save file fails its checksum
	ErrCorruptSave = errors.New("corrupt save file")
	// ErrInvalidName is returned for names that cannot be used as file names
	ErrInvalidName = errors.New("invalid save name")
)

// Options configures a SaveStore
type Options struct {
	// Compress stores new saves zstd-compressed. Both forms are always readable.
	Compress         bool
	CompressionLevel int
	CacheSize        int
	Rotation         RotationPolicy
	Logger           log.Logger
}

// DefaultOptions returns the default store options
func DefaultOptions() Options {
	return Options{
		Compress:         false,
		CompressionLevel: DefaultCompression,
		CacheSize:        DefaultCacheSize,
		Rotation:         DefaultRotationPolicy(),
	}
}

// SaveInfo describes one save file
type SaveInfo struct {
	Name      string
	Timestamp time.Time
	Size      int64
}

// SaveStore keeps save blobs as files in one directory. Each file is a flag
// byte, the blob (optionally zstd-compressed) and an xxhash footer.
type SaveStore struct {
	baseDir    string
	compress   bool
	encoder    *zstd.Encoder
	decoder    *zstd.Decoder
	cacheMutex sync.RWMutex
	saveCache  map[string][]byte
	cacheSize  int
	cacheKeys  []string
	rotation   RotationPolicy
	logger     log.Logger
}

// NewSaveStore creates a save store rooted at baseDir
func NewSaveStore(baseDir string, opts Options) (*SaveStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	if opts.CompressionLevel <= 0 {
		opts.CompressionLevel = DefaultCompression
	}
	if opts.CacheSize < 0 {
		opts.CacheSize = 0
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.CompressionLevel)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &SaveStore{
		baseDir:   baseDir,
		compress:  opts.Compress,
		encoder:   encoder,
		decoder:   decoder,
		saveCache: make(map[string][]byte),
		cacheSize: opts.CacheSize,
		cacheKeys: make([]string, 0, opts.CacheSize),
		rotation:  opts.Rotation,
		logger:    opts.Logger,
	}, nil
}

// Close releases the compression state
func (s *SaveStore) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	return nil
}

// Dir returns the directory holding the saves
func (s *SaveStore) Dir() string {
	return s.baseDir
}

// Path returns the file path of the named save
func (s *SaveStore) Path(name string) string {
	return filepath.Join(s.baseDir, name+SaveFileExt)
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// encode frames a blob for disk
func (s *SaveStore) encode(data []byte) []byte {
	var out []byte
	if s.compress {
		out = append(out, flagZstd)
		out = s.encoder.EncodeAll(data, out)
	} else {
		out = make([]byte, 0, 1+len(data)+footerSize)
		out = append(out, flagRaw)
		out = append(out, data...)
	}
	return binary.LittleEndian.AppendUint64(out, xxhash.Sum64(out))
}

// decode checks the footer and returns the blob
func (s *SaveStore) decode(raw []byte) ([]byte, error) {
	if len(raw) < 1+footerSize {
		return nil, fmt.Errorf("%w: file of %d bytes", ErrCorruptSave, len(raw))
	}
	body := raw[:len(raw)-footerSize]
	want := binary.LittleEndian.Uint64(raw[len(raw)-footerSize:])
	if got := xxhash.Sum64(body); got != want {
		return nil, fmt.Errorf("%w: checksum %016x, expected %016x", ErrCorruptSave, got, want)
	}

	switch body[0] {
	case flagRaw:
		return bytes.Clone(body[1:]), nil
	case flagZstd:
		data, err := s.decoder.DecodeAll(body[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptSave, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unknown flag %d", ErrCorruptSave, body[0])
	}
}

// WriteSave writes a save blob to disk, replacing any save of the same name
func (s *SaveStore) WriteSave(name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	filename := s.Path(name)

	tmp, err := os.CreateTemp(s.baseDir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(s.encode(data)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write save %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync save %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to replace save %s: %w", name, err)
	}

	s.cacheSave(name, bytes.Clone(data))
	level.Debug(s.logger).Log("msg", "save written", "name", name, "bytes", len(data), "compressed", s.compress)
	return nil
}

// ReadSave reads a save blob from disk or cache. The returned slice must not
// be modified.
func (s *SaveStore) ReadSave(name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	s.cacheMutex.RLock()
	if data, ok := s.saveCache[name]; ok {
		s.cacheMutex.RUnlock()
		return data, nil
	}
	s.cacheMutex.RUnlock()

	raw, err := os.ReadFile(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSaveNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	data, err := s.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	s.cacheSave(name, data)
	return data, nil
}

// ListSaves returns the saves in the store ordered by name
func (s *SaveStore) ListSaves() ([]SaveInfo, error) {
	files, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	saves := make([]SaveInfo, 0, len(files))
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != SaveFileExt {
			continue
		}
		info, err := file.Info()
		if err != nil {
			return nil, err
		}
		saves = append(saves, SaveInfo{
			Name:      strings.TrimSuffix(file.Name(), SaveFileExt),
			Timestamp: info.ModTime(),
			Size:      info.Size(),
		})
	}
	sort.Slice(saves, func(i, j int) bool { return saves[i].Name < saves[j].Name })
	return saves, nil
}

// DeleteSave deletes a save
func (s *SaveStore) DeleteSave(name string) error {
	if err := validName(name); err != nil {
		return err
	}

	s.cacheMutex.Lock()
	s.evict(name)
	s.cacheMutex.Unlock()

	err := os.Remove(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSaveNotFound, name)
	}
	return err
}

// SetCacheSize sets the maximum number of saves to cache
func (s *SaveStore) SetCacheSize(size int) {
	if size < 0 {
		size = 0
	}
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	s.cacheSize = size
	for len(s.cacheKeys) > size {
		s.evict(s.cacheKeys[0])
	}
}

// cacheSave adds a save to the cache, evicting the oldest entry when full
func (s *SaveStore) cacheSave(name string, data []byte) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	if s.cacheSize == 0 {
		return
	}
	s.evict(name)
	for len(s.cacheKeys) >= s.cacheSize {
		s.evict(s.cacheKeys[0])
	}
	s.saveCache[name] = data
	s.cacheKeys = append(s.cacheKeys, name)
}

// evict removes name from the cache; the caller holds cacheMutex
func (s *SaveStore) evict(name string) {
	if _, ok := s.saveCache[name]; !ok {
		return
	}
	delete(s.saveCache, name)
	for i, key := range s.cacheKeys {
		if key == name {
			s.cacheKeys = append(s.cacheKeys[:i], s.cacheKeys[i+1:]...)
			break
		}
	}
}

// SetRotationPolicy sets the autosave rotation policy
func (s *SaveStore) SetRotationPolicy(policy RotationPolicy) {
	s.rotation = policy
}

// RotationPolicy returns the current autosave rotation policy
func (s *SaveStore) RotationPolicy() RotationPolicy {
	return s.rotation
}

// PlanRotation returns the autosaves the rotation policy would delete
// without deleting them
func (s *SaveStore) PlanRotation(now time.Time) ([]string, error) {
	toDelete, _, err := s.planRotation(now)
	return toDelete, err
}

func (s *SaveStore) planRotation(now time.Time) ([]string, int, error) {
	saves, err := s.ListSaves()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list saves: %w", err)
	}

	autosaves := make([]SaveInfo, 0, len(saves))
	for _, save := range saves {
		_, ts, err := ParseAutosaveName(save.Name)
		if err != nil {
			continue
		}
		save.Timestamp = ts
		autosaves = append(autosaves, save)
	}
	return ApplyRotationPolicy(autosaves, s.rotation, now), len(autosaves), nil
}

// ApplyRotation deletes the autosaves the rotation policy no longer keeps
// and returns their names. Saves without an autosave name are never touched.
func (s *SaveStore) ApplyRotation(now time.Time) ([]string, error) {
	toDelete, total, err := s.planRotation(now)
	if err != nil {
		return nil, err
	}

	deleted := make([]string, 0, len(toDelete))
	for _, name := range toDelete {
		if err := s.DeleteSave(name); err != nil {
			return deleted, fmt.Errorf("failed to delete autosave %s: %w", name, err)
		}
		deleted = append(deleted, name)
	}
	if len(deleted) > 0 {
		level.Info(s.logger).Log("msg", "autosaves rotated", "deleted", len(deleted), "kept", total-len(deleted))
	}
	return deleted, nil
}

// CreateAutosave writes data under a timestamped autosave name and applies
// the rotation policy. It returns the new name and the deleted autosaves.
func (s *SaveStore) CreateAutosave(prefix string, data []byte, now time.Time) (string, []string, error) {
	name := AutosaveName(prefix, now)
	if err := s.WriteSave(name, data); err != nil {
		return "", nil, err
	}
	deleted, err := s.ApplyRotation(now)
	if err != nil {
		return name, deleted, fmt.Errorf("autosave written but rotation failed: %w", err)
	}
	return name, deleted, nil
}
