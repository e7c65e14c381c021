package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/TFMV/savefmt/internal/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
dir: /var/games/saves
content: content.yaml
log_level: debug
digest: sha256
compress: true
compression_level: 9
cache_size: 0
rotation:
  max_autosaves: 3
  max_age: 72h
  keep_daily: 2
`

func none(string) bool { return false }

func TestParseAndApply(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	s := Defaults()
	require.NoError(t, cfg.Apply(&s, none))
	assert.Equal(t, "/var/games/saves", s.Dir)
	assert.Equal(t, "content.yaml", s.Content)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, hash.SHA256, s.Digest)
	assert.True(t, s.Compress)
	assert.Equal(t, 9, s.CompressionLevel)
	assert.Equal(t, 0, s.CacheSize, "explicit zero overrides the default")
	assert.Equal(t, 3, s.Rotation.MaxAutosaves)
	assert.Equal(t, 72*time.Hour, s.Rotation.MaxAge)
	assert.Equal(t, 2, s.Rotation.KeepDaily)

	opts := s.StoreOptions(nil)
	assert.True(t, opts.Save.Compress)
	assert.Equal(t, hash.SHA256, opts.Digest)
	assert.Equal(t, s.Rotation, opts.Save.Rotation)
}

func TestFlagsWin(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	s := Defaults()
	s.Dir = "from-flag"
	s.Compress = false
	set := map[string]bool{"dir": true, "compress": true, "max-age": true}
	require.NoError(t, cfg.Apply(&s, func(name string) bool { return set[name] }))
	assert.Equal(t, "from-flag", s.Dir)
	assert.False(t, s.Compress)
	assert.Equal(t, Defaults().Rotation.MaxAge, s.Rotation.MaxAge)
	assert.Equal(t, 3, s.Rotation.MaxAutosaves)
}

func TestEmptyConfigKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	s := Defaults()
	require.NoError(t, cfg.Apply(&s, none))
	assert.Equal(t, Defaults(), s)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("rotation: [1, 2"), 0644))
	_, err := Load(path)
	assert.Error(t, err)

	cfg, err := Parse([]byte("digest: md5"))
	require.NoError(t, err)
	s := Defaults()
	assert.Error(t, cfg.Apply(&s, none))
}
