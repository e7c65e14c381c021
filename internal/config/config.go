// Package config loads savetool.yaml and merges it with command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/TFMV/savefmt/internal/hash"
	"github.com/TFMV/savefmt/internal/storage"
	"github.com/go-kit/log"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name
const FileName = "savetool.yaml"

// Config mirrors savetool.yaml. Pointer fields distinguish "not set" from
// zero values.
type Config struct {
	Dir      string `yaml:"dir"`
	Content  string `yaml:"content"`
	LogLevel string `yaml:"log_level"`
	Digest   string `yaml:"digest"`

	Compress         *bool `yaml:"compress"`
	CompressionLevel *int  `yaml:"compression_level"`
	CacheSize        *int  `yaml:"cache_size"`

	Rotation RotationConfig `yaml:"rotation"`
}

// RotationConfig is the rotation section of savetool.yaml
type RotationConfig struct {
	MaxAutosaves *int           `yaml:"max_autosaves"`
	MaxAge       *time.Duration `yaml:"max_age"`
	KeepDaily    *int           `yaml:"keep_daily"`
}

// Settings are the resolved values used by the commands
type Settings struct {
	Dir              string
	Content          string
	LogLevel         string
	Digest           hash.Algorithm
	Compress         bool
	CompressionLevel int
	CacheSize        int
	Rotation         storage.RotationPolicy
}

// Defaults returns the settings used when neither file nor flags set a value
func Defaults() Settings {
	opts := storage.DefaultOptions()
	return Settings{
		Dir:              "saves",
		LogLevel:         "info",
		Digest:           hash.BLAKE3,
		Compress:         opts.Compress,
		CompressionLevel: opts.CompressionLevel,
		CacheSize:        opts.CacheSize,
		Rotation:         opts.Rotation,
	}
}

// DefaultPath returns the per-user config file path, or "" when the user
// config directory is unknown
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "savetool", FileName)
}

// Load reads the config file at path. A missing file is an empty config.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes savetool.yaml contents
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Apply copies the values set in the file into s, skipping every value
// whose flag isSet reports as given on the command line
func (c Config) Apply(s *Settings, isSet func(flag string) bool) error {
	if c.Dir != "" && !isSet("dir") {
		s.Dir = c.Dir
	}
	if c.Content != "" && !isSet("content") {
		s.Content = c.Content
	}
	if c.LogLevel != "" && !isSet("log-level") {
		s.LogLevel = c.LogLevel
	}
	if c.Digest != "" && !isSet("digest") {
		alg, err := hash.ParseAlgorithm(c.Digest)
		if err != nil {
			return fmt.Errorf("config digest: %w", err)
		}
		s.Digest = alg
	}
	if c.Compress != nil && !isSet("compress") {
		s.Compress = *c.Compress
	}
	if c.CompressionLevel != nil && !isSet("compression-level") {
		s.CompressionLevel = *c.CompressionLevel
	}
	if c.CacheSize != nil && !isSet("cache-size") {
		s.CacheSize = *c.CacheSize
	}
	if c.Rotation.MaxAutosaves != nil && !isSet("max-autosaves") {
		s.Rotation.MaxAutosaves = *c.Rotation.MaxAutosaves
	}
	if c.Rotation.MaxAge != nil && !isSet("max-age") {
		s.Rotation.MaxAge = *c.Rotation.MaxAge
	}
	if c.Rotation.KeepDaily != nil && !isSet("keep-daily") {
		s.Rotation.KeepDaily = *c.Rotation.KeepDaily
	}
	return nil
}

// StoreOptions converts the settings to store options
func (s Settings) StoreOptions(logger log.Logger) storage.StoreOptions {
	opts := storage.DefaultStoreOptions()
	opts.Save.Compress = s.Compress
	opts.Save.CompressionLevel = s.CompressionLevel
	opts.Save.CacheSize = s.CacheSize
	opts.Save.Rotation = s.Rotation
	opts.Save.Logger = logger
	opts.Digest = s.Digest
	return opts
}
