package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/TFMV/savefmt/internal/config"
	"github.com/TFMV/savefmt/internal/content"
	"github.com/TFMV/savefmt/internal/hash"
	"github.com/TFMV/savefmt/internal/storage"
	"github.com/TFMV/savefmt/internal/world"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
)

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "savetool",
	Short: "Save game inspection tool",
	Long: `savetool writes, inspects and maintains versioned save files.
Saves carry their own enum translation tables, so they stay loadable after
content definitions are reordered or trimmed.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// app holds the state resolved once per invocation
var app struct {
	settings config.Settings
	logger   kitlog.Logger
	content  *content.Registry
}

func init() {
	d := config.Defaults()
	f := RootCmd.PersistentFlags()
	f.String("config", config.DefaultPath(), "Path to savetool.yaml")
	f.String("dir", d.Dir, "Save directory")
	f.String("content", d.Content, "Content definition file (built-in content when empty)")
	f.String("log-level", d.LogLevel, "Log level: debug, info, warn, error")
	f.String("digest", d.Digest.String(), "Catalog digest algorithm: blake3, xxh64, sha256")
	f.Bool("compress", d.Compress, "Compress saves with zstd")
	f.Int("compression-level", d.CompressionLevel, "zstd compression level")
	f.Int("cache-size", d.CacheSize, "Number of saves kept in memory")
	f.Int("max-autosaves", d.Rotation.MaxAutosaves, "Newest autosaves always kept")
	f.Duration("max-age", d.Rotation.MaxAge, "Delete autosaves older than this (0 keeps all)")
	f.Int("keep-daily", d.Rotation.KeepDaily, "Days for which one older autosave is kept")
}

// Execute executes the root command.
func Execute() error {
	return RootCmd.Execute()
}

// ExecuteWithContext executes the root command with the given context.
func ExecuteWithContext(ctx context.Context) error {
	RootCmd.SetContext(ctx)
	return RootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	s := config.Defaults()
	s.Dir, _ = flags.GetString("dir")
	s.Content, _ = flags.GetString("content")
	s.LogLevel, _ = flags.GetString("log-level")
	s.Compress, _ = flags.GetBool("compress")
	s.CompressionLevel, _ = flags.GetInt("compression-level")
	s.CacheSize, _ = flags.GetInt("cache-size")
	s.Rotation.MaxAutosaves, _ = flags.GetInt("max-autosaves")
	s.Rotation.MaxAge, _ = flags.GetDuration("max-age")
	s.Rotation.KeepDaily, _ = flags.GetInt("keep-daily")
	digest, _ := flags.GetString("digest")
	if s.Digest, err = hash.ParseAlgorithm(digest); err != nil {
		return err
	}
	if err := cfg.Apply(&s, flags.Changed); err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), s.LogLevel)
	if err != nil {
		return err
	}

	reg := world.DefaultContent()
	if s.Content != "" {
		if reg, err = content.Load(s.Content); err != nil {
			return err
		}
	}

	app.settings = s
	app.logger = logger
	app.content = reg
	level.Debug(logger).Log("msg", "configured", "dir", s.Dir, "content", s.Content, "config", path)
	return nil
}

func newLogger(w io.Writer, lvl string) (kitlog.Logger, error) {
	var allow level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		allow = level.AllowDebug()
	case "info", "":
		allow = level.AllowInfo()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		return nil, fmt.Errorf("unknown log level %q", lvl)
	}
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	return level.NewFilter(logger, allow), nil
}

func openStore() (*storage.Store, error) {
	store, err := storage.NewStore(app.settings.Dir, app.content, app.settings.StoreOptions(app.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open save store: %w", err)
	}
	return store, nil
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
