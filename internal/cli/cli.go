package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qrsheet/pkg/buildinfo"
	"github.com/matzehuels/qrsheet/pkg/cache"
	"github.com/matzehuels/qrsheet/pkg/config"
	"github.com/matzehuels/qrsheet/pkg/pipeline"
	"github.com/matzehuels/qrsheet/pkg/raster"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "qrsheet"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself generates a sheet.
func (c *CLI) RootCommand() *cobra.Command {
	opts := generateOpts{}

	root := &cobra.Command{
		Use:   "qrsheet [start end]",
		Short: "qrsheet prints numbered QR code label sheets",
		Long: `qrsheet turns an integer range into printable QR code labels.

Every number in [start, end] becomes a code such as P0301. Each code is drawn
as an SVG label, rasterized to PNG, and tiled onto A4 pages that are written
as a single PDF. Without arguments the range 301 to 480 is used.

Page, grid, and label geometry are set in the TOML file passed via --config.`,
		Example: `  qrsheet
  qrsheet 1 30 --output batch1.pdf
  qrsheet 301 480 --workers 8 --config labels.toml`,
		Version:       buildinfo.Version,
		Args:          rangeArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(args)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), start, end, opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cmd.SilenceUsage = false
		return err
	})
	opts.bind(root)

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for cfg with the named rasterizer
// backend and the cache cfg selects.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, backend string) (*pipeline.Runner, error) {
	if backend == "" {
		backend = raster.BackendNative
	}
	rz, err := raster.New(backend)
	if err != nil {
		return nil, err
	}

	logger := loggerFromContext(ctx)
	store := newCache(ctx, cfg.Cache, logger)
	runner, err := pipeline.NewRunner(cfg,
		pipeline.WithLogger(logger),
		pipeline.WithRasterizer(rz),
		pipeline.WithCache(store, cache.NewScopedKeyer(nil, backend+":")),
	)
	if err != nil {
		store.Close()
		return nil, err
	}
	return runner, nil
}

// newCache returns the raster cache cfg selects. Redis is used when an
// address is configured; if it cannot be reached the local file cache takes
// over. Caching never fails a run.
func newCache(ctx context.Context, cfg config.Cache, logger *log.Logger) cache.Cache {
	if !cfg.Enabled {
		return cache.NewNullCache()
	}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cfg.RedisAddr})
		if err == nil {
			logger.Debug("using redis cache", "addr", cfg.RedisAddr)
			return rc
		}
		logger.Warn("redis unavailable, using file cache", "addr", cfg.RedisAddr, "err", err)
	}
	dir, err := cacheDir()
	if err != nil {
		logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/qrsheet/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
