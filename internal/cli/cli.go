// Package cli implements the lobstergraph command-line interface.
//
// This package provides commands for building the invitation graph from the
// exported JSON or the scraper's SQLite database, serving it over HTTP,
// exporting it as DOT/SVG, and inspecting dataset statistics. The CLI is
// built using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
//   - build: Run the full pipeline (load, index, layout, scene)
//   - serve: Serve the graph over the HTTP API with SSE events
//   - export: Write the invite tree as DOT, SVG, or JSON
//   - stats: Print dataset statistics
//   - browse: Interactively browse users in the terminal
//   - cache: Manage the local layout cache
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lobstergraph/lobstergraph/internal/config"
	"github.com/lobstergraph/lobstergraph/pkg/buildinfo"
	"github.com/lobstergraph/lobstergraph/pkg/cache"
	"github.com/lobstergraph/lobstergraph/pkg/lod"
	"github.com/lobstergraph/lobstergraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "lobstergraph"

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
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Lobstergraph visualizes the Lobsters invitation tree",
		Long:         `Lobstergraph builds a radial layout of the Lobsters invitation graph and serves it with level-of-detail filtering and highlight modes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner with the cache backend selected by
// configuration: Redis when a URL is set, a file cache otherwise, or no
// cache at all.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, cache.Cache, error) {
	backend, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, nil, err
	}
	return pipeline.NewRunner(backend, nil, c.Logger), backend, nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg != nil && cfg.RedisURL != "" {
		backend, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err == nil {
			return backend, nil
		}
		c.Logger.Warn("redis unavailable, falling back to file cache", "error", err)
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the layout cache directory: the configured one when set,
// otherwise the XDG standard (~/.cache/lobstergraph/).
func cacheDir(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Flags
// =============================================================================

// addSourceFlags registers the shared data-source and cache flags. Flag names
// match configuration keys so they participate in the koanf priority chain
// (flags > env > lobstergraph.toml > defaults).
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("data", "", "path to the exported graph JSON")
	cmd.Flags().String("sqlite", "", "path to the scraper's SQLite database (overrides --data)")
	cmd.Flags().String("enriched", "", "path to the enrichment JSON")
	cmd.Flags().String("founder", "", "founder username to root the tree at")
	cmd.Flags().Int("min-karma", 0, "drop users below this karma before indexing")
	cmd.Flags().String("lod-table", "", "path to a TOML level-of-detail table")
	cmd.Flags().String("cache-dir", "", "layout cache directory")
	cmd.Flags().String("redis-url", "", "Redis URL for the layout cache")
	cmd.Flags().String("mongo-url", "", "MongoDB URL for layout snapshots")
	cmd.Flags().Float64("target-radius", 0, "outer radius of the radial layout")
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions translates loaded configuration into pipeline options.
func (c *CLI) pipelineOptions(cfg *config.Config, refresh bool) (pipeline.Options, error) {
	opts := pipeline.Options{
		DataPath:     cfg.DataPath,
		SQLitePath:   cfg.SQLitePath,
		EnrichedPath: cfg.EnrichedPath,
		Founder:      cfg.Founder,
		MinKarma:     cfg.MinKarma,
		Refresh:      refresh,
		Logger:       c.Logger,
	}
	if cfg.SQLitePath != "" {
		opts.DataPath = ""
	}
	if cfg.TargetRadius > 0 {
		opts.Layout.TargetRadius = cfg.TargetRadius
	}
	if cfg.LODTable != "" {
		table, err := lod.LoadTable(cfg.LODTable)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.LOD = table
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}
