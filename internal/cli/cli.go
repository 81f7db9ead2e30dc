// Package cli implements the comicstrip command-line interface.
//
// This package provides commands for splitting transcripts into caption
// segments, composing storyboards into comic pages, rendering those pages,
// serving the pipeline over HTTP and managing the local cache. The CLI is
// built using cobra and logs with charmbracelet/log.
//
// # Commands
//
//   - segment: print the caption segments of a transcript
//   - layout: compose a storyboard and write the page layout as JSON
//   - render: compose a storyboard and write SVG, PNG, PDF or JSON
//   - serve: expose the pipeline as an HTTP API
//   - cache: clear or locate the page cache
//
// # Configuration
//
// Defaults can be set in $XDG_CONFIG_HOME/comicstrip/config.toml (or the
// file named by --config). A .env file in the working directory is loaded
// first; COMICSTRIP_REDIS_URL switches the cache to Redis.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/comicstrip/pkg/buildinfo"
	"github.com/matzehuels/comicstrip/pkg/cache"
	"github.com/matzehuels/comicstrip/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "comicstrip"

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
	Config Config

	configFile string
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
	versionTmpl := buildinfo.Template()
	root := &cobra.Command{
		Use:   appName,
		Short: "Comicstrip turns transcribed video into comic pages",
		Long: `Comicstrip lays out a transcribed video as a comic page: utterances are
split into short captions, each caption gets a keyframe panel, panels are
packed into shelves, and speech bubbles are placed beside the subject.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configFile)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(versionTmpl)
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/comicstrip/config.toml)")

	// Register all subcommands
	root.AddCommand(c.segmentCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, c.newKeyer(noCache), c.Logger), nil
}

// redisKeyPrefix namespaces comicstrip entries in a shared Redis database.
const redisKeyPrefix = "comicstrip:"

// newKeyer prefixes keys when the cache is a shared Redis instance.
func (c *CLI) newKeyer(noCache bool) cache.Keyer {
	if noCache || c.Config.Cache.Redis == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), redisKeyPrefix)
}

// newCache picks the cache backend: none, Redis when configured, else files
// under the cache directory. An unusable cache directory disables caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if url := c.Config.Cache.Redis; url != "" {
		c.Logger.Debug("using redis cache")
		return cache.NewRedisCache(ctx, url)
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/comicstrip/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// options merges flag values with the config file and pipeline defaults.
func (c *CLI) options(opts pipeline.Options) pipeline.Options {
	c.Config.apply(&opts)
	opts.Logger = c.Logger
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
// An empty string leaves the choice to the config file or the default.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, strings.ToLower(f))
		}
	}
	return out
}

// addLayoutFlags registers the segmentation and layout flags shared by
// layout, render and serve. Zero means "use the config file or default",
// except for the optional flags, where an explicit 0 is kept.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	f := cmd.Flags()
	f.IntVar(&opts.Width, "width", 0, "characters per caption segment (default 50)")
	f.Var(optionalInt{&opts.MinWidth}, "min-width", "shortest trailing caption chunk (default 20)")
	f.Var(optionalFloat{&opts.PauseLen}, "pause", "seconds of silence that insert a pause panel (default 0.5)")
	f.Float64Var(&opts.PageWidth, "page-width", 0, "page width in pixels (default 450)")
	f.Float64Var(&opts.ShelfHeight, "shelf-height", 0, "shelf height in pixels (default 180)")
	f.Float64Var(&opts.MinArea, "min-area", 0, "smallest acceptable panel area (default 10000)")
	f.Float64Var(&opts.Tolerance, "tolerance", 0, "accepted aspect-ratio error (default 0.2)")
	f.Var(optionalFloat{&opts.Padding}, "padding", "gap around each panel (default 8)")
	f.Var(optionalFloat{&opts.Border}, "border", "page border width (default 2)")
	f.IntVar(&opts.LineWidth, "line-width", 0, "caption wrap width in characters (default 30)")
	f.IntVar(&opts.Workers, "workers", 0, "concurrency limit, 0 for unbounded")
}

// optionalInt is a flag that sets *p only when given, so an explicit 0 is
// distinguishable from "not set".
type optionalInt struct{ p **int }

func (o optionalInt) String() string {
	if o.p == nil || *o.p == nil {
		return ""
	}
	return strconv.Itoa(**o.p)
}

func (o optionalInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*o.p = &v
	return nil
}

func (optionalInt) Type() string { return "int" }

// optionalFloat is the float64 counterpart of optionalInt.
type optionalFloat struct{ p **float64 }

func (o optionalFloat) String() string {
	if o.p == nil || *o.p == nil {
		return ""
	}
	return strconv.FormatFloat(**o.p, 'g', -1, 64)
}

func (o optionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*o.p = &v
	return nil
}

func (optionalFloat) Type() string { return "float" }
