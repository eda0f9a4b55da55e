// Package cli implements the graphmorph command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphmorph/pkg/buildinfo"
	"github.com/matzehuels/graphmorph/pkg/cache"
	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "graphmorph"

	// defaultAddr is the listen address of the preview server.
	defaultAddr = ":8080"
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

	// registry replaces the default layout algorithms when set.
	registry *layout.Registry
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
		Use:   appName,
		Short: "graphmorph compares graph layouts and animates between them",
		Long: `graphmorph lays out one network with several algorithms, joins the
results into a single node table and edge table, and renders them as an
animated morph between layouts or as a side-by-side comparison.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.layoutsCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the layout cache backend.
type cacheFlags struct {
	noCache bool
	redis   string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().StringVar(&f.redis, "redis", "", "use a Redis cache at `addr` instead of the file cache")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, f)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	r.Registry = c.registry
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, f cacheFlags) (cache.Cache, error) {
	switch {
	case f.noCache:
		return cache.NewNullCache(), nil
	case f.redis != "":
		rc, err := cache.NewRedisCache(ctx, f.redis)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache", "addr", f.redis)
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/graphmorph/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// splitList parses a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
