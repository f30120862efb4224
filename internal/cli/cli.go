package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/buildinfo"
	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/pipeline"
)

const (
	appName = "flowlens"

	// keyPrefix scopes cache keys when several projects share one Redis.
	keyPrefix = appName + ":"
)

// Levels accepted by [New] and [CLI.SetLogLevel].
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI carries the logger shared by every subcommand.
type CLI struct {
	Logger *log.Logger
}

// New returns a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand assembles the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Flowlens turns flow definitions into diagrams",
		Long:         `Flowlens converts flow definition files into Graphviz, PlantUML or Mermaid diagrams and highlights what changed between two git revisions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(
		c.renderCommand(),
		c.viewCommand(),
		c.serveCommand(),
		c.cacheCommand(),
		c.completionCommand(),
	)

	return root
}

// cacheOpts selects the cache backend for a runner.
type cacheOpts struct {
	disabled      bool
	redisAddr     string
	redisPassword string
	redisDB       int
}

// newRunner builds a pipeline runner backed by the cache co selects.
// Redis keys get the application prefix so several tools can share a server.
func (c *CLI) newRunner(ctx context.Context, co cacheOpts) (*pipeline.Runner, error) {
	store, err := newCache(ctx, co)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if co.redisAddr != "" {
		keyer = cache.NewScopedKeyer(nil, keyPrefix)
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache picks the null, Redis or file cache, in that order of precedence.
// Without a usable home directory caching is silently disabled.
func newCache(ctx context.Context, co cacheOpts) (cache.Cache, error) {
	if co.disabled {
		return cache.NewNullCache(), nil
	}
	if co.redisAddr != "" {
		return cache.NewRedisCache(ctx, co.redisAddr, co.redisPassword, co.redisDB)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir is $XDG_CACHE_HOME/flowlens, or ~/.cache/flowlens.
func cacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, appName), nil
}

// parseFormats splits a --format value such as "text, svg". Empty input
// means text only.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatText}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
