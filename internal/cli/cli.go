// Package cli implements the mixprof command-line interface.
//
// This package provides commands for running external profilers against a
// workload, converting their stats to Graphviz DOT with gprof2dot,
// rendering call-graph images, and housekeeping (doctor, cache, history).
// The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - run: Full profile → convert → render pipeline
//   - profile: Run only the profiling stage
//   - convert: Convert an existing stats file to DOT
//   - render: Render a DOT file to an image
//   - doctor: Check which external tools are installed
//   - example: Scaffold the demo mixed Python/C workload
//   - serve: Browse rendered results over HTTP
//   - history: List recorded runs
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is held on the CLI struct and passed to pipeline stages explicitly.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mixprof/mixprof/pkg/buildinfo"
	"github.com/mixprof/mixprof/pkg/cache"
	"github.com/mixprof/mixprof/pkg/config"
	"github.com/mixprof/mixprof/pkg/history"
	"github.com/mixprof/mixprof/pkg/pipeline"
	"github.com/mixprof/mixprof/pkg/profiler"
)

// appName is the application name used for directories and display.
const appName = "mixprof"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config
}

// New creates a new CLI instance with a default logger and the user's
// config file (defaults when absent).
func New(w io.Writer, level log.Level) *CLI {
	cfg, err := config.LoadDefault()
	c := &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: cfg,
	}
	if err != nil {
		c.Logger.Warn("ignoring invalid config file", "err", err)
		c.Config = config.Default()
	}
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "mixprof profiles mixed Python/C/C++ code and renders call graphs",
		Long: `mixprof is a convenience layer around third-party profilers. It runs
cProfile, pyinstrument, py-spy, perf, valgrind, or austin against a
workload, converts the statistics to a call graph with gprof2dot, renders
an image with Graphviz, and opens it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.runCommand())
	root.AddCommand(c.profileCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.doctorCommand())
	root.AddCommand(c.exampleCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner wired to the configured cache and
// history backends.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	hist, err := c.newHistory(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return pipeline.NewRunner(store, profiler.DefaultRegistry(), hist, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}

	if c.Config.Cache.Backend == "redis" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Cache.Redis.Addr,
			Password: c.Config.Cache.Redis.Password,
			DB:       c.Config.Cache.Redis.DB,
		})
	}

	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return nil, err
		}
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) newHistory(ctx context.Context) (history.Store, error) {
	if c.Config.History.Backend == "mongo" {
		return history.NewMongoStore(ctx, c.Config.History.Mongo.URI, c.Config.History.Mongo.Database)
	}

	dir := c.Config.History.Dir
	if dir == "" {
		var err error
		dir, err = dataDir()
		if err != nil {
			return nil, err
		}
	}
	return history.NewFileStore(dir)
}
