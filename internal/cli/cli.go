// Package cli implements the kintree command-line interface.
//
// This package provides commands for building rooted family graphs from
// relationship stores, computing chart layouts, serving the engine over
// HTTP, and managing the local result cache. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - build: Traverse a people file into a rooted graph (graph.json)
//   - layout: Compute chart geometry from a graph (layout.json)
//   - chart: Run the full build → layout → fit pipeline in one step
//   - serve: Expose the pipeline as an HTTP API
//   - cache: Manage the local result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kindredlab/kintree/pkg/cache"
	"github.com/kindredlab/kintree/pkg/gen"
	"github.com/kindredlab/kintree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "kintree"

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
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "kintree",
		Short:        "Kintree lays out genealogical charts",
		Long:         `Kintree is a layout engine for genealogical charts: it traverses family relationship data into rooted graphs and computes deterministic 2-D geometry for standard, compact, timeline, hourglass, and fan charts, optionally fitted to a page.`,
		SilenceUsage: true,
	}

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.chartCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the given store for CLI use.
func (c *CLI) newRunner(store gen.Store, noCache bool) (*pipeline.Runner, error) {
	cch, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, cch, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/kintree/).
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
