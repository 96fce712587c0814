package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/waitgraph/pkg/buildinfo"
	"github.com/matzehuels/waitgraph/pkg/cache"
	"github.com/matzehuels/waitgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "waitgraph"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// ErrDeadlockFound is returned by analyze --fail-on-deadlock when the graph
// is deadlocked. main maps it to exit status 2.
var ErrDeadlockFound = errors.New("deadlock detected")

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger  *log.Logger
	noCache bool
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
		Short:        "Waitgraph detects deadlocks in resource-allocation graphs",
		Long:         `Waitgraph reads a resource-allocation graph of processes and resources, runs a Banker's-style safety check, and reports which processes are deadlocked and the circular waits that hold them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the result cache")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.explainCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() (*pipeline.Runner, error) {
	cc, err := c.newCache()
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

func (c *CLI) newCache() (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/waitgraph/).
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
