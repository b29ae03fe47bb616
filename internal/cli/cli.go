// Package cli implements the patchwork command-line interface.
//
// This package provides commands for inspecting graph snapshots, rendering
// them as DOT or SVG diagrams, serving them over a small REST API, and
// opening them in a terminal viewer. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dverbeek/patchwork/pkg/buildinfo"
	"github.com/dverbeek/patchwork/pkg/editor"
	"github.com/dverbeek/patchwork/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "patchwork"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
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
		Use:          appName,
		Short:        "Patchwork edits and serves node graphs",
		Long:         `Patchwork is a toolkit for node-graph snapshots: inspect and validate them, render them as diagrams, serve them over HTTP for embedding hosts, or edit them in the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a TOML options file")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// editorOptions loads the --config file when given, defaults otherwise.
func (c *CLI) editorOptions() (editor.Options, error) {
	if c.configPath == "" {
		return editor.DefaultOptions(), nil
	}
	return editor.LoadOptions(c.configPath)
}

// newStore builds the snapshot store for the serve command from a store
// spec: "none" disables persistence, redis:// and mongodb:// URLs select
// those backends, anything else is a filesystem directory (empty means the
// XDG data directory).
func (c *CLI) newStore(ctx context.Context, spec string) (store.Store, error) {
	switch {
	case spec == "none":
		return store.NewNullStore(), nil

	case strings.HasPrefix(spec, "redis://"), strings.HasPrefix(spec, "rediss://"):
		opts, err := redis.ParseURL(spec)
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(redis.NewClient(opts)), nil

	case strings.HasPrefix(spec, "mongodb://"), strings.HasPrefix(spec, "mongodb+srv://"):
		client, err := mongo.Connect(ctx, mongoopts.Client().ApplyURI(spec))
		if err != nil {
			return nil, err
		}
		return store.NewMongoStoreOwned(client), nil
	}

	dir := spec
	if dir == "" {
		var err error
		dir, err = dataDir()
		if err != nil {
			return nil, err
		}
	}
	return store.NewFileStore(dir)
}

// dataDir returns the snapshot directory using XDG standard
// (~/.local/share/patchwork/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
