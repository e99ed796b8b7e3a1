// Package commands holds the favwatch subcommands. Each command talks to
// the same shared state file the daemon watches, so changes made here take
// effect in a running daemon without a restart.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/favwatch/internal/config"
	"git.home.luguber.info/inful/favwatch/internal/state"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"favwatch.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Watch     WatchCmd     `cmd:"" help:"Run the presence watcher daemon"`
	Favorites FavoritesCmd `cmd:"" help:"Manage the favorites list"`
	Monitor   MonitorCmd   `cmd:"" help:"Control monitoring settings"`
	Status    StatusCmd    `cmd:"" help:"Show current presence of all favorites"`
	History   HistoryCmd   `cmd:"" help:"Show recent presence transitions"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig reads the config file named by the root --config flag.
func loadConfig(root *CLI) (*config.Config, error) {
	return config.Load(root.Config)
}

// openStore builds the file store from configuration.
func openStore(root *CLI) (*state.FileStore, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	return state.NewFileStore(cfg.DataDir), nil
}
