package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/favwatch/internal/daemon"
	"git.home.luguber.info/inful/favwatch/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Character string `short:"n" help:"Only show transitions for this character"`
	Limit     int    `short:"l" help:"Maximum number of entries" default:"20"`
}

func (c *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	store, err := history.NewSQLiteStore(filepath.Join(cfg.DataDir, daemon.HistoryFileName))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	var entries []history.Entry
	if c.Character != "" {
		entries, err = store.ByCharacter(ctx, c.Character, c.Limit)
	} else {
		entries, err = store.Recent(ctx, c.Limit)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No transitions recorded")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %-20s %-18s -> %s\n",
			e.ObservedAt.Format(time.RFC3339), e.Character, e.Event, e.Presence)
	}
	return nil
}
