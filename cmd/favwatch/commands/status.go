package commands

import (
	"fmt"
	"time"
)

// StatusCmd implements the 'status' command.
type StatusCmd struct{}

func (c *StatusCmd) Run(_ *Global, root *CLI) error {
	store, err := openStore(root)
	if err != nil {
		return err
	}

	m, err := store.Load()
	if err != nil {
		return err
	}

	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	fmt.Printf("Monitoring:    %s\n", onOff(m.MonitoringEnabled))
	fmt.Printf("Autostart:     %s\n", onOff(m.AutostartOnBoot))
	fmt.Printf("Poll interval: %ds\n", m.PollIntervalSeconds)
	fmt.Printf("Favorites:     %d\n\n", len(m.Favorites))

	if len(m.Favorites) == 0 {
		fmt.Println("No favorites configured")
		return nil
	}

	now := time.Now()
	for _, name := range m.Favorites {
		fs := m.FavoriteState(name)
		line := fmt.Sprintf("%-20s %-8s", name, fs.LastKnown)
		if fs.Level > 0 {
			line += fmt.Sprintf(" lvl %-4d", fs.Level)
		}
		if offline, ok := fs.OfflineFor(now); ok {
			line += fmt.Sprintf(" offline for %s", offline.Round(time.Second))
		} else if !fs.Since.IsZero() {
			line += fmt.Sprintf(" since %s", fs.Since.Format(time.RFC3339))
		}
		fmt.Println(line)
	}
	return nil
}
