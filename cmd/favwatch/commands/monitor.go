package commands

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/favwatch/internal/state"
)

// MonitorCmd groups the monitoring settings.
type MonitorCmd struct {
	Enable    MonitorEnableCmd    `cmd:"" help:"Enable monitoring"`
	Disable   MonitorDisableCmd   `cmd:"" help:"Disable monitoring"`
	Autostart MonitorAutostartCmd `cmd:"" help:"Set whether the watcher starts on boot"`
	Interval  MonitorIntervalCmd  `cmd:"" help:"Set the poll interval in seconds"`
	Notify    MonitorNotifyCmd    `cmd:"" help:"Toggle a notification kind on or off"`
}

// MonitorEnableCmd implements 'monitor enable'.
type MonitorEnableCmd struct{}

func (c *MonitorEnableCmd) Run(_ *Global, root *CLI) error {
	return setMonitoring(root, true)
}

// MonitorDisableCmd implements 'monitor disable'.
type MonitorDisableCmd struct{}

func (c *MonitorDisableCmd) Run(_ *Global, root *CLI) error {
	return setMonitoring(root, false)
}

func setMonitoring(root *CLI, enabled bool) error {
	store, err := openStore(root)
	if err != nil {
		return err
	}
	if err := store.Update(func(m *state.MonitorState) error {
		m.MonitoringEnabled = enabled
		return nil
	}); err != nil {
		return err
	}
	if enabled {
		fmt.Println("Monitoring enabled")
	} else {
		fmt.Println("Monitoring disabled")
	}
	return nil
}

// MonitorAutostartCmd implements 'monitor autostart'.
type MonitorAutostartCmd struct {
	Enabled bool `arg:"" help:"true to start the watcher on boot"`
}

func (c *MonitorAutostartCmd) Run(_ *Global, root *CLI) error {
	store, err := openStore(root)
	if err != nil {
		return err
	}
	if err := store.Update(func(m *state.MonitorState) error {
		m.AutostartOnBoot = c.Enabled
		return nil
	}); err != nil {
		return err
	}
	fmt.Printf("Autostart on boot: %t\n", c.Enabled)
	return nil
}

// MonitorNotifyCmd implements 'monitor notify'.
type MonitorNotifyCmd struct {
	Kind    string `arg:"" enum:"online,level,death" help:"Notification kind: online (login/logout), level (level ups), death"`
	Enabled bool   `arg:"" help:"true to deliver this kind of notification"`
}

func (c *MonitorNotifyCmd) Run(_ *Global, root *CLI) error {
	store, err := openStore(root)
	if err != nil {
		return err
	}

	if err := store.Update(func(m *state.MonitorState) error {
		mute := !c.Enabled
		switch c.Kind {
		case "online":
			m.MuteOnlineAlerts = mute
		case "level":
			m.MuteLevelAlerts = mute
		case "death":
			m.MuteDeathAlerts = mute
		}
		return nil
	}); err != nil {
		return err
	}

	if c.Enabled {
		fmt.Printf("%s notifications enabled\n", c.Kind)
	} else {
		fmt.Printf("%s notifications muted\n", c.Kind)
	}
	return nil
}

// MonitorIntervalCmd implements 'monitor interval'.
type MonitorIntervalCmd struct {
	Seconds int `arg:"" help:"Poll interval in seconds (minimum 5)"`
}

func (c *MonitorIntervalCmd) Run(_ *Global, root *CLI) error {
	store, err := openStore(root)
	if err != nil {
		return err
	}

	err = store.Update(func(m *state.MonitorState) error {
		return m.SetPollInterval(c.Seconds)
	})
	if errors.Is(err, state.ErrIntervalTooShort) {
		return fmt.Errorf("interval must be at least %d seconds", state.MinPollIntervalSeconds)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Poll interval set to %ds\n", c.Seconds)
	return nil
}
