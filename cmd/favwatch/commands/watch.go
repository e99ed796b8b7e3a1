package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/favwatch/internal/config"
	"git.home.luguber.info/inful/favwatch/internal/daemon"
	"git.home.luguber.info/inful/favwatch/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Boot bool `help:"Treat this start as boot-triggered (honors the autostart setting)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return RunWatch(cfg, w.Boot)
}

// RunWatch runs the watcher daemon until a shutdown signal arrives. A start
// that the guard declines (monitoring disabled, no favorites, boot start
// with autostart off) exits cleanly without doing any work.
func RunWatch(cfg *config.Config, bootTriggered bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if !watch.OnStartRequested(d.Store(), watch.AlwaysGranted{}, bootTriggered) {
		slog.Info("Watcher not started; nothing to do")
		return stopDaemon(d)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- d.Start(ctx)
	}()

	slog.Info("Watcher started, waiting for shutdown signal...")

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("daemon error: %w", err)
		}
		<-ctx.Done()
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping watcher...")
	}

	return stopDaemon(d)
}

func stopDaemon(d *daemon.Daemon) error {
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	slog.Info("Watcher stopped")
	return nil
}
