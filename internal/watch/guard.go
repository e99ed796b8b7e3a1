package watch

import (
	"log/slog"

	"git.home.luguber.info/inful/favwatch/internal/logfields"
	"git.home.luguber.info/inful/favwatch/internal/state"
)

// PermissionChecker reports whether notification delivery is currently
// allowed. Platforms without an explicit grant model use AlwaysGranted.
type PermissionChecker interface {
	NotificationsGranted() bool
}

// PermissionFunc adapts a plain function into a PermissionChecker.
type PermissionFunc func() bool

func (f PermissionFunc) NotificationsGranted() bool { return f() }

// AlwaysGranted treats notification permission as permanently available.
type AlwaysGranted struct{}

func (AlwaysGranted) NotificationsGranted() bool { return true }

// OnStartRequested decides whether the watcher loop should run for this
// process-start event. Boot-triggered starts additionally require the
// autostart flag; otherwise boot and manual starts share the same predicate,
// so the two paths can never diverge.
//
// The decision is side-effect-free: the store is only read, never mutated.
// Any failure to load or parse state answers false — never spin up
// unbounded background work from corrupted state.
func OnStartRequested(store state.Store, perms PermissionChecker, bootTriggered bool) bool {
	trigger := "manual"
	if bootTriggered {
		trigger = "boot"
	}

	if perms == nil {
		perms = AlwaysGranted{}
	}
	if !perms.NotificationsGranted() {
		slog.Info("Not starting watcher: notification permission missing", logfields.Trigger(trigger))
		return false
	}

	m, err := store.Load()
	if err != nil {
		slog.Warn("Not starting watcher: state unreadable", logfields.Trigger(trigger), logfields.Error(err))
		return false
	}

	if !m.MonitoringEnabled {
		slog.Info("Not starting watcher: monitoring disabled", logfields.Trigger(trigger))
		return false
	}
	if bootTriggered && !m.AutostartOnBoot {
		slog.Info("Not starting watcher: autostart on boot disabled", logfields.Trigger(trigger))
		return false
	}
	if !m.HasFavorites() {
		slog.Info("Not starting watcher: no favorites to monitor", logfields.Trigger(trigger))
		return false
	}

	return true
}
