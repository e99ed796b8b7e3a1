// Package notify delivers user-visible notifications. The watcher treats
// delivery as fire-and-forget: errors are reported back for logging and
// metrics but never retried and never stop the polling loop.
package notify

import (
	"context"
	"log/slog"
)

// Notifier posts a user-visible notification.
type Notifier interface {
	Post(ctx context.Context, title, body string) error
}

// Func adapts a plain function into a Notifier.
type Func func(ctx context.Context, title, body string) error

func (f Func) Post(ctx context.Context, title, body string) error {
	return f(ctx, title, body)
}

// LogNotifier writes notifications to the structured log. It is the default
// sink when no delivery channel is configured, and doubles as a local debug
// channel alongside real sinks.
type LogNotifier struct{}

func (LogNotifier) Post(_ context.Context, title, body string) error {
	slog.Info("Notification", slog.String("title", title), slog.String("body", body))
	return nil
}

// Multi fans a notification out to several sinks. All sinks are attempted;
// the first error is returned after the fan-out completes.
type Multi []Notifier

func (m Multi) Post(ctx context.Context, title, body string) error {
	var first error
	for _, n := range m {
		if err := n.Post(ctx, title, body); err != nil && first == nil {
			first = err
		}
	}
	return first
}
