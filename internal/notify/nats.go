package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject presence notifications are published to.
const DefaultSubject = "favwatch.presence"

// NATSNotifier publishes notifications to a NATS subject so other home
// services (dashboards, pushover bridges) can deliver or display them.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// notificationMessage is the published wire format.
type notificationMessage struct {
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	PostedAt time.Time `json:"posted_at"`
}

// NewNATSNotifier connects to NATS and returns a notifier publishing to
// subject (DefaultSubject when empty).
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(url,
		nats.Name("favwatch"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &NATSNotifier{conn: conn, subject: subject}, nil
}

// Post publishes the notification. Delivery to subscribers is best-effort;
// the loop only learns about publish-side failures.
func (n *NATSNotifier) Post(_ context.Context, title, body string) error {
	msg := notificationMessage{Title: title, Body: body, PostedAt: time.Now()}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close drains the connection.
func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
