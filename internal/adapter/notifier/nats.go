// Package notifier provides delivery channels for proximity
// notifications. Channels are tried in order by the dispatcher; a
// channel error means "try the next one", not a fatal condition.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"waypost/internal/service/notify"
)

// NATSNotifier publishes notifications to the platform notification
// surface over the event bus.
type NATSNotifier struct {
	eventBus *nats.Conn
	subject  string
}

// NewNATSNotifier creates a NATS-backed notifier.
func NewNATSNotifier(eventBus *nats.Conn, subject string) *NATSNotifier {
	return &NATSNotifier{
		eventBus: eventBus,
		subject:  subject,
	}
}

// Notify publishes one notification. The error surfaces to the
// dispatcher so it can fall back to the in-app channel.
func (n *NATSNotifier) Notify(ctx context.Context, req notify.NotificationRequest) error {
	if n.eventBus == nil || !n.eventBus.IsConnected() {
		return fmt.Errorf("event bus unavailable")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("error marshaling notification: %w", err)
	}

	if err := n.eventBus.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("error publishing notification: %w", err)
	}
	return nil
}

var _ notify.Notifier = (*NATSNotifier)(nil)
