package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fincore/internal/amqp"
	"fincore/internal/core"
	"fincore/internal/notify"
)

// RelayWorker forwards notification messages consumed from AMQP to
// presentation sinks.
type RelayWorker struct {
	sinks []notify.Publisher
	types map[core.NotificationType]bool
}

// NewRelayWorker creates a relay. When types is empty every notification
// type is forwarded.
func NewRelayWorker(types []core.NotificationType, sinks ...notify.Publisher) *RelayWorker {
	w := &RelayWorker{sinks: sinks}
	if len(types) > 0 {
		w.types = make(map[core.NotificationType]bool, len(types))
		for _, t := range types {
			w.types[t] = true
		}
	}
	return w
}

// HandleNotificationMessage processes a single notification message from
// AMQP. An error makes the consumer requeue the message.
func (w *RelayWorker) HandleNotificationMessage(ctx context.Context, msg *amqp.NotificationMessage) error {
	n := msg.Notification()
	if w.types != nil && !w.types[n.Type] {
		slog.DebugContext(ctx, "Skipping notification type", "id", n.ID, "type", n.Type)
		return nil
	}

	slog.InfoContext(ctx, "Relaying notification", "id", n.ID, "type", n.Type)

	var errs []error
	for _, s := range w.sinks {
		if err := s.PublishNotification(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("relay notification %s: %w", n.ID, err)
	}
	return nil
}
