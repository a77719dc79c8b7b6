package services

import (
	"context"
	"log/slog"

	"gagyebu/internal/amqp"
)

// EventPublisher sends ledger events after a unit of work has committed.
// *amqp.Client implements it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// publish is best effort: the ledger is already committed, so a broker
// failure is only logged.
func publish(ctx context.Context, p EventPublisher, ev *amqp.LedgerEvent) {
	if p == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping ledger event", "type", ev.Type)
		return
	}
	if err := p.PublishLedgerEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type,
			"message_id", ev.MessageID,
			"error", err)
	}
}
