package services

import (
	"context"
	"log/slog"

	"github.com/jfprgin/home-budget/internal/amqp"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.LedgerEvent) error
}

// publish sends a ledger event when a publisher is configured. The write it
// reports has already committed, so failures are only logged.
func publish(ctx context.Context, p EventPublisher, kind string, profileID, id int64) {
	if p == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping ledger event", "type", kind)
		return
	}
	if err := p.Publish(ctx, amqp.NewLedgerEvent(kind, profileID, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", kind, "id", id, "profile_id", profileID, "error", err)
	}
}
