package eventpublisher

import (
	"context"
	"log/slog"

	"github.com/dkosiv/shardpay/internal/domain"
)

// LogPublisher is a publisher that only logs events. Used in development
// and in tests when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the entry.
func (p *LogPublisher) Publish(ctx context.Context, entry *domain.OutboxEntry) error {
	p.logger.Info("EVENT PUBLISHED",
		slog.String("entry_id", entry.EntryID),
		slog.String("event_type", entry.EventType),
		slog.String("transaction_id", entry.TransactionID),
		slog.String("shard_key", entry.ShardKey),
		slog.String("payload", string(entry.Payload)))

	return nil
}
