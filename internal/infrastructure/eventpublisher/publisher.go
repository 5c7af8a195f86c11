package eventpublisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/dkosiv/shardpay/internal/domain"
	"github.com/dkosiv/shardpay/internal/infrastructure/metrics"
	"github.com/dkosiv/shardpay/internal/usecase"
)

// Publisher defines the interface for publishing events to the message
// bus.
type Publisher interface {
	Publish(ctx context.Context, entry *domain.OutboxEntry) error
}

// EventPublisher drains one shard's outbox and publishes entries to the
// bus. Entries are processed in commit order and marked published only
// after broker acknowledgment; a publish failure stops the cycle so
// per-account ordering is never violated by skipping ahead.
type EventPublisher struct {
	shardID        string
	outboxRepo     usecase.OutboxRepository
	publisher      Publisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	batchSize      int
	interval       time.Duration
	staleThreshold time.Duration
	retention      time.Duration
}

// Config for EventPublisher.
type Config struct {
	ShardID        string
	OutboxRepo     usecase.OutboxRepository
	Publisher      Publisher
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	BatchSize      int           // Number of entries to fetch per cycle
	Interval       time.Duration // Polling interval
	StaleThreshold time.Duration // Age after which unpublished entries alert
	Retention      time.Duration // Age after which published entries are deleted
}

// NewEventPublisher creates a new EventPublisher for one shard.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.StaleThreshold == 0 {
		cfg.StaleThreshold = 10 * time.Minute
	}
	if cfg.Retention == 0 {
		cfg.Retention = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &EventPublisher{
		shardID:        cfg.ShardID,
		outboxRepo:     cfg.OutboxRepo,
		publisher:      cfg.Publisher,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger.With(slog.String("shard", cfg.ShardID)),
		batchSize:      cfg.BatchSize,
		interval:       cfg.Interval,
		staleThreshold: cfg.StaleThreshold,
		retention:      cfg.Retention,
	}
}

// Start begins the drain loop for this shard. It runs until the context
// is cancelled. Failed cycles back off exponentially; a successful cycle
// resets the backoff.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info("outbox publisher started",
		slog.Int("batch_size", ep.batchSize),
		slog.Duration("interval", ep.interval))

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = ep.interval
	b.MaxInterval = 2 * time.Minute
	b.MaxElapsedTime = 0 // never give up, entries stay durable

	wait := ep.interval

	// Drain immediately on start: crash recovery resumes from whatever
	// is still unpublished.
	if err := ep.drainOnce(ctx); err != nil {
		ep.logger.Error("outbox drain failed on start", slog.String("error", err.Error()))
		wait = b.NextBackOff()
	}

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info("outbox publisher shutting down")
			return ctx.Err()
		case <-time.After(wait):
			if err := ep.drainOnce(ctx); err != nil {
				ep.logger.Error("outbox drain failed", slog.String("error", err.Error()))
				wait = b.NextBackOff()
				continue
			}
			b.Reset()
			wait = ep.interval
		}
	}
}

// drainOnce runs one cycle: publish pending entries in order, report
// staleness, clean up retired entries.
func (ep *EventPublisher) drainOnce(ctx context.Context) error {
	start := time.Now()
	defer func() {
		if ep.metrics != nil {
			ep.metrics.OutboxDrainDuration.WithLabelValues(ep.shardID).Observe(time.Since(start).Seconds())
		}
	}()

	if err := ep.reportStaleness(ctx); err != nil {
		ep.logger.Warn("staleness check failed", slog.String("error", err.Error()))
	}

	entries, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := ep.publishEntry(ctx, entry); err != nil {
			// Stop the cycle: skipping ahead would reorder events for
			// accounts behind this entry.
			if ep.metrics != nil {
				ep.metrics.OutboxPublishErrors.WithLabelValues(ep.shardID).Inc()
			}
			return err
		}

		if err := ep.outboxRepo.MarkPublished(ctx, entry.EntryID, time.Now().UTC()); err != nil {
			// The broker has the event; the next cycle will republish
			// and consumers dedupe on transaction id.
			ep.logger.Error("failed to mark entry published",
				slog.String("entry_id", entry.EntryID),
				slog.String("error", err.Error()))
			return err
		}

		if ep.metrics != nil {
			ep.metrics.OutboxPublished.WithLabelValues(ep.shardID).Inc()
		}
	}

	if err := ep.outboxRepo.DeletePublished(ctx, time.Now().UTC().Add(-ep.retention)); err != nil {
		ep.logger.Warn("outbox cleanup failed", slog.String("error", err.Error()))
	}

	return nil
}

func (ep *EventPublisher) publishEntry(ctx context.Context, entry *domain.OutboxEntry) error {
	ep.logger.Debug("publishing entry",
		slog.String("entry_id", entry.EntryID),
		slog.String("event_type", entry.EventType),
		slog.String("transaction_id", entry.TransactionID))

	if err := ep.publisher.Publish(ctx, entry); err != nil {
		return err
	}

	ep.logger.Info("entry published",
		slog.String("entry_id", entry.EntryID),
		slog.String("event_type", entry.EventType))

	return nil
}

// reportStaleness surfaces entries stuck beyond the threshold. They are
// never dropped; the gauge and log are the alerting signal.
func (ep *EventPublisher) reportStaleness(ctx context.Context) error {
	stale, err := ep.outboxRepo.CountStale(ctx, time.Now().UTC().Add(-ep.staleThreshold))
	if err != nil {
		return err
	}

	if ep.metrics != nil {
		ep.metrics.OutboxStaleEntries.WithLabelValues(ep.shardID).Set(float64(stale))
	}

	if stale > 0 {
		ep.logger.Warn("stale outbox entries detected",
			slog.Int64("count", stale),
			slog.Duration("threshold", ep.staleThreshold))
	}

	return nil
}

// Fleet runs one EventPublisher per shard. A stuck shard backs off on its
// own loop and never stalls the others.
type Fleet struct {
	publishers []*EventPublisher
}

// NewFleet creates a Fleet from per-shard publishers.
func NewFleet(publishers ...*EventPublisher) *Fleet {
	return &Fleet{publishers: publishers}
}

// Start runs every publisher until the context is cancelled.
func (f *Fleet) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, ep := range f.publishers {
		ep := ep
		g.Go(func() error {
			return ep.Start(gctx)
		})
	}

	return g.Wait()
}
