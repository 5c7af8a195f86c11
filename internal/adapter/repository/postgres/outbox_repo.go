package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dkosiv/shardpay/internal/domain"
	"github.com/dkosiv/shardpay/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository for one shard.
type OutboxRepository struct {
	pool Pool
}

// NewOutboxRepository creates a new OutboxRepository over a shard's
// connection pool.
func NewOutboxRepository(pool Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Create inserts an outbox entry within a database transaction. Always
// called in the same transaction as the referenced record's insert.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.OutboxEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `INSERT INTO outbox_entries
		(entry_id, transaction_id, event_type, shard_key, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := pgxTx.Exec(ctx, query,
		entry.EntryID, entry.TransactionID, entry.EventType,
		entry.ShardKey, entry.Payload, entry.CreatedAt,
	)

	return err
}

// GetUnpublished retrieves unpublished entries in commit order.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEntry, error) {
	query := `SELECT entry_id, transaction_id, event_type, shard_key, payload, created_at, published_at
		FROM outbox_entries
		WHERE published_at IS NULL
		ORDER BY created_at ASC, entry_id ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.OutboxEntry, 0, limit)
	for rows.Next() {
		entry, err := scanOutboxEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// MarkPublished marks an entry as delivered. Idempotent: repeating the
// update after a crash between broker ack and mark is harmless.
func (r *OutboxRepository) MarkPublished(ctx context.Context, entryID string, publishedAt time.Time) error {
	query := `UPDATE outbox_entries SET published_at = $1 WHERE entry_id = $2 AND published_at IS NULL`

	_, err := r.pool.Exec(ctx, query, publishedAt, entryID)

	return err
}

// CountStale counts unpublished entries created before the given time.
func (r *OutboxRepository) CountStale(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM outbox_entries WHERE published_at IS NULL AND created_at < $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, olderThan).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// DeletePublished deletes delivered entries older than the given time.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	query := `DELETE FROM outbox_entries WHERE published_at IS NOT NULL AND published_at < $1`

	_, err := r.pool.Exec(ctx, query, before)

	return err
}

func scanOutboxEntry(row pgx.Row) (*domain.OutboxEntry, error) {
	var (
		entry       domain.OutboxEntry
		publishedAt *time.Time
	)

	err := row.Scan(
		&entry.EntryID, &entry.TransactionID, &entry.EventType,
		&entry.ShardKey, &entry.Payload, &entry.CreatedAt, &publishedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.PublishedAt = publishedAt

	return &entry, nil
}
