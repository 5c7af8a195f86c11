package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkosiv/shardpay/internal/domain"
)

func newTestEntry() *domain.OutboxEntry {
	return &domain.OutboxEntry{
		EntryID:       "01HTESTENTRY00000000000000",
		TransactionID: "01HTEST0000000000000000000",
		EventType:     domain.EventTypeTransactionCompleted,
		ShardKey:      "acc-1",
		Payload:       []byte(`{"transaction_id":"01HTEST0000000000000000000"}`),
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func entryColumns() []string {
	return []string{"entry_id", "transaction_id", "event_type", "shard_key", "payload", "created_at", "published_at"}
}

func TestOutboxRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(mock)
	entry := newTestEntry()

	tx := beginTx(t, mock)
	mock.ExpectExec("INSERT INTO outbox_entries").
		WithArgs(
			entry.EntryID, entry.TransactionID, entry.EventType,
			entry.ShardKey, entry.Payload, entry.CreatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), tx, entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepo_GetUnpublished(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(mock)
	entry := newTestEntry()

	mock.ExpectQuery("SELECT .+ FROM outbox_entries .+ published_at IS NULL").
		WithArgs(100).
		WillReturnRows(pgxmock.NewRows(entryColumns()).AddRow(
			entry.EntryID, entry.TransactionID, entry.EventType,
			entry.ShardKey, entry.Payload, entry.CreatedAt, (*time.Time)(nil),
		))

	entries, err := repo.GetUnpublished(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.EntryID, entries[0].EntryID)
	assert.Nil(t, entries[0].PublishedAt)
	assert.False(t, entries[0].Published())
}

func TestOutboxRepo_MarkPublished(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(mock)
	publishedAt := time.Now().UTC()

	mock.ExpectExec("UPDATE outbox_entries SET published_at").
		WithArgs(publishedAt, "entry-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MarkPublished(context.Background(), "entry-1", publishedAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepo_CountStale(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(mock)
	olderThan := time.Now().UTC().Add(-10 * time.Minute)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(olderThan).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.CountStale(context.Background(), olderThan)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestOutboxRepo_DeletePublished(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepository(mock)
	before := time.Now().UTC().Add(-24 * time.Hour)

	mock.ExpectExec("DELETE FROM outbox_entries").
		WithArgs(before).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))

	err = repo.DeletePublished(context.Background(), before)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
