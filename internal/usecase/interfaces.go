package usecase

import (
	"context"
	"time"

	"github.com/dkosiv/shardpay/internal/domain"
)

// TransactionRepository defines data access for transaction records on a
// single shard.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TransactionStatus, failureReason string) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, accountID, idempotencyKey string) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

// OutboxRepository defines data access for outbox entries on a single
// shard.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.OutboxEntry) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEntry, error)
	MarkPublished(ctx context.Context, entryID string, publishedAt time.Time) error
	CountStale(ctx context.Context, olderThan time.Time) (int64, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// IdentityClient is the read-only identity registry collaborator.
type IdentityClient interface {
	GetByAccount(ctx context.Context, accountID string) (*domain.Identity, error)
}

// LedgerReader is the read surface of the ledger consumed by the
// enrichment path.
type LedgerReader interface {
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle for one shard.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ShardStore bundles the per-shard storage dependencies. One exists per
// physical shard; none of them are shared across shards.
type ShardStore struct {
	TxManager    TransactionManager
	Transactions TransactionRepository
	Outbox       OutboxRepository
}
