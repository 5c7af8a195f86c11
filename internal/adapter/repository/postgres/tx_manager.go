package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dkosiv/shardpay/internal/domain"
	"github.com/dkosiv/shardpay/internal/usecase"
)

// TxManager implements usecase.TransactionManager for one shard.
type TxManager struct {
	pool Pool
}

// NewTxManager creates a new TxManager over a shard's connection pool.
func NewTxManager(pool Pool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction. A unique-constraint conflict surfacing
// at commit time maps to domain.ErrDuplicateKey.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateKey
		}
		return err
	}

	return nil
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
