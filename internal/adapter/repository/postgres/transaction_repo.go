package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/dkosiv/shardpay/internal/domain"
	"github.com/dkosiv/shardpay/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// TransactionRepository implements usecase.TransactionRepository for one
// shard.
type TransactionRepository struct {
	pool Pool
}

// NewTransactionRepository creates a new TransactionRepository over a
// shard's connection pool.
func NewTransactionRepository(pool Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a new transaction record within a database transaction.
// A unique-constraint conflict on (account_id, idempotency_key) maps to
// domain.ErrDuplicateKey.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `INSERT INTO transactions
		(id, idempotency_key, account_id, counterparty_account_id, amount, currency, status, failure_reason, shard_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := pgxTx.Exec(ctx, query,
		txn.ID, txn.IdempotencyKey, txn.AccountID, nullableText(txn.CounterpartyAccountID),
		txn.Amount.String(), txn.Currency, string(txn.Status), nullableText(txn.FailureReason),
		txn.ShardKey, txn.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateKey
		}
		return err
	}

	return nil
}

// UpdateStatus applies the terminal state transition within a database
// transaction.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, failureReason string) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `UPDATE transactions SET status = $1, failure_reason = $2 WHERE id = $3 AND status = 'pending'`

	tag, err := pgxTx.Exec(ctx, query, string(status), nullableText(failureReason), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// GetByID fetches a transaction by its id.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := selectTransaction + ` WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey fetches a transaction by its idempotency scope.
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, accountID, idempotencyKey string) (*domain.Transaction, error) {
	query := selectTransaction + ` WHERE account_id = $1 AND idempotency_key = $2`
	return scanTransaction(r.pool.QueryRow(ctx, query, accountID, idempotencyKey))
}

// ListByAccount lists transactions for an account, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	query := selectTransaction + ` WHERE account_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]*domain.Transaction, 0, limit)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

const selectTransaction = `SELECT id, idempotency_key, account_id, counterparty_account_id,
	amount::text, currency, status, failure_reason, shard_key, created_at
	FROM transactions`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn          domain.Transaction
		counterparty *string
		reason       *string
		amount       string
		status       string
		createdAt    time.Time
	)

	err := row.Scan(
		&txn.ID, &txn.IdempotencyKey, &txn.AccountID, &counterparty,
		&amount, &txn.Currency, &status, &reason, &txn.ShardKey, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	txn.Status = domain.TransactionStatus(status)
	txn.CreatedAt = createdAt
	if counterparty != nil {
		txn.CounterpartyAccountID = *counterparty
	}
	if reason != nil {
		txn.FailureReason = *reason
	}

	return &txn, nil
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}
