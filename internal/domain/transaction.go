package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// IsTerminal reports whether the status is final. Terminal records are
// append-only and never mutated again.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Transaction represents a single money-movement record on its owning shard.
// (AccountID, IdempotencyKey) is unique within a shard for the lifetime of
// the record.
type Transaction struct {
	CreatedAt             time.Time
	ID                    string
	IdempotencyKey        string
	AccountID             string
	CounterpartyAccountID string
	Currency              string
	Status                TransactionStatus
	FailureReason         string
	ShardKey              string
	Amount                decimal.Decimal
}

// Failed reports whether the transaction was rejected by a business rule.
// A failed transaction is still a definitive result, not an error.
func (t *Transaction) Failed() bool {
	return t.Status == StatusFailed
}
