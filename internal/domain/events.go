package domain

import "time"

// Event types
const (
	EventTypeTransactionCompleted = "transaction.completed"
	EventTypeTransactionFailed    = "transaction.failed"
)

// OutboxEntry represents an event awaiting delivery to the message bus.
// It is created in the same database transaction as the Transaction it
// references and retired only after a confirmed broker acknowledgment.
type OutboxEntry struct {
	EntryID       string
	TransactionID string
	EventType     string
	ShardKey      string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// Published reports whether the entry has been acknowledged by the broker.
func (e *OutboxEntry) Published() bool {
	return e.PublishedAt != nil
}

// TransactionEvent is the wire payload published for every committed
// transaction. Consumers dedupe on TransactionID.
type TransactionEvent struct {
	TransactionID string    `json:"transaction_id"`
	AccountID     string    `json:"account_id"`
	Status        string    `json:"status"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}
