package domain

import "errors"

var (
	// Validation errors (non-retryable, surfaced to the caller)
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrUnsupportedCurrency   = errors.New("unsupported currency code")
	ErrSameAccount           = errors.New("counterparty must differ from account")
	ErrMissingAccountID      = errors.New("account id is required")
	ErrMissingIdempotencyKey = errors.New("idempotency key is required")

	// ErrUnroutableKey means the account key does not map to any assigned
	// shard. This is a configuration problem, never defaulted around.
	ErrUnroutableKey = errors.New("account key does not route to a shard")

	// ErrShardUnavailable wraps transient storage failures. Callers may
	// retry with the same idempotency key.
	ErrShardUnavailable = errors.New("shard unavailable")

	// ErrTransactionNotFound is returned when no shard holds the record.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateKey reports a unique-constraint conflict on
	// (account_id, idempotency_key). Never surfaced to callers: the write
	// path collapses it into returning the winner's record.
	ErrDuplicateKey = errors.New("duplicate idempotency key")

	// ErrIdentityUnavailable signals that the identity registry could not
	// be reached within budget. Internal to the enrichment path; reads
	// degrade instead of failing.
	ErrIdentityUnavailable = errors.New("identity registry unavailable")
)
