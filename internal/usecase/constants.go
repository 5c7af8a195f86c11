package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultMaxTransactionAmount is the per-transaction amount limit used
	// when no limit is configured (in decimal string)
	DefaultMaxTransactionAmount = "1000000" // 1 million

	// DefaultIdentityTimeout bounds the identity-registry call on the
	// enrichment path
	DefaultIdentityTimeout = 2 * time.Second
)
