package usecase

import (
	"context"
	"time"

	"github.com/dkosiv/shardpay/internal/domain"
)

// EnrichmentUseCase composes ledger records with identity data on the
// read path. The ledger read is mandatory; the identity lookup runs under
// a bounded budget and degrades instead of failing the request.
type EnrichmentUseCase struct {
	ledger          LedgerReader
	identity        IdentityClient
	identityTimeout time.Duration
}

// NewEnrichmentUseCase creates a new EnrichmentUseCase.
func NewEnrichmentUseCase(ledger LedgerReader, identity IdentityClient, identityTimeout time.Duration) *EnrichmentUseCase {
	if identityTimeout <= 0 {
		identityTimeout = DefaultIdentityTimeout
	}

	return &EnrichmentUseCase{
		ledger:          ledger,
		identity:        identity,
		identityTimeout: identityTimeout,
	}
}

// GetEnrichedTransaction returns the transaction record merged with the
// owning person's identity attributes. An identity-registry outage marks
// the identity fields unavailable; a transaction's existence and status
// are never hidden by it.
func (uc *EnrichmentUseCase) GetEnrichedTransaction(ctx context.Context, transactionID string) (*domain.EnrichedTransaction, error) {
	txn, err := uc.ledger.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	enriched := &domain.EnrichedTransaction{
		Transaction:    txn,
		IdentityStatus: domain.IdentityUnavailable,
	}

	identity, err := uc.lookupIdentity(ctx, txn.AccountID)
	if err == nil {
		enriched.Identity = identity
		enriched.IdentityStatus = domain.IdentityAvailable
	}

	return enriched, nil
}

// lookupIdentity calls the registry under its own deadline. The call runs
// in a goroutine so a registry that ignores cancellation cannot hold the
// request past its budget.
func (uc *EnrichmentUseCase) lookupIdentity(ctx context.Context, accountID string) (*domain.Identity, error) {
	idCtx, cancel := context.WithTimeout(ctx, uc.identityTimeout)
	defer cancel()

	type result struct {
		identity *domain.Identity
		err      error
	}

	ch := make(chan result, 1)
	go func() {
		identity, err := uc.identity.GetByAccount(idCtx, accountID)
		ch <- result{identity: identity, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, domain.ErrIdentityUnavailable
		}
		return res.identity, nil
	case <-idCtx.Done():
		return nil, domain.ErrIdentityUnavailable
	}
}
