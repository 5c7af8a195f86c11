package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dkosiv/shardpay/internal/domain"
	"github.com/dkosiv/shardpay/internal/sharding"
)

// LedgerUseCase handles transaction recording and reads across shards.
type LedgerUseCase struct {
	router    *sharding.Router
	stores    map[string]ShardStore
	idGen     IDGenerator
	retrier   Retrier
	maxAmount decimal.Decimal
}

// NewLedgerUseCase creates a new LedgerUseCase. maxAmount is the
// per-transaction business limit; submissions above it are recorded as
// failed, not rejected as errors.
func NewLedgerUseCase(
	router *sharding.Router,
	stores map[string]ShardStore,
	idGen IDGenerator,
	maxAmount decimal.Decimal,
) *LedgerUseCase {
	if maxAmount.LessThanOrEqual(decimal.Zero) {
		maxAmount, _ = decimal.NewFromString(DefaultMaxTransactionAmount)
	}

	return &LedgerUseCase{
		router:    router,
		stores:    stores,
		idGen:     idGen,
		maxAmount: maxAmount,
	}
}

// SubmitTransactionInput represents an inbound transaction submission.
type SubmitTransactionInput struct {
	AccountID             string
	CounterpartyAccountID string
	IdempotencyKey        string
	Currency              string
	Amount                decimal.Decimal
}

// WithRetrier configures retry on transient storage conflicts. Safe for
// the write path: a retried submission carries the same idempotency key.
func (uc *LedgerUseCase) WithRetrier(retrier Retrier) *LedgerUseCase {
	uc.retrier = retrier
	return uc
}

// RecordTransaction persists a transaction and its outbox entry in one
// atomic unit on the shard owning the account. Resubmitting the same
// (accountID, idempotencyKey) pair returns the original record unchanged
// with created=false.
func (uc *LedgerUseCase) RecordTransaction(ctx context.Context, input SubmitTransactionInput) (*domain.Transaction, bool, error) {
	if uc.retrier == nil {
		return uc.recordTransaction(ctx, input)
	}

	var (
		txn     *domain.Transaction
		created bool
	)
	err := uc.retrier.Retry(ctx, func() error {
		var innerErr error
		txn, created, innerErr = uc.recordTransaction(ctx, input)
		return innerErr
	})

	return txn, created, err
}

func (uc *LedgerUseCase) recordTransaction(ctx context.Context, input SubmitTransactionInput) (*domain.Transaction, bool, error) {
	input = normalizeSubmission(input)

	if err := validateSubmission(input); err != nil {
		return nil, false, err
	}

	store, err := uc.storeFor(input.AccountID)
	if err != nil {
		return nil, false, err
	}

	// Bound the whole read-check-commit unit so a wedged shard cannot
	// hold locks indefinitely.
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	// Read-before-write: avoids burning a conflict error on the common
	// retry case. The unique index remains the authority under races.
	existing, err := store.Transactions.GetByIdempotencyKey(ctx, input.AccountID, input.IdempotencyKey)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, false, shardUnavailable(err)
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:                    uc.idGen.Generate(),
		IdempotencyKey:        input.IdempotencyKey,
		AccountID:             input.AccountID,
		CounterpartyAccountID: input.CounterpartyAccountID,
		Amount:                input.Amount,
		Currency:              input.Currency,
		Status:                domain.StatusPending,
		ShardKey:              input.AccountID,
		CreatedAt:             now,
	}

	tx, err := store.TxManager.Begin(ctx)
	if err != nil {
		return nil, false, shardUnavailable(err)
	}
	defer tx.Rollback(ctx)

	if err := store.Transactions.Create(ctx, tx, txn); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return uc.resolveDuplicate(ctx, store, tx, input)
		}
		return nil, false, shardUnavailable(err)
	}

	status, reason := uc.applyBusinessRules(txn)
	if err := store.Transactions.UpdateStatus(ctx, tx, txn.ID, status, reason); err != nil {
		return nil, false, shardUnavailable(err)
	}
	txn.Status = status
	txn.FailureReason = reason

	entry, err := buildOutboxEntry(uc.idGen.Generate(), txn, now)
	if err != nil {
		return nil, false, err
	}
	if err := store.Outbox.Create(ctx, tx, entry); err != nil {
		return nil, false, shardUnavailable(err)
	}

	if err := tx.Commit(ctx); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return uc.resolveDuplicate(ctx, store, tx, input)
		}
		return nil, false, shardUnavailable(err)
	}

	return txn, true, nil
}

// GetTransaction looks a record up by id across all shards concurrently.
// Each lookup runs independently: a failing shard must not cancel the
// query that is about to find the record on a healthy one.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	lookupCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		found    *domain.Transaction
		shardErr error
	)

	for _, store := range uc.stores {
		store := store
		wg.Add(1)
		go func() {
			defer wg.Done()

			txn, err := store.Transactions.GetByID(lookupCtx, id)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				if found == nil {
					found = txn
					// At most one shard holds the id; stop the rest.
					cancel()
				}
			case !errors.Is(err, domain.ErrTransactionNotFound):
				if shardErr == nil {
					shardErr = shardUnavailable(err)
				}
			}
		}()
	}

	wg.Wait()

	// A hit wins even when another shard was unreachable.
	if found != nil {
		return found, nil
	}
	if shardErr != nil {
		return nil, shardErr
	}

	return nil, domain.ErrTransactionNotFound
}

// ListTransactionsInput represents input for listing account history.
type ListTransactionsInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListByAccount lists transactions for an account, newest first. Routed
// to the owning shard only.
func (uc *LedgerUseCase) ListByAccount(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	store, err := uc.storeFor(input.AccountID)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	txns, err := store.Transactions.ListByAccount(ctx, input.AccountID, limit, offset)
	if err != nil {
		return nil, shardUnavailable(err)
	}

	return txns, nil
}

func (uc *LedgerUseCase) storeFor(accountID string) (ShardStore, error) {
	shardID, err := uc.router.Resolve(accountID)
	if err != nil {
		return ShardStore{}, err
	}

	store, ok := uc.stores[shardID]
	if !ok {
		return ShardStore{}, fmt.Errorf("%w: no store for shard %s", domain.ErrUnroutableKey, shardID)
	}

	return store, nil
}

// resolveDuplicate handles losing the insert race: another writer owns the
// row, so roll back and return the winner's record.
func (uc *LedgerUseCase) resolveDuplicate(ctx context.Context, store ShardStore, tx Transaction, input SubmitTransactionInput) (*domain.Transaction, bool, error) {
	_ = tx.Rollback(ctx)

	winner, err := store.Transactions.GetByIdempotencyKey(ctx, input.AccountID, input.IdempotencyKey)
	if err != nil {
		return nil, false, shardUnavailable(err)
	}

	return winner, false, nil
}

// applyBusinessRules decides the terminal status for a pending record.
// Runs inside the commit boundary and must not perform external I/O.
func (uc *LedgerUseCase) applyBusinessRules(txn *domain.Transaction) (domain.TransactionStatus, string) {
	if txn.Amount.GreaterThan(uc.maxAmount) {
		return domain.StatusFailed, fmt.Sprintf("amount exceeds per-transaction limit of %s", uc.maxAmount)
	}

	return domain.StatusCompleted, ""
}

// normalizeSubmission canonicalizes the caller-supplied fields so the
// persisted and published record never carries a lowercase currency or
// padded identifiers that validation would have tolerated.
func normalizeSubmission(input SubmitTransactionInput) SubmitTransactionInput {
	input.AccountID = strings.TrimSpace(input.AccountID)
	input.CounterpartyAccountID = strings.TrimSpace(input.CounterpartyAccountID)
	input.IdempotencyKey = strings.TrimSpace(input.IdempotencyKey)
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))

	return input
}

func validateSubmission(input SubmitTransactionInput) error {
	if err := domain.ValidateAccountID(input.AccountID); err != nil {
		return err
	}
	if err := domain.ValidateIdempotencyKey(input.IdempotencyKey); err != nil {
		return err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return err
	}
	if input.CounterpartyAccountID != "" {
		if err := domain.ValidateAccountID(input.CounterpartyAccountID); err != nil {
			return err
		}
		if input.CounterpartyAccountID == input.AccountID {
			return domain.ErrSameAccount
		}
	}

	return nil
}

func buildOutboxEntry(entryID string, txn *domain.Transaction, now time.Time) (*domain.OutboxEntry, error) {
	payload, err := json.Marshal(domain.TransactionEvent{
		TransactionID: txn.ID,
		AccountID:     txn.AccountID,
		Status:        string(txn.Status),
		Amount:        txn.Amount.String(),
		Currency:      txn.Currency,
		OccurredAt:    now,
	})
	if err != nil {
		return nil, err
	}

	eventType := domain.EventTypeTransactionCompleted
	if txn.Failed() {
		eventType = domain.EventTypeTransactionFailed
	}

	return &domain.OutboxEntry{
		EntryID:       entryID,
		TransactionID: txn.ID,
		EventType:     eventType,
		ShardKey:      txn.ShardKey,
		Payload:       payload,
		CreatedAt:     now,
	}, nil
}

// shardUnavailable classifies a storage error as transient while keeping
// the driver error in the chain so the retrier can inspect it.
func shardUnavailable(err error) error {
	if errors.Is(err, domain.ErrShardUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrShardUnavailable, err)
}
