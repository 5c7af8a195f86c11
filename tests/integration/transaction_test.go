package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	postgresRepo "github.com/dkosiv/shardpay/internal/adapter/repository/postgres"
	"github.com/dkosiv/shardpay/internal/domain"
	"github.com/dkosiv/shardpay/internal/sharding"
	"github.com/dkosiv/shardpay/internal/usecase"
	"github.com/dkosiv/shardpay/tests/testutil"
)

func newLedger(t *testing.T, db *testutil.TestDB) (*usecase.LedgerUseCase, map[string]usecase.ShardStore) {
	t.Helper()

	stores := make(map[string]usecase.ShardStore, len(db.Shards))
	for _, shard := range db.Shards {
		stores[shard.ID] = usecase.ShardStore{
			TxManager:    postgresRepo.NewTxManager(shard.Pool),
			Transactions: postgresRepo.NewTransactionRepository(shard.Pool),
			Outbox:       postgresRepo.NewOutboxRepository(shard.Pool),
		}
	}

	uc := usecase.NewLedgerUseCase(
		sharding.NewRouter(db.Topology()),
		stores,
		postgresRepo.NewULIDGenerator(),
		decimal.NewFromInt(10000),
	).WithRetrier(postgresRepo.NewRetrier())

	return uc, stores
}

func TestTransactionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	db := testutil.NewTestDB(t)
	defer db.Cleanup()
	db.TruncateAll(ctx)

	uc, _ := newLedger(t, db)

	txn, created, err := uc.RecordTransaction(ctx, testutil.SubmitInput("acc-1", "order-1", 250))
	if err != nil {
		t.Fatalf("failed to record transaction: %v", err)
	}
	if txn.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s", txn.Status)
	}
	if !created {
		t.Error("fresh submission must report created")
	}

	fetched, err := uc.GetTransaction(ctx, txn.ID)
	if err != nil {
		t.Fatalf("failed to fetch transaction: %v", err)
	}
	if fetched.ID != txn.ID || !fetched.Amount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("fetched record mismatch: %+v", fetched)
	}

	listed, err := uc.ListByAccount(ctx, usecase.ListTransactionsInput{AccountID: "acc-1"})
	if err != nil {
		t.Fatalf("failed to list transactions: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("expected one transaction, got %d", len(listed))
	}
}

func TestIdempotentResubmission(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	db := testutil.NewTestDB(t)
	defer db.Cleanup()
	db.TruncateAll(ctx)

	uc, _ := newLedger(t, db)

	first, created, err := uc.RecordTransaction(ctx, testutil.SubmitInput("acc-1", "order-1", 100))
	if err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
	if !created {
		t.Error("first submission must report created")
	}

	second, created, err := uc.RecordTransaction(ctx, testutil.SubmitInput("acc-1", "order-1", 100))
	if err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
	if created {
		t.Error("resubmission must not report created")
	}
	if second.ID != first.ID {
		t.Errorf("resubmission created a new record: %s vs %s", second.ID, first.ID)
	}

	listed, err := uc.ListByAccount(ctx, usecase.ListTransactionsInput{AccountID: "acc-1"})
	if err != nil {
		t.Fatalf("failed to list transactions: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("expected exactly one record, got %d", len(listed))
	}
}

func TestConcurrentDuplicateSubmissions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	db := testutil.NewTestDB(t)
	defer db.Cleanup()
	db.TruncateAll(ctx)

	uc, _ := newLedger(t, db)

	const workers = 10
	results := make([]*domain.Transaction, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, errs[i] = uc.RecordTransaction(ctx, testutil.SubmitInput("acc-race", "order-race", 50))
		}(i)
	}
	wg.Wait()

	var winnerID string
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d failed: %v", i, errs[i])
		}
		if winnerID == "" {
			winnerID = results[i].ID
		}
		if results[i].ID != winnerID {
			t.Errorf("worker %d got a different record: %s vs %s", i, results[i].ID, winnerID)
		}
	}

	listed, err := uc.ListByAccount(ctx, usecase.ListTransactionsInput{AccountID: "acc-race"})
	if err != nil {
		t.Fatalf("failed to list transactions: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("expected exactly one committed record, got %d", len(listed))
	}
}

func TestSameKeyDifferentAccounts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	db := testutil.NewTestDB(t)
	defer db.Cleanup()
	db.TruncateAll(ctx)

	uc, _ := newLedger(t, db)

	first, _, err := uc.RecordTransaction(ctx, testutil.SubmitInput("acc-a", "shared-key", 10))
	if err != nil {
		t.Fatalf("submission for acc-a failed: %v", err)
	}
	second, _, err := uc.RecordTransaction(ctx, testutil.SubmitInput("acc-b", "shared-key", 20))
	if err != nil {
		t.Fatalf("submission for acc-b failed: %v", err)
	}

	// The idempotency scope is per account, not global.
	if first.ID == second.ID {
		t.Error("distinct accounts must get distinct records for the same key")
	}
}

func TestOverLimitRecordedAsFailed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	db := testutil.NewTestDB(t)
	defer db.Cleanup()
	db.TruncateAll(ctx)

	uc, _ := newLedger(t, db)

	txn, _, err := uc.RecordTransaction(ctx, testutil.SubmitInput("acc-1", "big-order", 10001))
	if err != nil {
		t.Fatalf("over-limit submission must be recorded: %v", err)
	}
	if txn.Status != domain.StatusFailed {
		t.Errorf("expected failed, got %s", txn.Status)
	}
	if txn.FailureReason == "" {
		t.Error("expected a failure reason")
	}
}
