package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/dkosiv/shardpay/internal/domain"
	"github.com/dkosiv/shardpay/internal/usecase"
	"github.com/dkosiv/shardpay/internal/usecase/mocks"
)

func TestGetEnrichedTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txn := &domain.Transaction{ID: "txn-1", AccountID: "acc-1", Status: domain.StatusCompleted}

	ledger := mocks.NewMockLedgerReader(ctrl)
	ledger.EXPECT().GetTransaction(gomock.Any(), "txn-1").Return(txn, nil)

	identity := mocks.NewMockIdentityClient(ctrl)
	identity.EXPECT().GetByAccount(gomock.Any(), "acc-1").Return(&domain.Identity{
		UserID:    "user-1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Country:   "GB",
	}, nil)

	uc := usecase.NewEnrichmentUseCase(ledger, identity, time.Second)

	enriched, err := uc.GetEnrichedTransaction(context.Background(), "txn-1")
	if err != nil {
		t.Fatalf("GetEnrichedTransaction failed: %v", err)
	}

	if enriched.IdentityStatus != domain.IdentityAvailable {
		t.Errorf("expected identity available, got %s", enriched.IdentityStatus)
	}
	if enriched.Identity == nil || enriched.Identity.UserID != "user-1" {
		t.Errorf("unexpected identity: %+v", enriched.Identity)
	}
	if enriched.Transaction.ID != "txn-1" {
		t.Errorf("unexpected transaction: %+v", enriched.Transaction)
	}
}

func TestGetEnrichedTransactionDegradesOnIdentityFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txn := &domain.Transaction{ID: "txn-1", AccountID: "acc-1", Status: domain.StatusCompleted}

	ledger := mocks.NewMockLedgerReader(ctrl)
	ledger.EXPECT().GetTransaction(gomock.Any(), "txn-1").Return(txn, nil)

	identity := mocks.NewMockIdentityClient(ctrl)
	identity.EXPECT().GetByAccount(gomock.Any(), "acc-1").Return(nil, errors.New("registry down"))

	uc := usecase.NewEnrichmentUseCase(ledger, identity, time.Second)

	enriched, err := uc.GetEnrichedTransaction(context.Background(), "txn-1")
	if err != nil {
		t.Fatalf("identity outage must not fail the read: %v", err)
	}

	if enriched.IdentityStatus != domain.IdentityUnavailable {
		t.Errorf("expected identity unavailable, got %s", enriched.IdentityStatus)
	}
	if enriched.Identity != nil {
		t.Errorf("expected no identity, got %+v", enriched.Identity)
	}
	if enriched.Transaction.Status != domain.StatusCompleted {
		t.Errorf("ledger fields must survive degradation: %+v", enriched.Transaction)
	}
}

func TestGetEnrichedTransactionDegradesOnSlowIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	txn := &domain.Transaction{ID: "txn-1", AccountID: "acc-1"}

	ledger := mocks.NewMockLedgerReader(ctrl)
	ledger.EXPECT().GetTransaction(gomock.Any(), "txn-1").Return(txn, nil)

	// A registry that ignores cancellation and answers late.
	identity := mocks.NewMockIdentityClient(ctrl)
	identity.EXPECT().GetByAccount(gomock.Any(), "acc-1").DoAndReturn(
		func(ctx context.Context, accountID string) (*domain.Identity, error) {
			time.Sleep(200 * time.Millisecond)
			return &domain.Identity{UserID: "user-1"}, nil
		})

	uc := usecase.NewEnrichmentUseCase(ledger, identity, 20*time.Millisecond)

	start := time.Now()
	enriched, err := uc.GetEnrichedTransaction(context.Background(), "txn-1")
	if err != nil {
		t.Fatalf("slow identity must not fail the read: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("read waited %v, should return at the identity budget", elapsed)
	}
	if enriched.IdentityStatus != domain.IdentityUnavailable {
		t.Errorf("expected identity unavailable, got %s", enriched.IdentityStatus)
	}
}

func TestGetEnrichedTransactionNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerReader(ctrl)
	ledger.EXPECT().GetTransaction(gomock.Any(), "missing").Return(nil, domain.ErrTransactionNotFound)

	identity := mocks.NewMockIdentityClient(ctrl)

	uc := usecase.NewEnrichmentUseCase(ledger, identity, time.Second)

	if _, err := uc.GetEnrichedTransaction(context.Background(), "missing"); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
}
