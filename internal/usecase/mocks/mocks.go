package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dkosiv/shardpay/internal/domain"
	"github.com/dkosiv/shardpay/internal/usecase"
	"github.com/oklog/ulid/v2"
)

// MockTransactionRepository is a mock implementation of
// TransactionRepository backed by an in-memory map.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.Transaction

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	UpdateStatusFunc        func(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, failureReason string) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIdempotencyKeyFunc func(ctx context.Context, accountID, idempotencyKey string) (*domain.Transaction, error)
	ListByAccountFunc       func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txns: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.txns {
		if existing.AccountID == txn.AccountID && existing.IdempotencyKey == txn.IdempotencyKey {
			return domain.ErrDuplicateKey
		}
	}
	cp := *txn
	m.txns[txn.ID] = &cp
	return nil
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, failureReason string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, failureReason)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.txns[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	txn.Status = status
	txn.FailureReason = failureReason
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if txn, ok := m.txns[id]; ok {
		cp := *txn
		return &cp, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIdempotencyKey(ctx context.Context, accountID, idempotencyKey string) (*domain.Transaction, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, accountID, idempotencyKey)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, txn := range m.txns {
		if txn.AccountID == accountID && txn.IdempotencyKey == idempotencyKey {
			cp := *txn
			return &cp, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Transaction
	for _, txn := range m.txns {
		if txn.AccountID == accountID {
			cp := *txn
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.OutboxEntry

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, entry *domain.OutboxEntry) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEntry, error)
	MarkPublishedFunc   func(ctx context.Context, entryID string, publishedAt time.Time) error
	CountStaleFunc      func(ctx context.Context, olderThan time.Time) (int64, error)
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{
		entries: make(map[string]*domain.OutboxEntry),
	}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.OutboxEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries[entry.EntryID] = &cp
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEntry, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.OutboxEntry
	for _, entry := range m.entries {
		if entry.PublishedAt == nil {
			cp := *entry
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].EntryID < result[j].EntryID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, entryID string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, entryID, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[entryID]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	if entry.PublishedAt == nil {
		entry.PublishedAt = &publishedAt
	}
	return nil
}

func (m *MockOutboxRepository) CountStale(ctx context.Context, olderThan time.Time) (int64, error) {
	if m.CountStaleFunc != nil {
		return m.CountStaleFunc(ctx, olderThan)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, entry := range m.entries {
		if entry.PublishedAt == nil && entry.CreatedAt.Before(olderThan) {
			count++
		}
	}
	return count, nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entry := range m.entries {
		if entry.PublishedAt != nil && entry.PublishedAt.Before(before) {
			delete(m.entries, id)
		}
	}
	return nil
}

// Unpublished returns a snapshot of current unpublished entries.
func (m *MockOutboxRepository) Unpublished() []*domain.OutboxEntry {
	entries, _ := m.GetUnpublished(context.Background(), len(m.entries))
	return entries
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	return ulid.Make().String()
}

// MockRetrier is a mock implementation of Retrier that runs the
// operation exactly once.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
