package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkosiv/shardpay/internal/adapter/http/dto"
	"github.com/dkosiv/shardpay/internal/domain"
	"github.com/dkosiv/shardpay/internal/infrastructure/metrics"
	"github.com/dkosiv/shardpay/internal/usecase"
)

// LedgerService defines the ledger operations the handler depends on.
type LedgerService interface {
	RecordTransaction(ctx context.Context, input usecase.SubmitTransactionInput) (*domain.Transaction, bool, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	ledgerUC LedgerService
	metrics  *metrics.Metrics
}

// NewTransactionHandler creates a new TransactionHandler. metrics may be
// nil in tests.
func NewTransactionHandler(ledgerUC LedgerService, m *metrics.Metrics) *TransactionHandler {
	return &TransactionHandler{ledgerUC: ledgerUC, metrics: m}
}

// Submit records a new transaction with 201. Resubmitting the same
// account and idempotency key returns the original record with 200.
func (h *TransactionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := req.ToUseCaseInput()
	txn, created, err := h.ledgerUC.RecordTransaction(r.Context(), input)
	if err != nil {
		if h.metrics != nil {
			h.metrics.SubmissionErrors.WithLabelValues(errorKind(err)).Inc()
		}
		status := mapDomainError(err)
		writeError(w, status, "failed to record transaction", err.Error())

		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	if h.metrics != nil {
		if created {
			h.metrics.TransactionsCreated.WithLabelValues(string(txn.Status)).Inc()
		} else {
			h.metrics.DuplicatesSuppressed.Inc()
		}
	}

	writeJSON(w, status, dto.TransactionFromDomain(txn))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.ledgerUC.GetTransaction(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// ListByAccount lists transactions for an account, newest first.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	txns, err := h.ledgerUC.ListByAccount(r.Context(), usecase.ListTransactionsInput{
		AccountID: accountID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list transactions", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}
