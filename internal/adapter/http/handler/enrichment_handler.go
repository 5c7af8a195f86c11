package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dkosiv/shardpay/internal/adapter/http/dto"
	"github.com/dkosiv/shardpay/internal/domain"
	"github.com/dkosiv/shardpay/internal/infrastructure/metrics"
)

// EnrichmentService defines the enriched-read operation the handler
// depends on.
type EnrichmentService interface {
	GetEnrichedTransaction(ctx context.Context, transactionID string) (*domain.EnrichedTransaction, error)
}

// EnrichmentHandler serves transaction reads enriched with identity data.
type EnrichmentHandler struct {
	enrichmentUC EnrichmentService
	metrics      *metrics.Metrics
}

// NewEnrichmentHandler creates a new EnrichmentHandler. metrics may be
// nil in tests.
func NewEnrichmentHandler(enrichmentUC EnrichmentService, m *metrics.Metrics) *EnrichmentHandler {
	return &EnrichmentHandler{enrichmentUC: enrichmentUC, metrics: m}
}

// Get returns a transaction merged with the account owner's identity.
// Identity fields are omitted, not errored, when the registry is down.
func (h *EnrichmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	enriched, err := h.enrichmentUC.GetEnrichedTransaction(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get enriched transaction", err.Error())

		return
	}

	if h.metrics != nil {
		h.metrics.IdentityLookups.WithLabelValues(string(enriched.IdentityStatus)).Inc()
		if enriched.IdentityStatus == domain.IdentityUnavailable {
			h.metrics.IdentityDegraded.Inc()
		}
	}

	writeJSON(w, http.StatusOK, dto.EnrichedTransactionFromDomain(enriched))
}
