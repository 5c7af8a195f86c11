package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dkosiv/shardpay/internal/adapter/http/dto"
	"github.com/dkosiv/shardpay/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnroutableKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrShardUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedCurrency):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSameAccount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingAccountID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingIdempotencyKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorKind labels a submission error for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnroutableKey):
		return "unroutable"
	case errors.Is(err, domain.ErrShardUnavailable):
		return "shard_unavailable"
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrMissingAccountID),
		errors.Is(err, domain.ErrMissingIdempotencyKey):
		return "validation"
	default:
		return "internal"
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
