package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dkosiv/shardpay/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareRecordsRequests(t *testing.T) {
	m := metrics.NewWith(prometheus.NewRegistry())
	handler := NewMetricsMiddleware(m).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/v1/transactions", "201"))
	if got != 1 {
		t.Errorf("expected 1 recorded request, got %f", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/transactions/01HTEST", "/api/v1/transactions/:id"},
		{"/api/v1/transactions/01HTEST/enriched", "/api/v1/transactions/:id/enriched"},
		{"/api/v1/accounts/acc-1/transactions", "/api/v1/accounts/:id/transactions"},
		{"/api/v1/transactions/", "/api/v1/transactions/"},
		{"/health", "/health"},
		{"/metrics", "/metrics"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
