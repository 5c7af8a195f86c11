package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkosiv/shardpay/internal/domain"
)

func TestClientGetByAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/persons/by-account/acc-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id":"u1","first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","country":"GB"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	identity, err := client.GetByAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("GetByAccount failed: %v", err)
	}
	if identity.UserID != "u1" || identity.FirstName != "Ada" {
		t.Errorf("unexpected identity: %+v", identity)
	}
}

func TestClientGetByAccountNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	if _, err := client.GetByAccount(context.Background(), "acc-1"); !errors.Is(err, domain.ErrIdentityUnavailable) {
		t.Errorf("expected ErrIdentityUnavailable, got %v", err)
	}
}

func TestClientGetByAccountMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	if _, err := client.GetByAccount(context.Background(), "acc-1"); !errors.Is(err, domain.ErrIdentityUnavailable) {
		t.Errorf("expected ErrIdentityUnavailable, got %v", err)
	}
}

func TestClientGetByAccountTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, 20*time.Millisecond)

	if _, err := client.GetByAccount(context.Background(), "acc-1"); !errors.Is(err, domain.ErrIdentityUnavailable) {
		t.Errorf("expected ErrIdentityUnavailable, got %v", err)
	}
}

func TestClientGetByAccountConnectionRefused(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second)

	if _, err := client.GetByAccount(context.Background(), "acc-1"); !errors.Is(err, domain.ErrIdentityUnavailable) {
		t.Errorf("expected ErrIdentityUnavailable, got %v", err)
	}
}
