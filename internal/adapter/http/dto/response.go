package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dkosiv/shardpay/internal/domain"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                    string          `json:"id"`
	AccountID             string          `json:"account_id"`
	CounterpartyAccountID string          `json:"counterparty_account_id,omitempty"`
	IdempotencyKey        string          `json:"idempotency_key"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	Status                string          `json:"status"`
	FailureReason         string          `json:"failure_reason,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                    t.ID,
		AccountID:             t.AccountID,
		CounterpartyAccountID: t.CounterpartyAccountID,
		IdempotencyKey:        t.IdempotencyKey,
		Amount:                t.Amount,
		Currency:              t.Currency,
		Status:                string(t.Status),
		FailureReason:         t.FailureReason,
		CreatedAt:             t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// EnrichedTransactionResponse combines a transaction with identity data.
type EnrichedTransactionResponse struct {
	Transaction    *TransactionResponse `json:"transaction"`
	Identity       *IdentityResponse    `json:"identity,omitempty"`
	IdentityStatus string               `json:"identity_status"`
}

// IdentityResponse represents the account owner's identity attributes.
type IdentityResponse struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Country   string `json:"country"`
}

// EnrichedTransactionFromDomain converts an enriched read to a response.
func EnrichedTransactionFromDomain(e *domain.EnrichedTransaction) *EnrichedTransactionResponse {
	resp := &EnrichedTransactionResponse{
		Transaction:    TransactionFromDomain(e.Transaction),
		IdentityStatus: string(e.IdentityStatus),
	}
	if e.Identity != nil {
		resp.Identity = &IdentityResponse{
			UserID:    e.Identity.UserID,
			FirstName: e.Identity.FirstName,
			LastName:  e.Identity.LastName,
			Email:     e.Identity.Email,
			Country:   e.Identity.Country,
		}
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
