package dto

import (
	"github.com/shopspring/decimal"

	"github.com/dkosiv/shardpay/internal/usecase"
)

// SubmitTransactionRequest represents a request to record a transaction.
type SubmitTransactionRequest struct {
	AccountID             string          `json:"account_id"`
	CounterpartyAccountID string          `json:"counterparty_account_id,omitempty"`
	IdempotencyKey        string          `json:"idempotency_key"`
	Currency              string          `json:"currency"`
	Amount                decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitTransactionRequest) ToUseCaseInput() usecase.SubmitTransactionInput {
	return usecase.SubmitTransactionInput{
		AccountID:             r.AccountID,
		CounterpartyAccountID: r.CounterpartyAccountID,
		IdempotencyKey:        r.IdempotencyKey,
		Currency:              r.Currency,
		Amount:                r.Amount,
	}
}
