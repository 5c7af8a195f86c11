package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxAccountIDLength   = 64
	MaxIdempotencyKeyLen = 128
	MinTransactionAmount = "0.01"
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "TRY": true, "HKD": true, "PLN": true,
}

var accountIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateAccountID validates an account identifier.
func ValidateAccountID(id string) error {
	id = strings.TrimSpace(id)

	if id == "" {
		return ErrMissingAccountID
	}

	if len(id) > MaxAccountIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrMissingAccountID, MaxAccountIDLength)
	}

	if !accountIDRegex.MatchString(id) {
		return fmt.Errorf("%w: contains forbidden characters", ErrMissingAccountID)
	}

	return nil
}

// ValidateIdempotencyKey validates a client-supplied idempotency key.
func ValidateIdempotencyKey(key string) error {
	key = strings.TrimSpace(key)

	if key == "" {
		return ErrMissingIdempotencyKey
	}

	if len(key) > MaxIdempotencyKeyLen {
		return fmt.Errorf("%w: exceeds %d characters", ErrMissingIdempotencyKey, MaxIdempotencyKeyLen)
	}

	return nil
}

// ValidateCurrency validates a currency code.
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrUnsupportedCurrency, currency)
	}

	return nil
}

// ValidateAmount validates a transaction amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount, _ := decimal.NewFromString(MinTransactionAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrInvalidAmount, MinTransactionAmount)
	}

	return nil
}
