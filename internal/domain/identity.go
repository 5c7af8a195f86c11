package domain

// IdentityStatus indicates whether identity data could be resolved for an
// enriched read.
type IdentityStatus string

const (
	IdentityAvailable   IdentityStatus = "available"
	IdentityUnavailable IdentityStatus = "unavailable"
)

// Identity holds person attributes for the owner of an account, as served
// by the identity registry.
type Identity struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Country   string `json:"country"`
}

// EnrichedTransaction is a transaction record combined with identity data.
// Identity is nil when IdentityStatus is IdentityUnavailable; the ledger
// fields are always populated.
type EnrichedTransaction struct {
	Transaction    *Transaction
	Identity       *Identity
	IdentityStatus IdentityStatus
}
