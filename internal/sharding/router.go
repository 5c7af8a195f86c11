package sharding

import (
	"fmt"
	"hash/fnv"

	"github.com/dkosiv/shardpay/internal/domain"
)

// Router maps account keys to physical shards. Resolution is a pure
// function over the immutable topology: the same account id always
// resolves to the same shard for the process lifetime.
type Router struct {
	topology *Topology
}

// NewRouter creates a Router over a loaded topology.
func NewRouter(topology *Topology) *Router {
	return &Router{topology: topology}
}

// Resolve returns the shard id owning the given account. Account keys
// that fail validation or land on an unassigned bucket are rejected with
// domain.ErrUnroutableKey, never defaulted to a shard.
func (r *Router) Resolve(accountID string) (string, error) {
	if err := domain.ValidateAccountID(accountID); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrUnroutableKey, accountID)
	}

	bucket := r.Bucket(accountID)

	shardID, ok := r.topology.shardFor(bucket)
	if !ok {
		return "", fmt.Errorf("%w: bucket %d has no shard assigned", domain.ErrUnroutableKey, bucket)
	}

	return shardID, nil
}

// Bucket returns the hash bucket for an account id.
func (r *Router) Bucket(accountID string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(accountID))
	return int(h.Sum64() % uint64(r.topology.Buckets))
}
