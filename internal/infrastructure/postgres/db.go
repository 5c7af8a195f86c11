package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkosiv/shardpay/internal/sharding"
)

// NewPool creates a new PostgreSQL connection pool for one shard.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// NewShardPools opens one connection pool per shard in the topology.
// Pools are never shared across shards; a stuck shard must not stall
// traffic to the others.
func NewShardPools(ctx context.Context, topology *sharding.Topology, maxConns, minConns int) (map[string]*pgxpool.Pool, error) {
	pools := make(map[string]*pgxpool.Pool, len(topology.Shards))

	for id, shard := range topology.Shards {
		pool, err := NewPool(ctx, shard.DatabaseURL, maxConns, minConns)
		if err != nil {
			for _, p := range pools {
				p.Close()
			}
			return nil, fmt.Errorf("shard %s: %w", id, err)
		}
		pools[id] = pool
	}

	return pools, nil
}

// ClosePools closes every shard pool.
func ClosePools(pools map[string]*pgxpool.Pool) {
	for _, pool := range pools {
		pool.Close()
	}
}
