package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dkosiv/shardpay/internal/infrastructure/postgres"
	"github.com/dkosiv/shardpay/internal/sharding"
	"github.com/dkosiv/shardpay/internal/usecase"
)

// TestShard is one shard's database wired for integration tests.
type TestShard struct {
	ID   string
	Pool *pgxpool.Pool
}

// TestDB provides the sharded test environment. It requires SHARD0_URL
// (and optionally SHARD1_URL) to point at disposable PostgreSQL
// databases; tests skip when they are absent.
type TestDB struct {
	Shards []TestShard
	t      *testing.T
}

// NewTestDB connects to the configured shard databases and migrates
// them. Tests are skipped when no shard database is configured.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	urls := []string{}
	if url := os.Getenv("SHARD0_URL"); url != "" {
		urls = append(urls, url)
	}
	if url := os.Getenv("SHARD1_URL"); url != "" {
		urls = append(urls, url)
	}
	if len(urls) == 0 {
		t.Skip("SHARD0_URL not set, skipping integration test")
	}

	migrationsPath := "internal/infrastructure/postgres/migrations"
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		migrationsPath = "../../internal/infrastructure/postgres/migrations"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := &TestDB{t: t}
	for i, url := range urls {
		if err := postgres.RunMigrations(url, migrationsPath); err != nil {
			t.Fatalf("failed to migrate shard %d: %v", i, err)
		}

		pool, err := pgxpool.New(ctx, url)
		if err != nil {
			t.Fatalf("failed to connect to shard %d: %v", i, err)
		}
		if err := pool.Ping(ctx); err != nil {
			t.Fatalf("failed to ping shard %d: %v", i, err)
		}

		db.Shards = append(db.Shards, TestShard{
			ID:   shardID(i),
			Pool: pool,
		})
	}

	return db
}

func shardID(i int) string {
	return []string{"shard-0", "shard-1"}[i]
}

// Cleanup closes all shard connections.
func (db *TestDB) Cleanup() {
	for _, shard := range db.Shards {
		shard.Pool.Close()
	}
}

// TruncateAll removes all data from every shard.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	for _, shard := range db.Shards {
		_, err := shard.Pool.Exec(ctx, `
			TRUNCATE TABLE outbox_entries CASCADE;
			TRUNCATE TABLE transactions CASCADE;
		`)
		if err != nil {
			db.t.Fatalf("failed to truncate shard %s: %v", shard.ID, err)
		}
	}
}

// Topology builds a topology assigning all buckets round-robin across
// the connected shards. Bucket count stays small so tests can steer
// accounts onto specific shards.
func (db *TestDB) Topology() *sharding.Topology {
	db.t.Helper()

	shards := make([]sharding.Shard, len(db.Shards))
	for i, shard := range db.Shards {
		shards[i] = sharding.Shard{ID: shard.ID, DatabaseURL: "unused-in-tests"}
	}

	assignments := make(map[int]string, 8)
	for bucket := 0; bucket < 8; bucket++ {
		assignments[bucket] = db.Shards[bucket%len(db.Shards)].ID
	}

	topology, err := sharding.NewTopology(8, shards, assignments)
	if err != nil {
		db.t.Fatalf("failed to build test topology: %v", err)
	}
	return topology
}

// SubmitInput builds a valid submission for the given account.
func SubmitInput(accountID, idempotencyKey string, amount int64) usecase.SubmitTransactionInput {
	return usecase.SubmitTransactionInput{
		AccountID:      accountID,
		IdempotencyKey: idempotencyKey,
		Currency:       "USD",
		Amount:         decimal.NewFromInt(amount),
	}
}
