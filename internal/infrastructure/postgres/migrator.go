package postgres

import (
	"errors"
	"fmt"

	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/dkosiv/shardpay/internal/sharding"
)

// RunMigrations runs database migrations against one shard.
func RunMigrations(databaseURL, migrationsPath string) error {
	m, err := migrate.New(
		"file://"+migrationsPath,
		databaseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("database migrations: no change")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database migrations: applied successfully")
	return nil
}

// MigrateShards applies migrations to every shard in the topology. Each
// shard carries the full schema; there are no cross-shard tables.
func MigrateShards(topology *sharding.Topology, migrationsPath string) error {
	for id, shard := range topology.Shards {
		if err := RunMigrations(shard.DatabaseURL, migrationsPath); err != nil {
			return fmt.Errorf("shard %s: %w", id, err)
		}
		slog.Info("shard migrated", slog.String("shard", id))
	}

	return nil
}

// RunMigrationsDown rolls back the last migration on one shard.
func RunMigrationsDown(databaseURL, migrationsPath string) error {
	m, err := migrate.New(
		"file://"+migrationsPath,
		databaseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	slog.Info("database migrations: rolled back successfully")
	return nil
}
