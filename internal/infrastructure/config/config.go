package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Sharding
	ShardTopologyPath string `env:"SHARD_TOPOLOGY_PATH" envDefault:"shards.yaml"`

	// Database (applies to every shard pool)
	DatabaseMaxConns int           `env:"DATABASE_MAX_CONNS" envDefault:"25"`
	DatabaseMinConns int           `env:"DATABASE_MIN_CONNS" envDefault:"5"`
	DatabaseTimeout  time.Duration `env:"DATABASE_TIMEOUT"   envDefault:"30s"`
	MigrationsPath   string        `env:"MIGRATIONS_PATH"    envDefault:"internal/infrastructure/postgres/migrations"`

	// Redis
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// Identity registry
	IdentityBaseURL  string        `env:"IDENTITY_BASE_URL"  envDefault:"http://localhost:8081"`
	IdentityTimeout  time.Duration `env:"IDENTITY_TIMEOUT"   envDefault:"2s"`
	IdentityCacheTTL time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"5m"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	KafkaTopic   string   `env:"KAFKA_TOPIC"   envDefault:"shardpay.transactions"`

	// Outbox publisher
	OutboxBatchSize      int           `env:"OUTBOX_BATCH_SIZE"      envDefault:"100"`
	OutboxInterval       time.Duration `env:"OUTBOX_INTERVAL"        envDefault:"5s"`
	OutboxStaleThreshold time.Duration `env:"OUTBOX_STALE_THRESHOLD" envDefault:"10m"`
	OutboxRetention      time.Duration `env:"OUTBOX_RETENTION"       envDefault:"24h"`

	// Business rules
	MaxTransactionAmount string `env:"MAX_TRANSACTION_AMOUNT" envDefault:"1000000"`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"50"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
