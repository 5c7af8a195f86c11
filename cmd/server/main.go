package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/dkosiv/shardpay/internal/adapter/http"
	"github.com/dkosiv/shardpay/internal/adapter/http/handler"
	"github.com/dkosiv/shardpay/internal/adapter/http/middleware"
	"github.com/dkosiv/shardpay/internal/adapter/identity"
	postgresRepo "github.com/dkosiv/shardpay/internal/adapter/repository/postgres"
	redisRepo "github.com/dkosiv/shardpay/internal/adapter/repository/redis"
	"github.com/dkosiv/shardpay/internal/infrastructure/config"
	"github.com/dkosiv/shardpay/internal/infrastructure/eventpublisher"
	"github.com/dkosiv/shardpay/internal/infrastructure/kafka"
	"github.com/dkosiv/shardpay/internal/infrastructure/logger"
	"github.com/dkosiv/shardpay/internal/infrastructure/metrics"
	"github.com/dkosiv/shardpay/internal/infrastructure/postgres"
	"github.com/dkosiv/shardpay/internal/infrastructure/redis"
	"github.com/dkosiv/shardpay/internal/sharding"
	"github.com/dkosiv/shardpay/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	zlog := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = zlog

	// Load shard topology
	topology, err := sharding.LoadTopology(cfg.ShardTopologyPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ShardTopologyPath).Msg("failed to load shard topology")
	}
	router := sharding.NewRouter(topology)
	log.Info().Int("shards", len(topology.ShardIDs())).Msg("shard topology loaded")

	ctx := context.Background()

	// Run migrations on every shard
	if err := postgres.MigrateShards(topology, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate shards")
	}

	// Connect to every shard
	pools, err := postgres.NewShardPools(ctx, topology, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to shards")
	}
	defer postgres.ClosePools(pools)
	log.Info().Msg("connected to all shards")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics
	m := metrics.New()

	// Per-shard stores
	idGen := postgresRepo.NewULIDGenerator()
	stores := make(map[string]usecase.ShardStore, len(pools))
	for shardID, pool := range pools {
		stores[shardID] = usecase.ShardStore{
			TxManager:    postgresRepo.NewTxManager(pool),
			Transactions: postgresRepo.NewTransactionRepository(pool),
			Outbox:       postgresRepo.NewOutboxRepository(pool),
		}
	}

	// Use cases
	maxAmount, err := decimal.NewFromString(cfg.MaxTransactionAmount)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid MAX_TRANSACTION_AMOUNT")
	}
	ledgerUC := usecase.NewLedgerUseCase(router, stores, idGen, maxAmount).
		WithRetrier(postgresRepo.NewRetrier())

	identityClient := identity.NewClient(cfg.IdentityBaseURL, cfg.IdentityTimeout)
	cachedIdentity := identity.NewCachedClient(
		identityClient,
		redisRepo.NewCache(redisClient, "identity"),
		cfg.IdentityCacheTTL,
	)
	enrichmentUC := usecase.NewEnrichmentUseCase(ledgerUC, cachedIdentity, cfg.IdentityTimeout)

	// One outbox drain loop per shard
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Kafka publisher, shared by all shards; the message key keeps
	// per-account partition ordering. Without brokers configured events
	// are only logged, which is enough for local development.
	var busPublisher eventpublisher.Publisher
	if len(cfg.KafkaBrokers) == 0 || cfg.KafkaBrokers[0] == "" {
		log.Warn().Msg("no kafka brokers configured, events will only be logged")
		busPublisher = eventpublisher.NewLogPublisher(slogger)
	} else {
		kafkaPublisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		busPublisher = kafkaPublisher
	}
	publishers := make([]*eventpublisher.EventPublisher, 0, len(stores))
	for shardID, store := range stores {
		publishers = append(publishers, eventpublisher.NewEventPublisher(eventpublisher.Config{
			ShardID:        shardID,
			OutboxRepo:     store.Outbox,
			Publisher:      busPublisher,
			Metrics:        m,
			Logger:         slogger,
			BatchSize:      cfg.OutboxBatchSize,
			Interval:       cfg.OutboxInterval,
			StaleThreshold: cfg.OutboxStaleThreshold,
			Retention:      cfg.OutboxRetention,
		}))
	}
	fleet := eventpublisher.NewFleet(publishers...)

	fleetCtx, stopFleet := context.WithCancel(ctx)
	defer stopFleet()
	go func() {
		if err := fleet.Start(fleetCtx); err != nil && fleetCtx.Err() == nil {
			log.Error().Err(err).Msg("outbox publisher fleet stopped")
		}
	}()

	// Handlers and router
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rateLimiter.Janitor(fleetCtx, time.Hour)

	httpRouter := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(ledgerUC, m),
		EnrichmentHandler:  handler.NewEnrichmentHandler(enrichmentUC, m),
		HealthHandler:      handler.NewHealthHandler(pools, redisClient),
		Metrics:            m,
		RateLimiter:        rateLimiter,
		Logger:             zlog,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpRouter,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	// Stop the drain loops after the API so in-flight writes still get
	// their outbox entries picked up on the next start.
	stopFleet()

	log.Info().Msg("server stopped")
}
