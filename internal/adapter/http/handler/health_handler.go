package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	pools       map[string]*pgxpool.Pool
	redisClient *redis.Client
}

// NewHealthHandler creates a new HealthHandler. pools is keyed by shard ID.
func NewHealthHandler(pools map[string]*pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		pools:       pools,
		redisClient: redisClient,
	}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if every shard and the cache answer a ping.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	shards := make(map[string]string, len(h.pools))
	healthy := true
	for shardID, pool := range h.pools {
		if err := pool.Ping(ctx); err != nil {
			shards[shardID] = err.Error()
			healthy = false

			continue
		}
		shards[shardID] = "ok"
	}

	redisStatus := "ok"
	if h.redisClient != nil {
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			redisStatus = err.Error()
			healthy = false
		}
	}

	status := http.StatusOK
	body := map[string]any{
		"status": "ready",
		"shards": shards,
		"redis":  redisStatus,
	}
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}

	writeJSON(w, status, body)
}
