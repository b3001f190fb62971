package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// ConnectRedis is optional: without a URL, or when the server does not
// answer, Redis stays nil and callers run without a cache.
func ConnectRedis(url string) {
	if url == "" {
		slog.Info("Redis not configured, running without cache")
		return
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		slog.Warn("Invalid REDIS_URL, running without cache", "error", err)
		return
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis not available, running without cache", "error", err)
		client.Close()
		return
	}

	Redis = client
	slog.Info("Redis connected successfully", "addr", opts.Addr)
}
