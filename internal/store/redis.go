package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Silexemple/satoshi-casino21/internal/config"
	"github.com/go-redis/redis/v8"
)

// NewClient connects to Redis, the shared durable store every service
// instance reads and writes table records through.
func NewClient(cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if cfg.RedisPassword != "" {
		opt.Password = cfg.RedisPassword
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", opt.Addr)
	return client, nil
}
