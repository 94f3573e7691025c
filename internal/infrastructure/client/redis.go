package client

import (
	"context"
	"fmt"
	"time"

	"github.com/St1cky1/command-center/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient подключается к redis, который используется как кэш списков задач
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rc, nil
}
