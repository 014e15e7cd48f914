// Package cache provides the shared Redis client. Redis is optional; every
// consumer must tolerate a nil client and fall back to the database.
package cache

import (
	"strings"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/lancekit/lancekit/internal/config"
)

func NewClient(cfg config.Config, log *zap.Logger) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		log.Named("cache").Info("redis not configured, cache disabled")
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
}

var Module = fx.Module("cache",
	fx.Provide(NewClient),
)
