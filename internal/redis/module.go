// Package redis provides the shared redis client used by the cache layer.
package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pivotalhq/pivotal/internal/config"
)

var Module = fx.Module("redis",
	fx.Provide(NewClient),
)

// NewClient connects to redis when an address is configured. With no
// address the client is nil and the cache layer falls back to its
// in-memory provider.
func NewClient(cfg config.Config, log *zap.Logger) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		log.Named("redis").Warn("no redis address configured, cache will run in-memory")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	log.Named("redis").Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return client, nil
}
