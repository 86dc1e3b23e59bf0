package cache

import (
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/pivotalhq/pivotal/internal/cache/domain"
	"github.com/pivotalhq/pivotal/internal/cache/keys"
	"github.com/pivotalhq/pivotal/internal/cache/provider"
	"github.com/pivotalhq/pivotal/internal/cache/service"
	"github.com/pivotalhq/pivotal/internal/config"
)

var Module = fx.Module("cache",
	fx.Provide(NewConfig),
	fx.Provide(NewKeyBuilder),
	fx.Provide(NewProvider),
	fx.Provide(service.Provide),
)

func NewConfig(cfg config.Config) domain.Config {
	out := domain.DefaultConfig()
	if cfg.Cache.Prefix != "" {
		out.Prefix = cfg.Cache.Prefix
	}
	if cfg.Cache.DefaultTTL > 0 {
		out.DefaultTTL = cfg.Cache.DefaultTTL
	}
	out.JitterEnabled = cfg.Cache.JitterEnabled
	return out
}

func NewKeyBuilder(cfg domain.Config) *keys.Builder {
	return keys.NewBuilder(cfg.Prefix)
}

type ProviderParam struct {
	fx.In

	Redis *goredis.Client `optional:"true"`
}

// NewProvider prefers redis when a client is wired; the in-memory provider
// backs dev and test runs without a redis.
func NewProvider(p ProviderParam) domain.Provider {
	if p.Redis != nil {
		return provider.NewRedis(p.Redis)
	}
	return provider.NewMemory()
}
