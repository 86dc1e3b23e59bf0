package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/pivotalhq/pivotal/internal/cache/domain"
)

var Module = fx.Module("observability",
	fx.Provide(NewLogger),
	fx.Provide(NewRegistry),
	fx.Provide(func(c *CacheCollector) domain.Collector { return c }),
	fx.Provide(NewCacheCollector),
)

func NewRegistry() prometheus.Registerer {
	return prometheus.NewRegistry()
}
