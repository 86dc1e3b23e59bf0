package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pivotalhq/pivotal/internal/cache/domain"
)

// CacheCollector is the production cache.Collector, backed by prometheus
// counters. It is injected into the cache wrapper rather than living as a
// package global so tests can substitute a fake.
type CacheCollector struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	sets   *prometheus.CounterVec
	busts  *prometheus.CounterVec
	errors *prometheus.CounterVec
}

func NewCacheCollector(reg prometheus.Registerer) *CacheCollector {
	c := &CacheCollector{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pivotal_cache_hits_total",
			Help: "Cache hits by resource.",
		}, []string{"resource"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pivotal_cache_misses_total",
			Help: "Cache misses by resource.",
		}, []string{"resource"}),
		sets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pivotal_cache_sets_total",
			Help: "Cache sets by resource.",
		}, []string{"resource"}),
		busts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pivotal_cache_busts_total",
			Help: "Cache entries invalidated by resource.",
		}, []string{"resource"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pivotal_cache_errors_total",
			Help: "Cache provider errors by operation.",
		}, []string{"op"}),
	}
	reg.MustRegister(c.hits, c.misses, c.sets, c.busts, c.errors)
	return c
}

func (c *CacheCollector) CacheHit(resource string)  { c.hits.WithLabelValues(resource).Inc() }
func (c *CacheCollector) CacheMiss(resource string) { c.misses.WithLabelValues(resource).Inc() }
func (c *CacheCollector) CacheSet(resource string)  { c.sets.WithLabelValues(resource).Inc() }
func (c *CacheCollector) CacheBust(resource string, n int) {
	c.busts.WithLabelValues(resource).Add(float64(n))
}
func (c *CacheCollector) CacheError(op string) { c.errors.WithLabelValues(op).Inc() }

var _ domain.Collector = (*CacheCollector)(nil)
