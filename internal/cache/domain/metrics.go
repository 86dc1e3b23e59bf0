package domain

import "sync/atomic"

// Metrics is a point-in-time snapshot of provider counters. Both provider
// implementations report the same shape.
type Metrics struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	Busts  int64 `json:"busts"`
	Errors int64 `json:"errors"`
}

// Counters is the shared mutable backing for provider metrics.
type Counters struct {
	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
	busts  atomic.Int64
	errors atomic.Int64
}

func (c *Counters) Hit()          { c.hits.Add(1) }
func (c *Counters) Miss()         { c.misses.Add(1) }
func (c *Counters) Set()          { c.sets.Add(1) }
func (c *Counters) Bust(n int64)  { c.busts.Add(n) }
func (c *Counters) Error()        { c.errors.Add(1) }

func (c *Counters) Snapshot() Metrics {
	return Metrics{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Sets:   c.sets.Load(),
		Busts:  c.busts.Load(),
		Errors: c.errors.Load(),
	}
}

func (c *Counters) Reset() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
	c.busts.Store(0)
	c.errors.Store(0)
}

// Collector receives wrapper-level cache events. It is an injected
// dependency of the wrapper so tests can assert exact call counts.
type Collector interface {
	CacheHit(resource string)
	CacheMiss(resource string)
	CacheSet(resource string)
	CacheBust(resource string, keys int)
	CacheError(op string)
}

// NopCollector discards all events.
type NopCollector struct{}

func (NopCollector) CacheHit(string)        {}
func (NopCollector) CacheMiss(string)       {}
func (NopCollector) CacheSet(string)        {}
func (NopCollector) CacheBust(string, int)  {}
func (NopCollector) CacheError(string)      {}
