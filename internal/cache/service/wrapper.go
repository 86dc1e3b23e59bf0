// Package service implements the cache wrapper: single-flight read-through
// caching with jittered TTLs, hierarchical busting and injected metrics.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pivotalhq/pivotal/internal/cache/domain"
	"github.com/pivotalhq/pivotal/internal/cache/keys"
)

// flight is one in-progress computation for a key. Followers block on done;
// the leader fills value/err before closing it.
type flight struct {
	done  chan struct{}
	value []byte
	err   error
}

// Wrapper orchestrates a Provider with per-key single-flight deduplication.
// The in-flight map is the only mutable shared state and is guarded by mu:
// the check-and-insert on entry and the removal on settle are both atomic
// with respect to concurrent callers, so no two computations for the same
// key ever run at once from one Wrapper.
type Wrapper struct {
	provider  domain.Provider
	keys      *keys.Builder
	collector domain.Collector
	cfg       domain.Config
	log       *zap.Logger

	mu       sync.Mutex
	inflight map[string]*flight
}

func NewWrapper(p domain.Provider, kb *keys.Builder, collector domain.Collector, cfg domain.Config, log *zap.Logger) *Wrapper {
	if collector == nil {
		collector = domain.NopCollector{}
	}
	return &Wrapper{
		provider:  p,
		keys:      kb,
		collector: collector,
		cfg:       cfg,
		log:       log.Named("cache.wrapper"),
		inflight:  make(map[string]*flight),
	}
}

// Keys exposes the builder so consumers never hand-assemble key strings.
func (w *Wrapper) Keys() *keys.Builder { return w.keys }

// Metrics reports the underlying provider counters.
func (w *Wrapper) Metrics() domain.Metrics { return w.provider.Metrics() }

// GetOrSet returns the cached value for key, or invokes compute at most
// once among concurrently overlapping callers and caches its result. All
// callers attached to the same flight share its value or its error.
// Provider failures are recorded and degrade to a direct compute call, so
// a cache outage costs latency, never correctness.
func GetOrSet[T any](ctx context.Context, w *Wrapper, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	w.mu.Lock()
	if existing, ok := w.inflight[key]; ok {
		w.mu.Unlock()
		select {
		case <-existing.done:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
		if existing.err != nil {
			return zero, existing.err
		}
		var out T
		if err := json.Unmarshal(existing.value, &out); err != nil {
			return zero, fmt.Errorf("decode shared cache value for %s: %w", key, err)
		}
		return out, nil
	}

	f := &flight{done: make(chan struct{})}
	w.inflight[key] = f
	w.mu.Unlock()

	// The flight must leave the map whether we succeed or panic, or every
	// later caller for this key would block forever.
	defer func() {
		w.mu.Lock()
		delete(w.inflight, key)
		w.mu.Unlock()
		close(f.done)
	}()

	resource := keys.Resource(key)

	cached, err := w.provider.Get(ctx, key)
	switch {
	case err != nil:
		w.collector.CacheError("get")
		w.log.Error("cache get failed, falling back to compute",
			zap.String("key", key), zap.Error(err))
	case cached != nil:
		var out T
		if uerr := json.Unmarshal(cached, &out); uerr == nil {
			w.collector.CacheHit(resource)
			f.value = cached
			return out, nil
		}
		// Undecodable entry: treat as a miss and overwrite below.
		w.collector.CacheError("decode")
		w.log.Warn("cache entry undecodable, recomputing", zap.String("key", key))
	default:
		w.collector.CacheMiss(resource)
	}

	value, err := compute(ctx)
	if err != nil {
		f.err = err
		return zero, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		f.err = fmt.Errorf("encode cache value for %s: %w", key, err)
		return zero, f.err
	}

	if serr := w.provider.Set(ctx, key, raw, w.effectiveTTL(ttl)); serr != nil {
		w.collector.CacheError("set")
		w.log.Error("cache set failed, serving computed value",
			zap.String("key", key), zap.Error(serr))
	} else {
		w.collector.CacheSet(resource)
	}

	f.value = raw
	return value, nil
}

// effectiveTTL applies uniform jitter on top of the base TTL so keys warmed
// together do not all expire together. The spread defaults to one tenth of
// the base, never below one second.
func (w *Wrapper) effectiveTTL(base time.Duration) time.Duration {
	if base <= 0 {
		base = w.cfg.DefaultTTL
	}
	if !w.cfg.JitterEnabled {
		return base
	}
	spread := w.cfg.JitterRange
	if spread <= 0 {
		spread = base / 10
		if spread < time.Second {
			spread = time.Second
		}
	}
	return base + time.Duration(rand.Int64N(int64(spread)))
}
