// Package provider holds the CacheProvider implementations: an in-process
// map for tests and development, and a redis-backed provider for
// deployments.
package provider

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pivotalhq/pivotal/internal/cache/domain"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Memory is a map-backed provider. Expiry is enforced lazily on read;
// DeletePattern is a linear scan, which is fine for its test/dev role.
type Memory struct {
	mu       sync.RWMutex
	entries  map[string]entry
	counters domain.Counters
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		m.counters.Miss()
		return nil, nil
	}
	if m.expired(e) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		m.counters.Miss()
		return nil, nil
	}
	m.counters.Hit()
	return e.value, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	m.counters.Set()
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	m.counters.Bust(int64(len(keys)))
	return nil
}

func (m *Memory) DeletePattern(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	removed := 0
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
			removed++
		}
	}
	m.mu.Unlock()
	m.counters.Bust(int64(removed))
	return removed, nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.expired(e) {
		return false, nil
	}
	return true, nil
}

func (m *Memory) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.expired(e) {
		return -2 * time.Second, nil
	}
	if e.expiresAt.IsZero() {
		return -1 * time.Second, nil
	}
	return e.expiresAt.Sub(m.now()), nil
}

func (m *Memory) Metrics() domain.Metrics { return m.counters.Snapshot() }
func (m *Memory) ResetMetrics()           { m.counters.Reset() }

func (m *Memory) expired(e entry) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}
