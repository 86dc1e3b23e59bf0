// Package domain defines the storage-agnostic cache contract shared by the
// in-memory and redis providers and consumed by the wrapper.
package domain

import (
	"context"
	"time"
)

// Provider is the raw key-value boundary. Values are opaque bytes; the
// wrapper owns serialization. Get returns (nil, nil) on a miss.
//
// DeletePattern removes every key whose name starts with the given prefix
// and reports how many were removed. Prefix match (not glob) is the
// contract: callers build prefixes with the key builder and must not embed
// wildcard characters.
type Provider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, prefix string) (int, error)
	Exists(ctx context.Context, key string) (bool, error)
	// TTL returns the remaining lifetime of a key, or a negative duration
	// when the key is absent or has no expiry.
	TTL(ctx context.Context, key string) (time.Duration, error)

	Metrics() Metrics
	ResetMetrics()
}
