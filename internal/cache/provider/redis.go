package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pivotalhq/pivotal/internal/cache/domain"
)

// Redis maps the provider contract onto a redis client with server-side
// TTLs. Pattern deletion SCANs with a prefix match and deletes in batches
// so a large bust never blocks the server with KEYS.
type Redis struct {
	client   *redis.Client
	counters domain.Counters
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.counters.Miss()
		return nil, nil
	}
	if err != nil {
		r.counters.Error()
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	r.counters.Hit()
	return val, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.counters.Error()
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	r.counters.Set()
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	removed, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		r.counters.Error()
		return fmt.Errorf("redis del: %w", err)
	}
	r.counters.Bust(removed)
	return nil
}

func (r *Redis) DeletePattern(ctx context.Context, prefix string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, prefix+"*", 200).Result()
		if err != nil {
			r.counters.Error()
			return removed, fmt.Errorf("redis scan %s: %w", prefix, err)
		}
		if len(batch) > 0 {
			n, err := r.client.Del(ctx, batch...).Result()
			if err != nil {
				r.counters.Error()
				return removed, fmt.Errorf("redis del batch: %w", err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	r.counters.Bust(int64(removed))
	return removed, nil
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.counters.Error()
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (r *Redis) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		r.counters.Error()
		return 0, fmt.Errorf("redis ttl %s: %w", key, err)
	}
	return d, nil
}

func (r *Redis) Metrics() domain.Metrics { return r.counters.Snapshot() }
func (r *Redis) ResetMetrics()           { r.counters.Reset() }
