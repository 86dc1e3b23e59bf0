package domain

import "time"

// Config tunes the cache wrapper. TTLs for rate-card data live in the
// pricing/ratecard configs; these are the wrapper-wide knobs.
type Config struct {
	Prefix        string
	DefaultTTL    time.Duration
	JitterEnabled bool
	// JitterRange overrides the default max(1s, 10% of base TTL) spread
	// when positive.
	JitterRange time.Duration
}

func DefaultConfig() Config {
	return Config{
		Prefix:        "pivotal",
		DefaultTTL:    5 * time.Minute,
		JitterEnabled: true,
	}
}
