package filecache

import (
	"time"

	"github.com/okian/linepulse/pkg/logger"
)

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithTTL sets how long an entry stays valid after it was written.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}
