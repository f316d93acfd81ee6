package sessioncache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/linepulse/internal/domain/model"
	"github.com/okian/linepulse/pkg/logger"
	"github.com/okian/linepulse/pkg/metrics"
)

const (
	redisLabel = "session_redis"

	// envelopeVersion guards against decoding entries written by older builds.
	envelopeVersion = 1
	keyPrefix       = "linepulse:sessions:"
)

type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	CreatedAt     time.Time       `json:"created_at"`
	Sessions      []model.Session `json:"sessions"`
}

// Redis is a Store backed by a Redis server. Expiry is delegated to Redis via
// SET ... EX.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    logger.Logger
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, ttl time.Duration, log logger.Logger) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl, log: logger.OrNop(log)}
}

// DialRedis connects to addr and verifies the server answers PING.
func DialRedis(ctx context.Context, addr string, ttl time.Duration, log logger.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return NewRedis(client, ttl, log), nil
}

// Get reads and decodes an entry. Backend and decode errors are misses.
func (r *Redis) Get(ctx context.Context, key string) ([]model.Session, bool) {
	raw, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn(ctx, "session cache backend unavailable", logger.String("key", key), logger.Error(err))
		}
		metrics.RecordCacheMiss(redisLabel)
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.SchemaVersion != envelopeVersion {
		metrics.RecordCacheCorrupt(redisLabel)
		metrics.RecordCacheMiss(redisLabel)
		return nil, false
	}
	metrics.RecordCacheHit(redisLabel)
	if env.Sessions == nil {
		env.Sessions = []model.Session{}
	}
	return env.Sessions, true
}

// Set writes an entry with the store TTL.
func (r *Redis) Set(ctx context.Context, key string, sessions []model.Session) error {
	if sessions == nil {
		sessions = []model.Session{}
	}
	body, err := json.Marshal(envelope{SchemaVersion: envelopeVersion, CreatedAt: time.Now().UTC(), Sessions: sessions})
	if err != nil {
		metrics.RecordCacheWriteError(redisLabel)
		return fmt.Errorf("encode session cache entry: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+key, body, r.ttl).Err(); err != nil {
		metrics.RecordCacheWriteError(redisLabel)
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	metrics.RecordCacheWrite(redisLabel)
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error { return r.client.Close() }
