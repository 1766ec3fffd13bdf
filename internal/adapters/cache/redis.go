// Package cache backs shared state with Redis so several replicas agree on
// which webhook deliveries were already taken.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/matchbot/internal/domain/dedupe"
)

// ErrCache wraps Redis failures.
var ErrCache = errors.New("cache error")

const (
	defaultTTL    = 24 * time.Hour
	defaultPrefix = "matchbot:sid:"
)

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %w", ErrCache, err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrCache, err)
	}
	return rdb, nil
}

type store interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Deduper is a dedupe.Deduper whose entries expire after a TTL.
type Deduper struct {
	rdb    store
	ttl    time.Duration
	prefix string
}

var _ dedupe.Deduper = (*Deduper)(nil)

// Option configures a Deduper.
type Option func(*Deduper)

// WithTTL sets how long a MessageSid is remembered.
func WithTTL(ttl time.Duration) Option {
	return func(d *Deduper) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

// WithPrefix namespaces the keys.
func WithPrefix(p string) Option {
	return func(d *Deduper) {
		if p != "" {
			d.prefix = p
		}
	}
}

// NewDeduper stores seen ids in rdb.
func NewDeduper(rdb *redis.Client, opts ...Option) *Deduper {
	return newDeduper(rdb, opts...)
}

func newDeduper(rdb store, opts ...Option) *Deduper {
	d := &Deduper{rdb: rdb, ttl: defaultTTL, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SeenAndRecord implements dedupe.Deduper with a single SET NX.
func (d *Deduper) SeenAndRecord(ctx context.Context, id string) (bool, error) {
	created, err := d.rdb.SetNX(ctx, d.prefix+id, time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: setnx: %w", ErrCache, err)
	}
	return !created, nil
}

// Forget implements dedupe.Deduper.
func (d *Deduper) Forget(ctx context.Context, id string) error {
	if err := d.rdb.Del(ctx, d.prefix+id).Err(); err != nil {
		return fmt.Errorf("%w: del: %w", ErrCache, err)
	}
	return nil
}
