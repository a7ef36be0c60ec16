package fingerprint

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/petrijr/quizforge/internal/persistence"
	"github.com/petrijr/quizforge/pkg/api"
)

// DefaultTTL is how long a cached payload stays usable.
const DefaultTTL = 30 * 24 * time.Hour

// Cache maps question specs to previously generated payloads.
//
// Lookups consult an in-process memory layer first and fall back to the
// durable store. Store failures never surface to callers: a failed read is a
// miss and a failed write is dropped, both logged.
type Cache struct {
	store  persistence.RecordStore
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
	memory *gocache.Cache
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the record lifetime. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithoutMemory disables the in-process layer so that every lookup reads the
// durable store.
func WithoutMemory() Option {
	return func(c *Cache) {
		c.memory = nil
	}
}

// New creates a Cache over store.
func New(store persistence.RecordStore, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: slog.Default(),
		memory: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured record lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached payload for spec when a fresh record exists.
func (c *Cache) Get(ctx context.Context, spec api.QuestionSpec) (string, bool) {
	key := Key(spec)
	now := c.now()

	if c.memory != nil {
		if v, ok := c.memory.Get(key); ok {
			if rec, ok := v.(api.CacheRecord); ok && c.fresh(rec, now) {
				return rec.Payload, true
			}
			c.memory.Delete(key)
		}
	}

	rec, err := c.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, persistence.ErrRecordNotFound) {
			c.logger.WarnContext(ctx, "cache_read_failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
		return "", false
	}
	if !c.fresh(rec, now) {
		return "", false
	}

	c.remember(key, rec, now)
	return rec.Payload, true
}

// Set stores payload for spec, replacing any previous record.
func (c *Cache) Set(ctx context.Context, spec api.QuestionSpec, payload string) {
	key := Key(spec)
	now := c.now()
	rec := api.CacheRecord{Timestamp: now.UTC(), Payload: payload}

	if err := c.store.Save(ctx, key, rec); err != nil {
		c.logger.WarnContext(ctx, "cache_write_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return
	}
	c.remember(key, rec, now)
}

func (c *Cache) fresh(rec api.CacheRecord, now time.Time) bool {
	return rec.Age(now) <= c.ttl
}

func (c *Cache) remember(key string, rec api.CacheRecord, now time.Time) {
	if c.memory == nil {
		return
	}
	remaining := c.ttl - rec.Age(now)
	if remaining <= 0 {
		return
	}
	c.memory.Set(key, rec, remaining)
}
