package rateconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Rates change at most monthly, so a day-keyed 24h TTL is safe. Entries for
// past dates can never go stale; only a lookup right at a rate transition
// carries bounded staleness.
const DefaultCacheTTL = 24 * time.Hour

// Cache is a read-through redis cache for resolved rate definitions, keyed
// on category + calendar day. Concurrent misses for the same key collapse
// into a single repository load.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

func NewCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{rdb: rdb, ttl: ttl, logger: logger.Named("rateconfig.cache")}
}

func cacheKey(category Category, date time.Time) string {
	return fmt.Sprintf("tax:rate:%s:%s", category, Day(date).Format("2006-01-02"))
}

// GetOrLoad returns the cached definition for category+day, loading and
// caching it on a miss. A cached entry whose window does not cover the
// requested date is discarded and reloaded. Absent definitions are not
// cached so that fresh seeds become visible immediately.
func (c *Cache) GetOrLoad(
	ctx context.Context,
	category Category,
	date time.Time,
	load func(ctx context.Context) (*RateDefinition, error),
) (*RateDefinition, error) {
	key := cacheKey(category, date)

	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var def RateDefinition
		if jsonErr := json.Unmarshal(payload, &def); jsonErr == nil && def.Covers(date) {
			return &def, nil
		}
		c.logger.Warn("discarding cached rate entry", zap.String("key", key))
		_ = c.rdb.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down must not block payroll; fall through to the loader.
		c.logger.Warn("rate cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		def, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if def != nil {
			if payload, jsonErr := json.Marshal(def); jsonErr == nil {
				if setErr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
					c.logger.Warn("rate cache write failed", zap.String("key", key), zap.Error(setErr))
				}
			}
		}
		return def, nil
	})
	if err != nil {
		return nil, err
	}

	def, _ := v.(*RateDefinition)
	return def, nil
}

// Invalidate drops the cached entry for category+day so the next lookup
// reloads from the repository. Used when a rate definition changes mid-day.
func (c *Cache) Invalidate(ctx context.Context, category Category, date time.Time) error {
	key := cacheKey(category, date)
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Warm resolves and caches the definition for category+day ahead of demand.
func (c *Cache) Warm(
	ctx context.Context,
	category Category,
	date time.Time,
	load func(ctx context.Context) (*RateDefinition, error),
) error {
	_, err := c.GetOrLoad(ctx, category, date, load)
	return err
}
