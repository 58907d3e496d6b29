package cases

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "case:"

// CachedStore wraps a Store with a Redis read-through cache for single-case
// lookups. Records never change after Save, so entries need no invalidation,
// only a TTL to bound memory. Cache failures degrade to the backing store.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedStore) Save(ctx context.Context, record Record) error {
	if err := c.next.Save(ctx, record); err != nil {
		return err
	}
	c.put(ctx, record)
	return nil
}

func (c *CachedStore) Get(ctx context.Context, id string) (Record, error) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+id).Bytes()
	if err == nil {
		var record Record
		if err := json.Unmarshal(data, &record); err == nil {
			return record, nil
		}
		c.logger.WarnContext(ctx, "corrupt case cache entry", "case_id", id)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "case cache read failed", "case_id", id, "error", err)
	}

	record, err := c.next.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	c.put(ctx, record)
	return record, nil
}

// List always goes to the backing store: the listing is ordered by recency
// and caching it would serve stale windows.
func (c *CachedStore) List(ctx context.Context, limit int) ([]Record, error) {
	return c.next.List(ctx, limit)
}

func (c *CachedStore) put(ctx context.Context, record Record) {
	data, err := json.Marshal(record)
	if err != nil {
		c.logger.WarnContext(ctx, "marshal case for cache failed", "case_id", record.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+record.ID, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "case cache write failed", "case_id", record.ID, "error", err)
	}
}
