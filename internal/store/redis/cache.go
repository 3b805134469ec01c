package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bookmarkd/internal/domain"
	"github.com/MrSnakeDoc/bookmarkd/internal/logger"
	"github.com/MrSnakeDoc/bookmarkd/internal/store"
)

// DefaultCacheTTL is the default TTL for cached bookmarks
const DefaultCacheTTL = 10 * time.Minute

// Client is the subset of *redis.Client the cache needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedStore is a read-through cache in front of another store.Bookmarks.
//
// Only single-record reads are cached. Writes go to the wrapped store first
// and then drop the cached entry. Redis errors are logged and never
// surface to callers: the wrapped store stays the source of truth.
//
// Every invalidation bumps epoch. A fill only happens when epoch is unchanged
// since before the wrapped read, so a row read before a concurrent write is
// never cached after that write dropped the entry.
type CachedStore struct {
	next   store.Bookmarks
	client Client
	ttl    time.Duration
	logger logger.Logger

	mu    sync.Mutex
	epoch uint64
}

var _ store.Bookmarks = (*CachedStore)(nil)

// NewCachedStore wraps next with a Redis cache
func NewCachedStore(next store.Bookmarks, client Client, ttl time.Duration, log logger.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func (c *CachedStore) List(ctx context.Context) ([]domain.Bookmark, error) {
	return c.next.List(ctx)
}

// Get serves from Redis when possible and fills the cache on a miss
func (c *CachedStore) Get(ctx context.Context, id int64) (*domain.Bookmark, error) {
	if b, ok := c.lookup(ctx, id); ok {
		return b, nil
	}

	epoch := c.currentEpoch()
	b, err := c.next.Get(ctx, id)
	if err != nil || b == nil {
		return b, err
	}

	c.fill(ctx, *b, epoch)
	return b, nil
}

func (c *CachedStore) Insert(ctx context.Context, nb domain.NewBookmark) (domain.Bookmark, error) {
	epoch := c.currentEpoch()
	b, err := c.next.Insert(ctx, nb)
	if err != nil {
		return b, err
	}
	c.fill(ctx, b, epoch)
	return b, nil
}

func (c *CachedStore) Update(ctx context.Context, id int64, p domain.Patch) (int64, error) {
	n, err := c.next.Update(ctx, id, p)
	c.invalidate(ctx, id)
	return n, err
}

func (c *CachedStore) Delete(ctx context.Context, id int64) (int64, error) {
	n, err := c.next.Delete(ctx, id)
	c.invalidate(ctx, id)
	return n, err
}

func (c *CachedStore) Count(ctx context.Context) (int64, error) {
	return c.next.Count(ctx)
}

func (c *CachedStore) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

func (c *CachedStore) lookup(ctx context.Context, id int64) (*domain.Bookmark, bool) {
	data, err := c.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("bookmark cache read failed",
				logger.Int64("id", id), logger.Error(err))
		}
		return nil, false
	}

	var b domain.Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		c.logger.Warn("dropping undecodable cache entry",
			logger.Int64("id", id), logger.Error(err))
		c.invalidate(ctx, id)
		return nil, false
	}
	return &b, true
}

func (c *CachedStore) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// fill caches b unless an invalidation happened after epoch was read.
// The check and the write share the lock with invalidate.
func (c *CachedStore) fill(ctx context.Context, b domain.Bookmark, epoch uint64) {
	data, err := json.Marshal(b)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		c.logger.Debug("skipping stale cache fill", logger.Int64("id", b.ID))
		return
	}
	if err := c.client.Set(ctx, BookmarkKey(b.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("bookmark cache write failed",
			logger.Int64("id", b.ID), logger.Error(err))
	}
}

func (c *CachedStore) invalidate(ctx context.Context, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	if err := c.client.Del(ctx, BookmarkKey(id)).Err(); err != nil {
		c.logger.Warn("bookmark cache invalidation failed",
			logger.Int64("id", id), logger.Error(err))
	}
}
