package decorator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dshills/codechunk/internal/strategy"
	"github.com/dshills/codechunk/pkg/types"
)

// Cache is the shared execution cache: TTL-evicted, capacity-bounded LRU of
// chunk lists keyed by strategy, file identity, and options. One instance is
// shared across all workers; the underlying LRU is safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, []types.CodeChunk]
}

// NewCache creates an execution cache. Non-positive capacity falls back to
// 1024 entries; non-positive ttl falls back to five minutes.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1024
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{lru: expirable.NewLRU[string, []types.CodeChunk](capacity, nil, ttl)}
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Key derives the cache key from everything that determines chunk output.
func Key(strategyName string, sc *types.StrategyContext, opts types.ChunkingOptions) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s|%s",
		strategyName, sc.FilePath, sc.ContentHash(), opts.CacheKeyPart()))
	return hex.EncodeToString(h[:])
}

// cacheDecorator returns cached chunk lists without invoking the inner
// strategy. A hit is observable downstream: zero execution time and no
// performance-stats record for the strategy, since the monitor sits inside
// the cache layer.
type cacheDecorator struct {
	inner strategy.Strategy
	cache *Cache
}

// WithCache wraps a strategy with the shared execution cache.
func WithCache(inner strategy.Strategy, cache *Cache) strategy.Strategy {
	return &cacheDecorator{inner: inner, cache: cache}
}

// Descriptor delegates to the wrapped strategy.
func (d *cacheDecorator) Descriptor() types.StrategyDescriptor {
	return d.inner.Descriptor()
}

// Split serves hits from cache and stores misses. Cached values are copied
// on the way out so callers can never mutate a shared entry.
func (d *cacheDecorator) Split(ctx context.Context, sc *types.StrategyContext, opts types.ChunkingOptions) ([]types.CodeChunk, error) {
	key := Key(d.inner.Descriptor().Name, sc, opts)
	if chunks, ok := d.cache.lru.Get(key); ok {
		return copyChunks(chunks), nil
	}

	chunks, err := d.inner.Split(ctx, sc, opts)
	if err != nil {
		return nil, err
	}
	d.cache.lru.Add(key, copyChunks(chunks))
	return chunks, nil
}

// copyChunks clones the slice and each chunk's metadata map, so cached
// entries and caller results never alias.
func copyChunks(chunks []types.CodeChunk) []types.CodeChunk {
	out := make([]types.CodeChunk, len(chunks))
	copy(out, chunks)
	for i := range out {
		out[i].Metadata = maps.Clone(out[i].Metadata)
	}
	return out
}
