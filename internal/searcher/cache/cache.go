// Package cache provides a bounded-TTL in-memory response cache with
// singleflight deduplication, keyed by (mode, topN, normalized query). It
// serves C10: the teacher's equivalent cache is Redis-backed, but a
// single-process service with no other consumers of the cached value has no
// need for an external store, so this keeps the teacher's dedup/normalize
// shape over a sync.Map with lazy per-entry expiry instead.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/liber-scholasticum/live-search/internal/searchtypes"
	"golang.org/x/sync/singleflight"
)

type entry struct {
	result    searchtypes.SearchResult
	expiresAt time.Time
}

// QueryCache is a concurrency-safe, bounded-TTL in-memory cache of
// SearchResults, deduplicating concurrent identical computations via
// singleflight.
type QueryCache struct {
	ttl    time.Duration
	items  sync.Map // string -> entry
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// New creates a QueryCache with the given TTL, sweeping expired entries
// every sweepInterval.
func New(ttl, sweepInterval time.Duration) *QueryCache {
	c := &QueryCache{
		ttl:       ttl,
		logger:    slog.Default().With("component", "query-cache"),
		stopSweep: make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.sweepLoop(sweepInterval)
	}
	return c
}

// Close stops the background sweep goroutine.
func (c *QueryCache) Close() {
	c.sweepOnce.Do(func() { close(c.stopSweep) })
}

// Get reads a cached result for (mode, topN, query). Returns (zero, false)
// on a miss or an expired entry.
func (c *QueryCache) Get(_ context.Context, mode string, topN int, query string) (searchtypes.SearchResult, bool) {
	key := buildKey(mode, topN, query)
	v, ok := c.items.Load(key)
	if !ok {
		c.misses.Add(1)
		return searchtypes.SearchResult{}, false
	}
	e := v.(entry)
	if time.Now().After(e.expiresAt) {
		c.items.Delete(key)
		c.misses.Add(1)
		return searchtypes.SearchResult{}, false
	}
	c.hits.Add(1)
	return e.result, true
}

// Set stores result under (mode, topN, query), replacing any existing entry.
func (c *QueryCache) Set(_ context.Context, mode string, topN int, query string, result searchtypes.SearchResult) {
	key := buildKey(mode, topN, query)
	c.items.Store(key, entry{result: result, expiresAt: time.Now().Add(c.ttl)})
}

// GetOrCompute returns a cached result if present and unexpired; otherwise
// invokes computeFn, caches the outcome, and returns it. Concurrent callers
// for the same key collapse onto a single computeFn invocation.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	mode string,
	topN int,
	query string,
	computeFn func() (searchtypes.SearchResult, error),
) (searchtypes.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, mode, topN, query); ok {
		return result, true, nil
	}
	key := buildKey(mode, topN, query)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, mode, topN, query); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return searchtypes.SearchResult{}, err
		}
		c.Set(ctx, mode, topN, query, result)
		return result, nil
	})
	if err != nil {
		return searchtypes.SearchResult{}, false, err
	}
	return val.(searchtypes.SearchResult), false, nil
}

// Stats returns the cumulative hit and miss counters.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopSweep:
			return
		case <-ticker.C:
			c.sweepExpired()
		}
	}
}

func (c *QueryCache) sweepExpired() {
	now := time.Now()
	removed := 0
	c.items.Range(func(key, v interface{}) bool {
		if now.After(v.(entry).expiresAt) {
			c.items.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("cache sweep removed expired entries", "count", removed)
	}
}

// buildKey produces a deterministic key for (mode, topN, normalized query).
func buildKey(mode string, topN int, query string) string {
	return fmt.Sprintf("%s|topN=%d|%s", mode, topN, normalizeQuery(query))
}

// normalizeQuery canonicalises a query string by lower-casing and sorting
// its words, so word-order-only variations share a cache entry.
func normalizeQuery(query string) string {
	words := strings.Fields(strings.ToLower(query))
	sort.Strings(words)
	return strings.Join(words, " ")
}
