package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal/store"
)

const (
	// DefaultCacheSize bounds the number of cached responses per user.
	DefaultCacheSize = 50

	// DefaultCacheTTL is the retention window after which an entry is
	// treated as absent. Expiry is enforced lazily at read and write time,
	// never by a background sweep.
	DefaultCacheTTL = 24 * time.Hour
)

// cachedResponse is one memoized answer, persisted in insertion order.
type cachedResponse struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// ResponseCache memoizes assistant replies keyed by normalized query text.
//
// The cache is a bounded FIFO: at most maxEntries entries, with the
// oldest-inserted entry evicted first when the bound is exceeded. This is
// deliberately not an LRU: eviction order is insertion order, regardless
// of how often an entry is hit.
//
// Entries are persisted through the state store so they survive restarts.
// Malformed persisted data is treated as an empty cache.
type ResponseCache struct {
	store      store.StateStore
	key        string
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewResponseCache creates a cache persisted under the given store key.
// Zero values for maxEntries and ttl select the defaults.
func NewResponseCache(st store.StateStore, key string, maxEntries int, ttl time.Duration, logger *slog.Logger) *ResponseCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ResponseCache{
		store:      st,
		key:        key,
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		logger:     logger,
	}
}

// normalizeQuery canonicalizes a query for matching: trimmed and lowercased.
func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Lookup returns the cached response for a query, if a live entry exists.
// Entries past the retention window are ignored, not deleted.
func (c *ResponseCache) Lookup(ctx context.Context, query string) (string, bool) {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return "", false
	}

	now := c.now()
	for _, entry := range c.load(ctx) {
		if normalizeQuery(entry.Query) != normalized {
			continue
		}
		if now.Sub(entry.CreatedAt) >= c.ttl {
			continue
		}
		return entry.Response, true
	}
	return "", false
}

// Store inserts a response for a query. Expired entries are compacted out,
// the new entry is appended, and the oldest entries are dropped until the
// size bound holds. The resulting set is persisted.
//
// Store cannot fail from the caller's perspective; persistence errors are
// logged and swallowed.
func (c *ResponseCache) Store(ctx context.Context, query, response string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	now := c.now()

	entries := c.load(ctx)
	live := entries[:0]
	for _, entry := range entries {
		if now.Sub(entry.CreatedAt) < c.ttl {
			live = append(live, entry)
		}
	}

	live = append(live, cachedResponse{
		Query:     query,
		Response:  response,
		CreatedAt: now,
	})

	// FIFO bound: drop from the front (oldest-inserted first).
	if len(live) > c.maxEntries {
		live = live[len(live)-c.maxEntries:]
	}

	c.persist(ctx, live)
}

// Len reports the number of persisted entries, expired ones included.
func (c *ResponseCache) Len(ctx context.Context) int {
	return len(c.load(ctx))
}

// load reads the persisted entry list. Any read or parse failure yields an
// empty cache; corruption must never surface to the conversation.
func (c *ResponseCache) load(ctx context.Context) []cachedResponse {
	data, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil
	}

	var entries []cachedResponse
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("discarding malformed response cache", "key", c.key, "error", err)
		return nil
	}
	return entries
}

func (c *ResponseCache) persist(ctx context.Context, entries []cachedResponse) {
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Warn("failed to encode response cache", "key", c.key, "error", err)
		return
	}
	if err := c.store.Put(ctx, c.key, data); err != nil {
		c.logger.Warn("failed to persist response cache", "key", c.key, "error", err)
	}
}
