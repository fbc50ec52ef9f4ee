package chat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory StateStore for tests.
type memStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

func (m *memStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func newTestCache(t *testing.T, maxEntries int, ttl time.Duration) (*ResponseCache, *time.Time) {
	t.Helper()
	c := NewResponseCache(newMemStore(), "chat/u1/cache", maxEntries, ttl, testLogger())
	now := time.Now()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestResponseCache_FIFOBound(t *testing.T) {
	c, _ := newTestCache(t, 50, DefaultCacheTTL)
	ctx := context.Background()

	for i := 0; i < 55; i++ {
		c.Store(ctx, fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}

	assert.Equal(t, 50, c.Len(ctx), "cache must never exceed the bound")

	// The five oldest-inserted entries are gone, regardless of use.
	for i := 0; i < 5; i++ {
		_, ok := c.Lookup(ctx, fmt.Sprintf("question %d", i))
		assert.False(t, ok, "entry %d should have been evicted first", i)
	}
	for i := 5; i < 55; i++ {
		got, ok := c.Lookup(ctx, fmt.Sprintf("question %d", i))
		require.True(t, ok, "entry %d should be retained", i)
		assert.Equal(t, fmt.Sprintf("answer %d", i), got)
	}
}

func TestResponseCache_EvictionIsInsertionOrderNotUsage(t *testing.T) {
	c, _ := newTestCache(t, 3, DefaultCacheTTL)
	ctx := context.Background()

	c.Store(ctx, "a", "1")
	c.Store(ctx, "b", "2")
	c.Store(ctx, "c", "3")

	// Heavy use of the oldest entry must not save it: FIFO, not LRU.
	for i := 0; i < 10; i++ {
		_, ok := c.Lookup(ctx, "a")
		require.True(t, ok)
	}

	c.Store(ctx, "d", "4")

	_, ok := c.Lookup(ctx, "a")
	assert.False(t, ok, "oldest-inserted entry evicted despite recent use")
	for _, q := range []string{"b", "c", "d"} {
		_, ok := c.Lookup(ctx, q)
		assert.True(t, ok, "entry %q should survive", q)
	}
}

func TestResponseCache_Expiry(t *testing.T) {
	c, now := newTestCache(t, 50, 24*time.Hour)
	ctx := context.Background()
	start := *now

	c.Store(ctx, "what is rice", "a framework")

	*now = start.Add(23*time.Hour + 59*time.Minute)
	got, ok := c.Lookup(ctx, "what is rice")
	require.True(t, ok, "entry should be live just inside the window")
	assert.Equal(t, "a framework", got)

	*now = start.Add(24*time.Hour + time.Minute)
	_, ok = c.Lookup(ctx, "what is rice")
	assert.False(t, ok, "entry should be treated as absent past the window")
}

func TestResponseCache_ExpiredEntriesCompactedOnStore(t *testing.T) {
	c, now := newTestCache(t, 50, 24*time.Hour)
	ctx := context.Background()
	start := *now

	c.Store(ctx, "old question", "old answer")
	assert.Equal(t, 1, c.Len(ctx))

	// A write past the retention window filters the stale entry out.
	*now = start.Add(25 * time.Hour)
	c.Store(ctx, "new question", "new answer")
	assert.Equal(t, 1, c.Len(ctx))

	_, ok := c.Lookup(ctx, "new question")
	assert.True(t, ok)
}

func TestResponseCache_NormalizationIdempotence(t *testing.T) {
	c, _ := newTestCache(t, 50, DefaultCacheTTL)
	ctx := context.Background()

	c.Store(ctx, "Foo Bar", "baz")

	for _, q := range []string{"foo bar", "  Foo BAR ", "FOO BAR", "foo bar  "} {
		got, ok := c.Lookup(ctx, q)
		require.True(t, ok, "Lookup(%q) should hit", q)
		assert.Equal(t, "baz", got)
	}
}

func TestResponseCache_MalformedStateReadsAsEmpty(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()
	require.NoError(t, st.Put(ctx, "chat/u1/cache", []byte("{not json")))

	c := NewResponseCache(st, "chat/u1/cache", 50, DefaultCacheTTL, testLogger())

	_, ok := c.Lookup(ctx, "anything")
	assert.False(t, ok)

	// Writes recover from the corruption.
	c.Store(ctx, "q", "a")
	got, ok := c.Lookup(ctx, "q")
	require.True(t, ok)
	assert.Equal(t, "a", got)
}
