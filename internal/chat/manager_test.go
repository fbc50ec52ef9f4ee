package chat

import (
	"testing"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"github.com/stretchr/testify/assert"
)

func newTestManager() *Manager {
	st := newMemStore()
	return NewManager(func(key string) *Session {
		return NewSession(key, st, StaticPlanSource(domain.PlanTierFree), &stubResponder{reply: "ok"}, nil, testLogger(), Config{})
	})
}

func TestManager_GetCreatesOnce(t *testing.T) {
	m := newTestManager()

	a := m.Get("u1")
	b := m.Get("u1")
	assert.Same(t, a, b)
	assert.Equal(t, 1, m.Len())

	m.Get("u2")
	assert.Equal(t, 2, m.Len())
}

func TestManager_PeekAndEvict(t *testing.T) {
	m := newTestManager()

	_, ok := m.Peek("u1")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len(), "Peek must not create sessions")

	s := m.Get("u1")
	got, ok := m.Peek("u1")
	assert.True(t, ok)
	assert.Same(t, s, got)

	m.Evict("u1")
	_, ok = m.Peek("u1")
	assert.False(t, ok)
}

func TestManager_EvictIdle(t *testing.T) {
	m := newTestManager()

	stale := m.Get("stale")
	stale.mu.Lock()
	stale.lastActive = time.Now().Add(-time.Hour)
	stale.mu.Unlock()

	m.Get("fresh")

	evicted := m.EvictIdle(30 * time.Minute)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, m.Len())
	_, ok := m.Peek("fresh")
	assert.True(t, ok)
}
