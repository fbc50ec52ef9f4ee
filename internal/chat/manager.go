package chat

import (
	"sync"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal/metrics"
)

// SessionFactory builds a session for a user key. Wired in main with the
// state store, plan source, and responder.
type SessionFactory func(key string) *Session

// Manager owns the live chat sessions, one per user key. Sessions are
// created on first use and evicted after sitting idle, which is when their
// in-memory conversation is destroyed (persisted cache and usage state
// survive in the state store).
type Manager struct {
	factory SessionFactory

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session registry.
func NewManager(factory SessionFactory) *Manager {
	return &Manager{
		factory:  factory,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for a key, creating it if needed.
func (m *Manager) Get(key string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[key]; ok {
		return s
	}
	s := m.factory(key)
	m.sessions[key] = s
	return s
}

// Peek returns the session for a key without creating one.
func (m *Manager) Peek(key string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	return s, ok
}

// Evict drops the session for a key, discarding its conversation.
func (m *Manager) Evict(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
}

// EvictIdle drops every session idle for longer than maxIdle and returns
// how many were removed.
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	evicted := 0
	for key, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, key)
			evicted++
		}
	}
	if evicted > 0 {
		metrics.ChatSessionsEvicted.Add(float64(evicted))
	}
	return evicted
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
