package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal/auth"
	"github.com/ValayAI/pm-pathfinder/internal/chat"
	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"github.com/ValayAI/pm-pathfinder/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory StateStore for handler tests.
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
	m.docs[key] = data
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}

type echoResponder struct{}

func (echoResponder) Respond(_ context.Context, prompt string) (string, error) {
	return "You asked: " + prompt, nil
}

func newTestChatHandler(st *memStore) *ChatHandler {
	cfg := chat.Config{
		CacheSize:        50,
		CacheTTL:         24 * time.Hour,
		CachedReplyDelay: time.Millisecond,
		PaywallDelay:     time.Millisecond,
		RefreshInterval:  time.Minute,
	}
	factory := func(key string) *chat.Session {
		return chat.NewSession(key, st, chat.StaticPlanSource(domain.PlanTierFree), echoResponder{}, nil, testLogger(), cfg)
	}
	return NewChatHandler(chat.NewManager(factory), testLogger())
}

func TestSessionKey(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/chat/messages", nil)
	req.RemoteAddr = "10.1.2.3:52100"
	assert.Equal(t, "anon:10.1.2.3", SessionKey(req))

	userID := uuid.New()
	req = req.WithContext(auth.SetUser(req.Context(), &domain.User{ID: userID}))
	assert.Equal(t, "user:"+userID.String(), SessionKey(req))
}

func TestSendMessage(t *testing.T) {
	h := newTestChatHandler(newMemStore())

	req := httptest.NewRequest("POST", "/api/chat/messages",
		strings.NewReader(`{"message":"  How do I run a sprint review?  "}`))
	req.RemoteAddr = "10.0.0.1:40000"
	rec := httptest.NewRecorder()

	h.SendMessage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result chat.SendResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "How do I run a sprint review?", result.UserMessage.Content)
	assert.Equal(t, "You asked:   How do I run a sprint review?  ", result.Reply.Content)
	assert.False(t, result.FromCache)
	assert.Equal(t, 1, result.Used)
	assert.Equal(t, 4, result.Remaining)
}

func TestSendMessage_EmptyMessage(t *testing.T) {
	h := newTestChatHandler(newMemStore())

	req := httptest.NewRequest("POST", "/api/chat/messages",
		strings.NewReader(`{"message":"   "}`))
	req.RemoteAddr = "10.0.0.1:40000"
	rec := httptest.NewRecorder()

	h.SendMessage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessage_MalformedBody(t *testing.T) {
	h := newTestChatHandler(newMemStore())

	req := httptest.NewRequest("POST", "/api/chat/messages",
		strings.NewReader(`{"message": `))
	req.RemoteAddr = "10.0.0.1:40000"
	rec := httptest.NewRecorder()

	h.SendMessage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessage_ExhaustedQuotaReturnsPaywall(t *testing.T) {
	st := newMemStore()
	st.docs["chat/anon:10.0.0.9/usage"] = []byte(`{"count":5}`)
	h := newTestChatHandler(st)

	req := httptest.NewRequest("POST", "/api/chat/messages",
		strings.NewReader(`{"message":"one more question"}`))
	req.RemoteAddr = "10.0.0.9:40000"
	rec := httptest.NewRecorder()

	h.SendMessage(rec, req)

	require.Equal(t, http.StatusPaymentRequired, rec.Code)

	var body struct {
		Paywall bool `json:"paywall"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Paywall)
}

func TestListMessages_EmptyWithoutSession(t *testing.T) {
	h := newTestChatHandler(newMemStore())

	req := httptest.NewRequest("GET", "/api/chat/messages", nil)
	req.RemoteAddr = "10.0.0.1:40000"
	rec := httptest.NewRecorder()

	h.ListMessages(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())
}

func TestListMessages_AfterSend(t *testing.T) {
	h := newTestChatHandler(newMemStore())

	send := httptest.NewRequest("POST", "/api/chat/messages",
		strings.NewReader(`{"message":"hello"}`))
	send.RemoteAddr = "10.0.0.1:40000"
	h.SendMessage(httptest.NewRecorder(), send)

	req := httptest.NewRequest("GET", "/api/chat/messages", nil)
	req.RemoteAddr = "10.0.0.1:40001" // same IP, different port
	rec := httptest.NewRecorder()

	h.ListMessages(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Messages []domain.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Messages, 2)
	assert.Equal(t, domain.MessageRoleUser, body.Messages[0].Role)
	assert.Equal(t, domain.MessageRoleAssistant, body.Messages[1].Role)
}

func TestUsage(t *testing.T) {
	st := newMemStore()
	st.docs["chat/anon:10.0.0.2/usage"] = []byte(`{"count":3}`)
	h := newTestChatHandler(st)

	req := httptest.NewRequest("GET", "/api/chat/usage", nil)
	req.RemoteAddr = "10.0.0.2:40000"
	rec := httptest.NewRecorder()

	h.Usage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Unlimited bool `json:"unlimited"`
		Used      int  `json:"used"`
		Limit     int  `json:"limit"`
		Remaining int  `json:"remaining"`
		Allowed   bool `json:"allowed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Unlimited)
	assert.Equal(t, 3, body.Used)
	assert.Equal(t, 5, body.Limit)
	assert.Equal(t, 2, body.Remaining)
	assert.True(t, body.Allowed)
}
