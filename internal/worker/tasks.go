package worker

import (
	"context"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal/chat"
	"github.com/ValayAI/pm-pathfinder/internal/metrics"
	"github.com/ValayAI/pm-pathfinder/internal/service"
)

// ExpiredSessionsTask removes expired login sessions from the database.
type ExpiredSessionsTask struct {
	userService service.UserService
}

// NewExpiredSessionsTask creates the login-session cleanup task.
func NewExpiredSessionsTask(userService service.UserService) *ExpiredSessionsTask {
	return &ExpiredSessionsTask{userService: userService}
}

func (t *ExpiredSessionsTask) Name() string { return "expired_sessions" }

func (t *ExpiredSessionsTask) Run(ctx context.Context) (int64, error) {
	count, err := t.userService.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, err
	}
	metrics.SessionsCleaned.Add(float64(count))
	return count, nil
}

// IdleChatSessionsTask evicts chat sessions that have been idle past the
// configured timeout. Evicted sessions are rebuilt from the state store on
// the user's next message, so eviction loses nothing.
type IdleChatSessionsTask struct {
	manager *chat.Manager
	maxIdle time.Duration
}

// NewIdleChatSessionsTask creates the chat-session eviction task.
func NewIdleChatSessionsTask(manager *chat.Manager, maxIdle time.Duration) *IdleChatSessionsTask {
	return &IdleChatSessionsTask{manager: manager, maxIdle: maxIdle}
}

func (t *IdleChatSessionsTask) Name() string { return "idle_chat_sessions" }

func (t *IdleChatSessionsTask) Run(ctx context.Context) (int64, error) {
	evicted := t.manager.EvictIdle(t.maxIdle)
	metrics.ChatSessionsEvicted.Add(float64(evicted))
	return int64(evicted), nil
}
