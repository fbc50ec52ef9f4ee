// This file implements the coaching chat handlers.
//
// Routes handled:
//   - POST /api/chat/messages -> SendMessage
//   - GET  /api/chat/messages -> ListMessages
//   - GET  /api/chat/usage    -> Usage
//
// Chat works for both authenticated users and anonymous visitors:
// authenticated sessions are keyed by user ID and governed by the
// subscription tier, anonymous sessions are keyed by client IP on the free
// tier.
package handler

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/ValayAI/pm-pathfinder/internal/auth"
	"github.com/ValayAI/pm-pathfinder/internal/chat"
	"github.com/ValayAI/pm-pathfinder/internal/domain"
)

// ChatHandler handles chat HTTP requests.
type ChatHandler struct {
	manager *chat.Manager
	logger  *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(manager *chat.Manager, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		manager: manager,
		logger:  logger,
	}
}

// SessionKey derives the chat session key for a request. User-keyed sessions
// survive device changes; anonymous sessions are best-effort per IP.
func SessionKey(r *http.Request) string {
	if user := auth.GetUser(r.Context()); user != nil {
		return "user:" + user.ID.String()
	}
	return "anon:" + clientIP(r)
}

// SendMessage processes one chat submission.
//
// A quota-blocked submission returns 402 with the paywall flag; the message
// is not consumed and the typed input stays with the client.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	session := h.manager.Get(SessionKey(r))
	result, err := session.Send(r.Context(), req.Message)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListMessages returns the in-memory conversation for this session.
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages := []domain.Message{}
	if session, ok := h.manager.Peek(SessionKey(r)); ok {
		messages = session.Messages()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// Usage reports the current quota position without consuming anything.
func (h *ChatHandler) Usage(w http.ResponseWriter, r *http.Request) {
	session := h.manager.Get(SessionKey(r))
	decision := session.Usage(r.Context())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"unlimited": decision.Unlimited,
		"used":      decision.Used,
		"limit":     decision.Limit,
		"remaining": decision.Remaining,
		"allowed":   decision.Allowed,
	})
}

// clientIP extracts the client IP from the request, considering proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if ip := strings.TrimSpace(ips[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
