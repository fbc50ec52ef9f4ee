// Package chat implements the chat-session controller: per-user conversation
// state, the persisted response cache, the message quota, and the paywall
// trigger that gates chat access by subscription tier.
package chat

import "github.com/ValayAI/pm-pathfinder/internal/domain"

// NoticeKind identifies a toast-style notification raised by a session.
type NoticeKind string

const (
	NoticeCachedReply      NoticeKind = "cached_reply"
	NoticeLimitApproaching NoticeKind = "limit_approaching"
	NoticeLimitReached     NoticeKind = "limit_reached"
	NoticeResponderError   NoticeKind = "responder_error"
)

// Notice is a transient, non-blocking notification for the UI layer.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Paywall trigger reasons.
const (
	PaywallReasonExhausted    = "quota_exhausted" // Submission blocked before any call
	PaywallReasonLimitReached = "limit_reached"   // Final allowed message just delivered
)

// EventSink receives the UI-visible side effects of a session: appended
// messages, the loading flag, notices, and paywall opens. Implementations
// must be safe for use from the session goroutine plus delayed timers.
type EventSink interface {
	// MessageAppended is called for every message added to the conversation,
	// user and assistant alike, in conversation order.
	MessageAppended(msg domain.Message)

	// LoadingChanged signals the indeterminate progress indicator while a
	// live response is awaited.
	LoadingChanged(loading bool)

	// NoticeRaised delivers a transient notification.
	NoticeRaised(n Notice)

	// PaywallOpened asks the UI layer to open the upgrade paywall.
	PaywallOpened(reason string)
}

// NopSink discards all events. Useful when a caller only consumes SendResult.
type NopSink struct{}

func (NopSink) MessageAppended(domain.Message) {}
func (NopSink) LoadingChanged(bool)            {}
func (NopSink) NoticeRaised(Notice)            {}
func (NopSink) PaywallOpened(string)           {}
