package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"github.com/ValayAI/pm-pathfinder/internal/metrics"
	"github.com/ValayAI/pm-pathfinder/internal/responder"
	"github.com/ValayAI/pm-pathfinder/internal/store"
)

const (
	// DefaultCachedReplyDelay is the pause before a cached reply is
	// delivered, so the answer doesn't appear uncannily instantaneous.
	DefaultCachedReplyDelay = 500 * time.Millisecond

	// DefaultPaywallDelay is the pause between the limit-reached notice and
	// the paywall opening, so the final message stays visible first.
	DefaultPaywallDelay = 1500 * time.Millisecond

	// FallbackReply is the fixed assistant message inserted when the
	// responder fails.
	FallbackReply = "Sorry, I couldn't process your request. Please try again in a moment."
)

// Config tunes the timing behavior of a session. Zero values select the
// package defaults; tests set tiny delays to run fast.
type Config struct {
	CacheSize        int
	CacheTTL         time.Duration
	CachedReplyDelay time.Duration
	PaywallDelay     time.Duration
	RefreshInterval  time.Duration
}

func (c Config) withDefaults() Config {
	if c.CachedReplyDelay <= 0 {
		c.CachedReplyDelay = DefaultCachedReplyDelay
	}
	if c.PaywallDelay <= 0 {
		c.PaywallDelay = DefaultPaywallDelay
	}
	return c
}

// SendResult is what one successful (non-blocked) submission produced.
type SendResult struct {
	UserMessage domain.Message `json:"user_message"`
	Reply       domain.Message `json:"reply"`
	FromCache   bool           `json:"from_cache"`
	Failed      bool           `json:"failed"` // Reply is the fallback message
	Notices     []Notice       `json:"notices,omitempty"`

	// Quota state after this submission (zero-valued when Unlimited).
	Unlimited    bool `json:"unlimited"`
	Used         int  `json:"used"`
	Remaining    int  `json:"remaining"`
	LimitReached bool `json:"limit_reached"`
}

// Session orchestrates a single conversation: it accepts user input, decides
// cache-hit vs. quota-check vs. live generation, updates the usage counter,
// and asks the sink to open the paywall when the quota runs out.
//
// All submissions for one session are serialized through its mutex, so
// message-list and persisted-state mutations never interleave. Conversation
// messages live only in memory and disappear when the session is evicted.
type Session struct {
	cache     *ResponseCache
	usage     *UsageTracker
	plans     *SubscriptionReader
	responder responder.Responder
	sink      EventSink
	logger    *slog.Logger
	cfg       Config

	// sleep and schedule are replaced in tests.
	sleep    func(d time.Duration)
	schedule func(d time.Duration, f func())

	mu         sync.Mutex
	messages   []domain.Message
	lastActive time.Time
}

// NewSession wires a session for one user key. The response cache and usage
// counter are persisted under "chat/<key>/..." in the state store.
func NewSession(key string, st store.StateStore, source PlanSource, resp responder.Responder, sink EventSink, logger *slog.Logger, cfg Config) *Session {
	cfg = cfg.withDefaults()
	if sink == nil {
		sink = NopSink{}
	}
	return &Session{
		cache:     NewResponseCache(st, "chat/"+key+"/cache", cfg.CacheSize, cfg.CacheTTL, logger),
		usage:     NewUsageTracker(st, "chat/"+key+"/usage", logger),
		plans:     NewSubscriptionReader(source, cfg.RefreshInterval, logger),
		responder: resp,
		sink:      sink,
		logger:    logger,
		cfg:       cfg,
		sleep:     time.Sleep,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		lastActive: time.Now(),
	}
}

// Send processes one submission.
//
// Per-submission ordering guarantees: the user message is always appended
// before any assistant message; the cache is written only after the live
// response has fully resolved; the usage counter is incremented only after
// the assistant message is appended, so a failed response never consumes
// quota.
//
// A blocked submission returns a domain error with code EPAYMENT, appends no
// message, and never reaches the responder; the typed input stays with the
// caller. Responder failures are converted into a fallback reply, not an
// error.
func (s *Session) Send(ctx context.Context, input string) (*SendResult, error) {
	const op = "chat.send"

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, domain.Invalid(op, "Message cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	// Refresh the plan view if stale before any usage-affecting decision.
	snap := s.plans.Snapshot(ctx)
	quota := domain.TierQuota{Messages: snap.Quota, Unlimited: snap.Unlimited}

	decision := Decide(quota, s.usage.Used(ctx))
	if !decision.Allowed {
		metrics.QuotaBlocksTotal.Inc()
		metrics.PaywallOpensTotal.WithLabelValues(PaywallReasonExhausted).Inc()
		s.logger.Info("submission blocked by quota",
			"tier", snap.Tier,
			"used", decision.Used,
			"limit", decision.Limit,
		)
		s.sink.PaywallOpened(PaywallReasonExhausted)
		return nil, domain.QuotaExhausted(op, decision.Used, decision.Limit)
	}

	if cached, ok := s.cache.Lookup(ctx, trimmed); ok {
		metrics.ChatCacheLookups.WithLabelValues("hit").Inc()
		return s.deliverCached(trimmed, cached, decision), nil
	}
	metrics.ChatCacheLookups.WithLabelValues("miss").Inc()

	return s.deliverLive(ctx, input, trimmed, snap), nil
}

// deliverCached serves a memoized reply. Cache hits never touch the usage
// counter.
func (s *Session) deliverCached(trimmed, cached string, decision Decision) *SendResult {
	userMsg := s.append(domain.NewMessage(domain.MessageRoleUser, trimmed))

	// A beat of artificial latency keeps the reply from feeling canned.
	s.sleep(s.cfg.CachedReplyDelay)

	reply := domain.NewMessage(domain.MessageRoleAssistant, cached)
	reply.FromCache = true
	reply = s.append(reply)

	notice := Notice{Kind: NoticeCachedReply, Message: "Retrieved from a recent answer."}
	s.sink.NoticeRaised(notice)
	metrics.ChatMessagesTotal.WithLabelValues("cache").Inc()

	// Quota state is untouched: report it as it was before the submission.
	return &SendResult{
		UserMessage: userMsg,
		Reply:       reply,
		FromCache:   true,
		Notices:     []Notice{notice},
		Unlimited:   decision.Unlimited,
		Used:        decision.Used,
		Remaining:   decision.Remaining,
	}
}

// deliverLive calls the responder and handles both outcomes.
func (s *Session) deliverLive(ctx context.Context, raw, trimmed string, snap Snapshot) *SendResult {
	userMsg := s.append(domain.NewMessage(domain.MessageRoleUser, trimmed))

	s.sink.LoadingChanged(true)
	// The responder gets the raw input, not the normalized cache key.
	out, err := s.responder.Respond(ctx, raw)
	s.sink.LoadingChanged(false)

	if err != nil {
		s.logger.Warn("responder failed", "error", err)
		reply := s.append(domain.NewMessage(domain.MessageRoleAssistant, FallbackReply))
		notice := Notice{Kind: NoticeResponderError, Message: "Something went wrong. Your message didn't count against your limit."}
		s.sink.NoticeRaised(notice)
		metrics.ChatMessagesTotal.WithLabelValues("error").Inc()
		// No cache write, no quota increment.
		return &SendResult{
			UserMessage: userMsg,
			Reply:       reply,
			Failed:      true,
			Notices:     []Notice{notice},
			Unlimited:   snap.Unlimited,
		}
	}

	reply := s.append(domain.NewMessage(domain.MessageRoleAssistant, out))
	s.cache.Store(ctx, trimmed, out)
	metrics.ChatMessagesTotal.WithLabelValues("live").Inc()

	result := &SendResult{
		UserMessage: userMsg,
		Reply:       reply,
		Unlimited:   snap.Unlimited,
	}

	if !snap.Unlimited {
		used := s.usage.Record(ctx)
		remaining := snap.Quota - used
		if remaining < 0 {
			remaining = 0
		}
		result.Used = used
		result.Remaining = remaining

		switch {
		case used >= snap.Quota:
			result.LimitReached = true
			notice := Notice{Kind: NoticeLimitReached, Message: "You've reached your plan's message limit."}
			result.Notices = append(result.Notices, notice)
			s.sink.NoticeRaised(notice)
			metrics.PaywallOpensTotal.WithLabelValues(PaywallReasonLimitReached).Inc()
			// Let the just-delivered reply land before the paywall covers it.
			s.schedule(s.cfg.PaywallDelay, func() {
				s.sink.PaywallOpened(PaywallReasonLimitReached)
			})
		case remaining <= WarnRemainingThreshold:
			notice := Notice{Kind: NoticeLimitApproaching, Message: "You're approaching your plan's message limit."}
			result.Notices = append(result.Notices, notice)
			s.sink.NoticeRaised(notice)
		}
	}

	// Opportunistic refresh off the critical path.
	go func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.plans.Snapshot(refreshCtx)
	}()

	return result
}

// append adds a message to the conversation and notifies the sink.
// Callers hold s.mu.
func (s *Session) append(msg domain.Message) domain.Message {
	s.messages = append(s.messages, msg)
	s.sink.MessageAppended(msg)
	return msg
}

// Messages returns a copy of the conversation in insertion order.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Usage reports the current quota position without consuming anything.
func (s *Session) Usage(ctx context.Context) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.plans.Snapshot(ctx)
	quota := domain.TierQuota{Messages: snap.Quota, Unlimited: snap.Unlimited}
	return Decide(quota, s.usage.Used(ctx))
}

// ResetUsage clears the persisted usage counter. Invoked from the billing
// path when the governing subscription changes tier.
func (s *Session) ResetUsage(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage.Reset(ctx)
}

// LastActive reports when the session last processed a submission.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
