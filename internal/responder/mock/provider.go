// Package mock provides a canned keyword-matching responder for development
// and testing.
package mock

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal/responder"
)

// Provider is a mock responder that pattern-matches keywords in the prompt
// against canned product-management coaching answers.
type Provider struct {
	logger *slog.Logger
	delay  time.Duration

	// Configurable responses for testing
	RespondResponse string
	RespondError    error

	// Call tracking for testing
	RespondCalls int
}

// canned answers keyed by the keyword that selects them. The first keyword
// found in the prompt wins, in the order listed in keywordOrder.
var canned = map[string]string{
	"rice": "RICE scoring ranks initiatives by (Reach × Impact × Confidence) ÷ Effort. " +
		"Estimate reach in users per quarter, impact on a 0.25–3 scale, confidence as a percentage, " +
		"and effort in person-months. The higher the score, the sooner it belongs on your roadmap. " +
		"Try the RICE calculator under Tools to score your backlog.",
	"roadmap": "A strong roadmap communicates outcomes, not feature lists. Group work into Now / Next / Later " +
		"horizons, anchor each theme to a measurable goal, and revisit the ordering every few weeks as " +
		"evidence comes in. The roadmap generator under Tools can draft one from your feature ideas.",
	"stakeholder": "Map your stakeholders by influence and interest, then tailor the cadence: high-influence " +
		"high-interest people get 1:1 previews before decisions land, everyone else gets a concise async update. " +
		"Disagreement is cheapest to surface early — share drafts, not finished decks.",
	"prioritiz": "Prioritization frameworks (RICE, MoSCoW, Kano) are conversation tools, not oracles. " +
		"Pick one, score transparently, and let the arguments about the inputs — not the output — drive alignment. " +
		"Re-score when reach or effort estimates change materially.",
	"interview": "For customer interviews, recruit 5–7 recent users, ask about past behavior rather than " +
		"future intent, and keep a running list of verbatim pain phrases. One strong pattern across five " +
		"interviews beats fifty survey responses.",
	"okr": "Good product OKRs describe a change in user behavior, not a shipped feature. Pair each objective " +
		"with 2–3 measurable key results, keep them few enough to remember, and grade honestly at the end of " +
		"the cycle — 0.7 is a success, 1.0 means you sandbagged.",
	"90": "A 30/60/90 plan keeps a new PM role on rails: days 1–30 are for listening and mapping the domain, " +
		"31–60 for owning small wins and building trust, 61–90 for shipping something measurable and proposing " +
		"your first strategic bet. The plan viewer under Tools has full templates per focus area.",
}

// keywordOrder fixes the match precedence so responses are deterministic.
var keywordOrder = []string{"rice", "roadmap", "stakeholder", "prioritiz", "interview", "okr", "90"}

const defaultAnswer = "That's a great product question. Start by writing down the outcome you want, " +
	"the evidence you have, and the cheapest experiment that would change your mind. " +
	"Ask me about RICE scoring, roadmaps, stakeholders, customer interviews, or OKRs for something more specific."

// New creates a new mock responder.
func New(cfg responder.Config, logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
		delay:  cfg.Delay,
	}
}

// Respond returns a canned answer selected by keyword matching.
// The artificial delay simulates generation latency.
func (p *Provider) Respond(ctx context.Context, prompt string) (string, error) {
	p.RespondCalls++

	// If a custom response or error is set, use it
	if p.RespondError != nil {
		return "", p.RespondError
	}
	if p.RespondResponse != "" {
		return p.RespondResponse, nil
	}

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", responder.WrapError("respond", ctx.Err())
		}
	}

	lowered := strings.ToLower(prompt)
	for _, keyword := range keywordOrder {
		if strings.Contains(lowered, keyword) {
			return canned[keyword], nil
		}
	}

	return defaultAnswer, nil
}

// Reset clears call counters and custom responses for testing.
func (p *Provider) Reset() {
	p.RespondCalls = 0
	p.RespondResponse = ""
	p.RespondError = nil
}
