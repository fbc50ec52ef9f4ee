package mock

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal/responder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider() *Provider {
	return New(responder.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRespond_KeywordMatching(t *testing.T) {
	p := newTestProvider()

	tests := []struct {
		prompt   string
		contains string
	}{
		{"How do I use RICE scoring?", "RICE scoring ranks"},
		{"help me build a roadmap", "Now / Next / Later"},
		{"managing difficult stakeholders", "influence and interest"},
		{"what should my 30/60/90 plan look like", "30/60/90 plan"},
		{"tell me something about product", "great product question"},
	}

	for _, tt := range tests {
		got, err := p.Respond(context.Background(), tt.prompt)
		require.NoError(t, err)
		if !strings.Contains(got, tt.contains) {
			t.Errorf("Respond(%q) = %q, want substring %q", tt.prompt, got, tt.contains)
		}
	}
}

func TestRespond_CaseInsensitive(t *testing.T) {
	p := newTestProvider()

	upper, err := p.Respond(context.Background(), "ROADMAP please")
	require.NoError(t, err)
	lower, err := p.Respond(context.Background(), "roadmap please")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
}

func TestRespond_ConfiguredError(t *testing.T) {
	p := newTestProvider()
	p.RespondError = errors.New("backend down")

	_, err := p.Respond(context.Background(), "anything")
	assert.Error(t, err)
	assert.Equal(t, 1, p.RespondCalls)
}

func TestRespond_ConfiguredResponse(t *testing.T) {
	p := newTestProvider()
	p.RespondResponse = "custom answer"

	got, err := p.Respond(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "custom answer", got)
}

func TestRespond_ContextCancelledDuringDelay(t *testing.T) {
	p := New(responder.Config{Delay: time.Minute}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Respond(ctx, "anything")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	p := newTestProvider()
	p.RespondResponse = "x"
	p.RespondError = errors.New("y")
	p.RespondCalls = 3

	p.Reset()

	assert.Equal(t, 0, p.RespondCalls)
	assert.Empty(t, p.RespondResponse)
	assert.NoError(t, p.RespondError)
}
