// Package responder defines the interface to the chat response backend.
//
// The chat controller assumes nothing about the backend beyond "it may fail":
// no latency contract, no failure distribution. The only implementation today
// is the mock keyword matcher in the mock subpackage, standing in for a real
// generation backend.
package responder

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Responder produces an assistant reply for a user prompt.
type Responder interface {
	// Respond returns the reply text for the given prompt.
	// The prompt is passed through raw (not normalized).
	Respond(ctx context.Context, prompt string) (string, error)
}

// Config contains common configuration for responder implementations.
type Config struct {
	Delay time.Duration // Artificial latency before a reply is produced
}

// Error values for responder operations.
var (
	// ErrUnavailable indicates the response backend is temporarily unavailable.
	ErrUnavailable = errors.New("responder temporarily unavailable")

	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("responder request timed out")
)

// WrapError wraps an error with context about the responder operation.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("responder %s: %w", operation, err)
}
