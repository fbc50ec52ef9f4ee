// Package store provides the persistent state store for per-user chat state.
//
// The state store is a small key-value document store that holds the JSON
// response cache and usage counter for each user so they survive restarts.
// Two implementations exist:
//   - LocalStore: files on the local filesystem (development)
//   - R2Store: Cloudflare R2 (S3-compatible) object storage (production)
//
// Readers must treat malformed documents as absent; corrupt state is never
// an error surfaced to the user.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// StateStore defines the interface for persisted chat state.
//
// All methods are context-aware for timeout and cancellation support.
type StateStore interface {
	// Get retrieves the document at the specified key.
	// Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores a document at the specified key, replacing any existing one.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the document at the specified key.
	// This operation is idempotent - no error is returned for a missing key.
	Delete(ctx context.Context, key string) error
}

// Sentinel errors returned by state store operations.
var (
	// ErrNotFound indicates the requested key does not exist.
	ErrNotFound = errors.New("key not found")

	// ErrInvalidKey indicates the key contains illegal path elements.
	ErrInvalidKey = errors.New("invalid key")
)

// StoreError wraps an error with the operation and key that produced it.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidateKey rejects keys that could escape the store's namespace.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == '/' || r == ':':
		default:
			return ErrInvalidKey
		}
	}
	return nil
}
