// Package auth provides authentication context helpers.
//
// It sits below both the middleware and handler packages so either can read
// the authenticated user without an import cycle.
package auth

import (
	"context"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey contextKey = "user"

// GetUser retrieves the authenticated user from the context.
// Returns nil if no user is authenticated.
func GetUser(ctx context.Context) *domain.User {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// SetUser stores a user in the context. Called by the auth middleware after
// validating a session token.
func SetUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
