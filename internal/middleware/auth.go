// Package middleware contains HTTP middleware for the PM Pathfinder API.
//
// Middleware functions follow the standard Go pattern of wrapping
// http.Handler and are composed with Stack.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ValayAI/pm-pathfinder/internal/auth"
	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"github.com/ValayAI/pm-pathfinder/internal/handler"
	"github.com/ValayAI/pm-pathfinder/internal/service"
	"github.com/ValayAI/pm-pathfinder/internal/session"
)

// AuthMiddleware resolves the session cookie into an authenticated user and
// enforces access levels on protected routes.
type AuthMiddleware struct {
	userService service.UserService
	logger      *slog.Logger
	isSecure    bool // Whether to set Secure flag on cookies (true in production)
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(userService service.UserService, logger *slog.Logger, isSecure bool) *AuthMiddleware {
	return &AuthMiddleware{
		userService: userService,
		logger:      logger,
		isSecure:    isSecure,
	}
}

// WithUser loads the user from the session cookie into the request context
// and continues regardless of authentication status. Routes that serve both
// authenticated and anonymous traffic use only this (the chat endpoint gives
// anonymous visitors free-tier sessions).
//
// Handlers read the result with auth.GetUser(r.Context()).
func (m *AuthMiddleware) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.userService.GetBySessionToken(r.Context(), cookie.Value)
		if err != nil {
			// Invalid or expired session. Clear the cookie and continue
			// as anonymous rather than failing the request.
			ClearSessionCookie(w, m.isSecure)
			next.ServeHTTP(w, r)
			return
		}

		ctx := auth.SetUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects unauthenticated requests with a 401 JSON error.
// Must run after WithUser in the chain.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) == nil {
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireActiveSubscription rejects users without an active or trialing
// subscription with a 402. It guards the premium planning tools; the chat
// endpoint does NOT use it, since free-tier chat access is governed by the
// message quota instead. Must run after RequireUser.
func (m *AuthMiddleware) RequireActiveSubscription(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.GetUser(r.Context())
		if user == nil {
			m.logger.Error("RequireActiveSubscription called without user in context")
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		if !user.IsActive() {
			err := domain.Errorf(domain.EPAYMENT, "", "Active subscription required")
			handler.ErrorResponse(w, r, m.logger, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Cookie Helpers
// =============================================================================

// SetSessionCookie sets the session cookie: HttpOnly, SameSite Lax, Secure in
// production, lifetime matching the server-side session duration.
func SetSessionCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     session.CookiePath,
		MaxAge:   session.CookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     session.CookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Stack composes middleware; the first argument is the outermost wrapper.
//
//	requireUser := Stack(authMw.WithUser, authMw.RequireUser)
//	mux.Handle("GET /api/me", requireUser(meHandler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

var (
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).WithUser
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).RequireUser
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).RequireActiveSubscription
)
