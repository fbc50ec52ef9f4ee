// Package handler contains HTTP handlers for the PM Pathfinder API.
//
// This file implements authentication handlers.
//
// Routes handled:
//   - POST /api/auth/register -> Register
//   - POST /api/auth/login    -> Login
//   - POST /api/auth/logout   -> Logout
//   - GET  /api/me            -> Me
package handler

import (
	"log/slog"
	"net/http"

	"github.com/ValayAI/pm-pathfinder/internal/auth"
	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"github.com/ValayAI/pm-pathfinder/internal/service"
	"github.com/ValayAI/pm-pathfinder/internal/session"
)

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	userService service.UserService
	logger      *slog.Logger
	isSecure    bool // Whether to set Secure flag on cookies

	// recordFailedLogin and resetLogin hook the auth rate limiter so failed
	// attempts count against the per-IP budget. Either may be nil.
	recordFailedLogin func(ip string)
	resetLogin        func(ip string)
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService service.UserService, logger *slog.Logger, isSecure bool) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
		isSecure:    isSecure,
	}
}

// SetLoginRateHooks wires the rate limiter callbacks for login tracking.
func (h *AuthHandler) SetLoginRateHooks(recordFailure, reset func(ip string)) {
	h.recordFailedLogin = recordFailure
	h.resetLogin = reset
}

// userResponse is the JSON shape of a user, without sensitive fields.
type userResponse struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	SubscriptionStatus string `json:"subscription_status"`
	SubscriptionTier   string `json:"subscription_tier"`
	EffectiveTier      string `json:"effective_tier"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                 u.ID.String(),
		Email:              u.Email,
		Name:               u.Name,
		SubscriptionStatus: string(u.SubscriptionStatus),
		SubscriptionTier:   string(u.SubscriptionTier),
		EffectiveTier:      string(u.EffectiveTier()),
	}
}

// Register creates a new account and logs the user straight in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Register(r.Context(), domain.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// Log the new user in immediately so the client has a session.
	result, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Account exists; the client can log in manually.
		h.logger.Warn("post-registration login failed", "user_id", user.ID, "error", err)
		writeJSON(w, http.StatusCreated, map[string]interface{}{"user": toUserResponse(user)})
		return
	}

	setSessionCookie(w, result.Token, h.isSecure)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": toUserResponse(result.User)})
}

// Login authenticates a user and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.recordFailedLogin != nil && domain.ErrorCode(err) == domain.EUNAUTHORIZED {
			h.recordFailedLogin(clientIP(r))
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	if h.resetLogin != nil {
		h.resetLogin(clientIP(r))
	}

	setSessionCookie(w, result.Token, h.isSecure)
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": toUserResponse(result.User)})
}

// Logout invalidates the current session and clears the cookie.
// Idempotent: logging out without a session still succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if err := h.userService.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("logout failed", "error", err)
		}
	}

	clearSessionCookie(w, h.isSecure)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me returns the authenticated user. Requires the RequireUser middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": toUserResponse(user)})
}

// =============================================================================
// Cookie Helpers
// =============================================================================

func setSessionCookie(w http.ResponseWriter, token string, isSecure bool) {
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

func clearSessionCookie(w http.ResponseWriter, isSecure bool) {
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
