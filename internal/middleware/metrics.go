package middleware

import (
	"crypto/subtle"
	"net/http"
)

// MetricsAuthMiddleware gates the Prometheus scrape endpoint behind basic
// auth. With no credentials configured the gate is a pass-through, which is
// acceptable only when the endpoint is network-restricted.
type MetricsAuthMiddleware struct {
	username string
	password string
}

// NewMetricsAuthMiddleware creates a new metrics auth middleware.
// If both username and password are empty, authentication is disabled.
func NewMetricsAuthMiddleware(username, password string) *MetricsAuthMiddleware {
	return &MetricsAuthMiddleware{username: username, password: password}
}

// Handler returns middleware that requires basic authentication.
func (m *MetricsAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.username == "" && m.password == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !m.credentialsMatch(user, pass) {
			w.Header().Set("WWW-Authenticate", `Basic realm="metrics"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// credentialsMatch compares in constant time to prevent timing attacks.
func (m *MetricsAuthMiddleware) credentialsMatch(user, pass string) bool {
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(m.username)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(m.password)) == 1
	return userMatch && passMatch
}
