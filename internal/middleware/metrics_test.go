package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func metricsTestHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMetricsAuth_ValidCredentials(t *testing.T) {
	mw := NewMetricsAuthMiddleware("admin", "secret123")

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("admin", "secret123")
	rec := httptest.NewRecorder()

	mw.Handler(metricsTestHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsAuth_MissingCredentials(t *testing.T) {
	mw := NewMetricsAuthMiddleware("admin", "secret123")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()

	mw.Handler(metricsTestHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
}

func TestMetricsAuth_WrongPassword(t *testing.T) {
	mw := NewMetricsAuthMiddleware("admin", "secret123")

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("admin", "wrongpassword")
	rec := httptest.NewRecorder()

	mw.Handler(metricsTestHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsAuth_DisabledWhenUnconfigured(t *testing.T) {
	mw := NewMetricsAuthMiddleware("", "")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()

	mw.Handler(metricsTestHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
