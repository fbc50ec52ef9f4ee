package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ValayAI/pm-pathfinder/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EPAYMENT, http.StatusPaymentRequired},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EUNAVAILABLE, http.StatusServiceUnavailable},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"bogus_code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := ErrorCodeToHTTPStatus(tt.code); got != tt.want {
			t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestErrorResponse_QuotaErrorsCarryPaywallFlag(t *testing.T) {
	err := domain.Errorf(domain.EPAYMENT, "chat.Send", "You've used all your free messages")

	req := httptest.NewRequest("POST", "/api/chat/messages", nil)
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, testLogger(), err)

	if rec.Code != http.StatusPaymentRequired {
		t.Errorf("status = %d, want 402", rec.Code)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Paywall bool `json:"paywall"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}

	if body.Error.Code != domain.EPAYMENT {
		t.Errorf("error code = %q, want %q", body.Error.Code, domain.EPAYMENT)
	}
	if !body.Paywall {
		t.Error("expected paywall flag on quota error")
	}
}

func TestErrorResponse_NonQuotaErrorsOmitPaywall(t *testing.T) {
	err := domain.Errorf(domain.EINVALID, "chat.Send", "Message cannot be empty")

	req := httptest.NewRequest("POST", "/api/chat/messages", nil)
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, testLogger(), err)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "paywall") {
		t.Errorf("non-quota error should not carry paywall flag: %s", rec.Body.String())
	}
}

func TestErrorResponse_InternalDetailsAreHidden(t *testing.T) {
	cause := errors.New("pq: connection refused on host db.internal:5432")

	req := httptest.NewRequest("GET", "/api/me", nil)
	rec := httptest.NewRecorder()

	InternalErrorResponse(rec, req, testLogger(), cause)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	body := rec.Body.String()
	if strings.Contains(body, "db.internal") || strings.Contains(body, "connection refused") {
		t.Errorf("response exposes internal error details: %s", body)
	}
	if !strings.Contains(body, "An unexpected error occurred") {
		t.Errorf("response should contain the generic message, got: %s", body)
	}
}

func TestErrorResponse_ContentTypeIsJSON(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/missing", nil)
	rec := httptest.NewRecorder()

	NotFoundResponse(rec, req, testLogger())

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}
