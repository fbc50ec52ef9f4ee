package service

import (
	"strings"
	"testing"
)

// =============================================================================
// Password Validation Tests
// =============================================================================

func TestValidatePassword_MinimumLength(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"too short - 7 chars", "Abcdef1", false},
		{"minimum - 8 chars", "Abcdef12", true},
		{"longer - 12 chars", "Abcdefgh1234", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.password)
			if tc.valid && err != nil {
				t.Errorf("expected valid, got error: %v", err)
			}
			if !tc.valid && err == nil {
				t.Error("expected error for short password")
			}
		})
	}
}

func TestValidatePassword_MaximumLength(t *testing.T) {
	// 72 is the bcrypt limit
	longPassword := strings.Repeat("Aa1", 24) // 72 chars
	tooLong := strings.Repeat("Aa1", 25)      // 75 chars

	if err := validatePassword(longPassword); err != nil {
		t.Errorf("72 char password should be valid: %v", err)
	}

	if err := validatePassword(tooLong); err == nil {
		t.Error("73+ char password should be invalid")
	}
}

// =============================================================================
// Email Validation Tests
// =============================================================================

func TestValidateEmail(t *testing.T) {
	testCases := []struct {
		name  string
		email string
		valid bool
	}{
		{"valid simple", "user@example.com", true},
		{"valid subdomain", "user@mail.example.com", true},
		{"valid plus tag", "user+tag@example.com", true},
		{"empty", "", false},
		{"no at", "userexample.com", false},
		{"two ats", "user@@example.com", false},
		{"starts with at", "@example.com", false},
		{"ends with at", "user@", false},
		{"no dot in domain", "user@example", false},
		{"consecutive dots", "user..name@example.com", false},
		{"too long", strings.Repeat("a", 250) + "@e.com", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateEmail(tc.email)
			if tc.valid && err != nil {
				t.Errorf("expected valid, got error: %v", err)
			}
			if !tc.valid && err == nil {
				t.Errorf("expected error for email %q", tc.email)
			}
		})
	}
}

// =============================================================================
// Session Token Tests
// =============================================================================

func TestGenerateSessionToken(t *testing.T) {
	token, err := generateSessionToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 32 random bytes hex-encoded = 64 characters
	if len(token) != 64 {
		t.Errorf("expected 64-char token, got %d chars", len(token))
	}

	// Tokens must be unique
	token2, err := generateSessionToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == token2 {
		t.Error("two generated tokens should never match")
	}
}

func TestHashSessionToken(t *testing.T) {
	token := "abc123"

	hash1 := hashSessionToken(token)
	hash2 := hashSessionToken(token)

	// Deterministic: same input, same hash
	if hash1 != hash2 {
		t.Error("hashing the same token twice should produce the same hash")
	}

	// SHA-256 hex = 64 characters
	if len(hash1) != 64 {
		t.Errorf("expected 64-char hash, got %d chars", len(hash1))
	}

	// Hash must not equal the raw token
	if hash1 == token {
		t.Error("hash should differ from the raw token")
	}

	if hashSessionToken("other") == hash1 {
		t.Error("different tokens should produce different hashes")
	}
}
