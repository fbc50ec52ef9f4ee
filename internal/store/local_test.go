package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	s, err := NewLocalStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("failed to create local store: %v", err)
	}
	return s
}

func TestLocalStore_PutGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "chat/user-1/usage", []byte(`{"count":3}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	data, err := s.Get(ctx, "chat/user-1/usage")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != `{"count":3}` {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestLocalStore_PutReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "doc", []byte("v1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, "doc", []byte("v2")); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	data, err := s.Get(ctx, "doc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "v2" {
		t.Errorf("expected v2, got %s", data)
	}
}

func TestLocalStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalStore_DeleteIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "doc", []byte("x")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Delete(ctx, "doc"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	// Deleting again is not an error.
	if err := s.Delete(ctx, "doc"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}

	if _, err := s.Get(ctx, "doc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	keys := []string{"../escape", "/abs", "a/../../b", "", "bad key"}
	for _, key := range keys {
		if err := s.Put(ctx, key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q) should be rejected, got %v", key, err)
		}
	}
}

func TestValidateKey(t *testing.T) {
	valid := []string{"chat/u1/cache", "usage:abc", "a-b_c.d"}
	for _, key := range valid {
		if err := ValidateKey(key); err != nil {
			t.Errorf("ValidateKey(%q) = %v, want nil", key, err)
		}
	}
}
