package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// LocalStore Implementation
// =============================================================================

// LocalStore implements StateStore using the local filesystem.
// Each key maps to one JSON document file under the base directory.
//
// Security: path traversal prevention is enforced in resolvePath().
type LocalStore struct {
	basePath string
	logger   *slog.Logger
}

// NewLocalStore creates a new LocalStore instance.
//
// The base directory is created if it doesn't exist.
func NewLocalStore(basePath string, logger *slog.Logger) (*LocalStore, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	logger.Info("initialized local state store", "base_path", absPath)

	return &LocalStore{
		basePath: absPath,
		logger:   logger,
	}, nil
}

// Get retrieves the document at the specified key.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	path, err := s.resolvePath(key)
	if err != nil {
		return nil, &StoreError{Op: "Get", Key: key, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &StoreError{Op: "Get", Key: key, Err: ErrNotFound}
		}
		return nil, &StoreError{Op: "Get", Key: key, Err: err}
	}

	return data, nil
}

// Put stores a document at the specified key, replacing any existing one.
// The write goes through a temp file and rename so readers never observe a
// partially written document.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	path, err := s.resolvePath(key)
	if err != nil {
		return &StoreError{Op: "Put", Key: key, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &StoreError{Op: "Put", Key: key, Err: fmt.Errorf("failed to create directory: %w", err)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".state-*")
	if err != nil {
		return &StoreError{Op: "Put", Key: key, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StoreError{Op: "Put", Key: key, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StoreError{Op: "Put", Key: key, Err: err}
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &StoreError{Op: "Put", Key: key, Err: err}
	}

	return nil
}

// Delete removes the document at the specified key.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	path, err := s.resolvePath(key)
	if err != nil {
		return &StoreError{Op: "Delete", Key: key, Err: err}
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StoreError{Op: "Delete", Key: key, Err: err}
	}

	return nil
}

// resolvePath maps a key to a file path under basePath and rejects keys that
// would escape it.
func (s *LocalStore) resolvePath(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	// Keys may contain ':' separators; flatten them for the filesystem.
	rel := strings.ReplaceAll(key, ":", "_") + ".json"
	path := filepath.Join(s.basePath, filepath.FromSlash(rel))

	// Defense in depth against traversal after joining.
	if !strings.HasPrefix(path, s.basePath+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}

	return path, nil
}
