package preview

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStore keeps previews as files below a base directory and serves them
// through the API.
type LocalStore struct {
	basePath  string
	urlPrefix string
	logger    *zap.Logger
}

// NewLocalStore creates the base directory if needed.
func NewLocalStore(basePath, urlPrefix string, logger *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preview directory: %w", err)
	}
	return &LocalStore{
		basePath:  basePath,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		logger:    logger,
	}, nil
}

// Create writes r to a new file and returns its preview handle.
func (s *LocalStore) Create(ctx context.Context, name, contentType string, r io.Reader, size int64) (Preview, error) {
	key := newKey(name, contentType)
	filePath := filepath.Join(s.basePath, key)

	f, err := os.Create(filePath)
	if err != nil {
		return Preview{}, fmt.Errorf("failed to create preview file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		if rerr := os.Remove(filePath); rerr != nil {
			s.logger.Error("Failed to remove preview after write error", zap.Error(rerr))
		}
		return Preview{}, fmt.Errorf("failed to write preview file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			s.logger.Error("Failed to remove preview after close error", zap.Error(rerr))
		}
		return Preview{}, fmt.Errorf("failed to close preview file: %w", err)
	}

	s.logger.Debug("Created preview", zap.String("key", key), zap.String("name", name))
	return Preview{Key: key, URL: s.urlPrefix + "/" + key}, nil
}

// Open returns the preview file and its content type.
func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open preview: %w", err)
	}
	return f, extToContentType(filePath), nil
}

// Revoke deletes the preview file.
func (s *LocalStore) Revoke(ctx context.Context, key string) error {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete preview: %w", err)
	}

	s.logger.Debug("Revoked preview", zap.String("key", key))
	return nil
}

// safeJoin resolves key relative to basePath and rejects directory traversal.
func (s *LocalStore) safeJoin(key string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, key))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid preview key %q: %w", key, ErrNotFound)
	}
	return absPath, nil
}
