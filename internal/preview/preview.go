// Package preview stores uploaded image files and hands out URLs that resolve
// to them for as long as the owning form session keeps them.
package preview

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned for keys that were never created or already revoked.
var ErrNotFound = errors.New("preview not found")

// Preview is a created preview handle.
type Preview struct {
	Key string
	URL string
}

// Store creates and revokes image previews.
type Store interface {
	Create(ctx context.Context, name, contentType string, r io.Reader, size int64) (Preview, error)
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	Revoke(ctx context.Context, key string) error
}

// newKey returns a unique storage key keeping the extension of name.
func newKey(name, contentType string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		ext = contentTypeToExt(contentType)
	}
	return uuid.New().String() + ext
}

func contentTypeToExt(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func extToContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
