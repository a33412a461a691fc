package preview

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/project-amenities/backend/internal/config"
)

// PresignedURLTTL is how long a preview URL handed out by MinIOStore stays valid.
const PresignedURLTTL = 15 * time.Minute

// MinIOStore keeps previews as objects in a MinIO bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewMinIOStore connects to MinIO and makes sure the bucket exists.
func NewMinIOStore(cfg *config.Config, logger *zap.Logger) (*MinIOStore, error) {
	if cfg.MinIOEndpoint == "" {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinIOBucket, err)
		}
	}

	logger.Info("Connected to MinIO", zap.String("bucket", cfg.MinIOBucket))
	return &MinIOStore{client: client, bucket: cfg.MinIOBucket, logger: logger}, nil
}

// Create uploads r and returns a presigned download URL for it.
func (s *MinIOStore) Create(ctx context.Context, name, contentType string, r io.Reader, size int64) (Preview, error) {
	key := newKey(name, contentType)

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return Preview{}, fmt.Errorf("failed to upload preview %s: %w", key, err)
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, PresignedURLTTL, url.Values{})
	if err != nil {
		return Preview{}, fmt.Errorf("failed to generate preview URL: %w", err)
	}

	return Preview{Key: key, URL: u.String()}, nil
}

// Open streams the preview object.
func (s *MinIOStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get preview %s: %w", key, err)
	}

	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to stat preview %s: %w", key, err)
	}
	return obj, info.ContentType, nil
}

// Revoke deletes the preview object.
func (s *MinIOStore) Revoke(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete preview %s: %w", key, err)
	}
	s.logger.Debug("Revoked preview", zap.String("key", key))
	return nil
}
