// Package cache provides Redis storage for form drafts and the submitted document.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/project-amenities/backend/internal/config"
	"github.com/project-amenities/backend/internal/form"
	"github.com/project-amenities/backend/internal/models"
)

const (
	// Cache key prefixes
	documentKeyPrefix = "form:document:"
	draftKeyPrefix    = "form:draft:"

	// Sorted set of live preview keys scored by the unix time after which
	// their owning draft has expired.
	previewIndexKey = "form:previews"

	// Default TTL for the cached document
	defaultTTL = 5 * time.Minute
)

// DocumentCache defines read-through caching of the submitted document.
type DocumentCache interface {
	// Get returns the cached document; a miss returns nil.
	Get(ctx context.Context) (*models.FormDocument, error)

	// Set stores the document in cache.
	Set(ctx context.Context, doc *models.FormDocument) error

	// Invalidate removes the cached document.
	Invalidate(ctx context.Context) error
}

// DraftStore keeps the state of open form sessions.
type DraftStore interface {
	// Get returns the draft of a session, or nil if it does not exist.
	Get(ctx context.Context, id string) (*form.Draft, error)

	// Put stores the draft and refreshes its expiry.
	Put(ctx context.Context, draft *form.Draft) error

	// Delete removes the draft of a session.
	Delete(ctx context.Context, id string) error
}

// PreviewIndex records the preview keys held by drafts so previews of
// expired drafts can be found and revoked.
type PreviewIndex interface {
	// Track marks keys as owned by a draft that is alive for another draft TTL.
	Track(ctx context.Context, keys ...string) error

	// Untrack forgets keys whose previews were revoked.
	Untrack(ctx context.Context, keys ...string) error

	// Expired returns up to limit keys whose owning draft expired before t.
	Expired(ctx context.Context, t time.Time, limit int64) ([]string, error)
}

// RedisCache implements DocumentCache, DraftStore and PreviewIndex using Redis.
type RedisCache struct {
	client   *redis.Client
	logger   *zap.Logger
	ttl      time.Duration
	draftTTL time.Duration
}

// NewRedisCache creates a new Redis cache.
func NewRedisCache(cfg *config.Config, logger *zap.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis cache")

	return NewRedisCacheWithClient(client, cfg.DraftTTL, logger), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, draftTTL time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client:   client,
		logger:   logger,
		ttl:      defaultTTL,
		draftTTL: draftTTL,
	}
}

// Get retrieves the submitted document from cache.
func (c *RedisCache) Get(ctx context.Context) (*models.FormDocument, error) {
	key := documentKeyPrefix + models.StorageKey

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		c.logger.Warn("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, nil // Treat errors as cache miss
	}

	var doc models.FormDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		c.logger.Warn("Failed to unmarshal cached document", zap.Error(err))
		return nil, nil
	}

	c.logger.Debug("Cache hit", zap.String("key", key))
	return &doc, nil
}

// Set stores the submitted document in cache.
func (c *RedisCache) Set(ctx context.Context, doc *models.FormDocument) error {
	key := documentKeyPrefix + models.StorageKey

	data, err := json.Marshal(doc)
	if err != nil {
		c.logger.Warn("Failed to marshal document for cache", zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to set cache", zap.String("key", key), zap.Error(err))
		return err
	}

	c.logger.Debug("Cached document", zap.String("key", key))
	return nil
}

// Invalidate removes the cached document.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, documentKeyPrefix+models.StorageKey).Err(); err != nil {
		c.logger.Warn("Failed to invalidate document cache", zap.Error(err))
		return err
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	c.logger.Info("Closing Redis connection")
	return c.client.Close()
}

// Track implements PreviewIndex.
func (c *RedisCache) Track(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.ZAdd(ctx, previewIndexKey, c.previewMembers(keys)...).Err(); err != nil {
		return fmt.Errorf("failed to track previews: %w", err)
	}
	return nil
}

// Untrack implements PreviewIndex.
func (c *RedisCache) Untrack(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	if err := c.client.ZRem(ctx, previewIndexKey, members...).Err(); err != nil {
		return fmt.Errorf("failed to untrack previews: %w", err)
	}
	return nil
}

// Expired implements PreviewIndex.
func (c *RedisCache) Expired(ctx context.Context, t time.Time, limit int64) ([]string, error) {
	keys, err := c.client.ZRangeByScore(ctx, previewIndexKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(t.Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list expired previews: %w", err)
	}
	return keys, nil
}

// previewMembers scores keys with the expiry of a draft written now.
func (c *RedisCache) previewMembers(keys []string) []redis.Z {
	// Rounded up so a key never comes due before its draft expires.
	deadline := float64(time.Now().Add(c.draftTTL).Unix() + 1)
	members := make([]redis.Z, len(keys))
	for i, k := range keys {
		members[i] = redis.Z{Score: deadline, Member: k}
	}
	return members
}

// Previews returns the preview index view of the cache.
func (c *RedisCache) Previews() PreviewIndex {
	return c
}

// Drafts returns the draft store view of the cache.
func (c *RedisCache) Drafts() DraftStore {
	return &redisDraftStore{c: c}
}

type redisDraftStore struct {
	c *RedisCache
}

func (s *redisDraftStore) Get(ctx context.Context, id string) (*form.Draft, error) {
	key := draftKeyPrefix + id

	data, err := s.c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft %s: %w", id, err)
	}

	var draft form.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft %s: %w", id, err)
	}
	return &draft, nil
}

func (s *redisDraftStore) Put(ctx context.Context, draft *form.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft %s: %w", draft.ID, err)
	}

	// The draft and the deadlines of its previews move together.
	keys := previewKeys(draft)
	_, err = s.c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, draftKeyPrefix+draft.ID, data, s.c.draftTTL)
		if len(keys) > 0 {
			pipe.ZAdd(ctx, previewIndexKey, s.c.previewMembers(keys)...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store draft %s: %w", draft.ID, err)
	}

	s.c.logger.Debug("Stored draft", zap.String("session", draft.ID))
	return nil
}

func previewKeys(draft *form.Draft) []string {
	var keys []string
	for _, src := range draft.SourceFiles() {
		if src.PreviewKey != "" {
			keys = append(keys, src.PreviewKey)
		}
	}
	return keys
}

func (s *redisDraftStore) Delete(ctx context.Context, id string) error {
	if err := s.c.client.Del(ctx, draftKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}
	return nil
}
