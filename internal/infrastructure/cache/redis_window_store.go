package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/syncbridge/backend/internal/domain/shared"
)

// RedisWindowStore implements WindowStore using Redis.
// Required when multiple instances ingest webhooks for the same
// channels: the dedup window must be shared or each instance processes
// its own copy of a redelivered notification.
type RedisWindowStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisOptions holds Redis connection settings for the window store
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisWindowStore creates a new Redis-backed window store
func NewRedisWindowStore(opts RedisOptions) (*RedisWindowStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisWindowStore{
		client:    client,
		keyPrefix: "sync:window:",
	}, nil
}

// NewRedisWindowStoreWithClient creates a store with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisWindowStoreWithClient(client *redis.Client, keyPrefix string) *RedisWindowStore {
	if keyPrefix == "" {
		keyPrefix = "sync:window:"
	}
	return &RedisWindowStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkSeen records a key with a TTL using SETNX, so concurrent markers
// of the same key agree on a single winner.
func (s *RedisWindowStore) MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fresh, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark key as seen: %w", err)
	}
	return fresh, nil
}

// Seen checks whether a key is present and unexpired
func (s *RedisWindowStore) Seen(ctx context.Context, key string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key: %w", err)
	}
	return exists > 0, nil
}

// Close closes the Redis client
func (s *RedisWindowStore) Close() error {
	return s.client.Close()
}

var _ shared.WindowStore = (*RedisWindowStore)(nil)
