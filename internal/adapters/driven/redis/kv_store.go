package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.KVStore = (*KVStore)(nil)
	_ driven.Taker   = (*KVStore)(nil)
	_ driven.Pinger  = (*KVStore)(nil)
)

// KVStore implements driven.KVStore using Redis.
// Keys use Redis TTL for automatic expiration.
type KVStore struct {
	client redis.UniversalClient
	prefix string
}

// NewKVStore creates a new Redis-backed KVStore.
// prefix is prepended to every key and may be empty.
func NewKVStore(client redis.UniversalClient, prefix string) *KVStore {
	return &KVStore{client: client, prefix: prefix}
}

// Set stores value under key with the given TTL
func (s *KVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("set %s: ttl must be positive", key)
	}
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Get retrieves the value under key, or nil if it is absent or expired
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return data, nil
}

// Delete removes key
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Take atomically retrieves and deletes key using GETDEL (Redis 6.2+)
func (s *KVStore) Take(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.GetDel(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take key: %w", err)
	}
	return data, nil
}

// Ping checks if the Redis backend is healthy.
func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
