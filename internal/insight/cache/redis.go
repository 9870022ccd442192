package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dvloznov/insight-service/internal/insight"
)

const redisKeyPrefix = "insights:"

// RedisStore is a Redis-backed implementation of insight.Store for
// multi-instance deployments. Expiry is enforced server-side via the key TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at the given URL and verifies the
// connection with a short ping.
func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		// Fallback to treating the value as a plain host:port address.
		opt = &redis.Options{Addr: url}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Get implements insight.Store.
func (s *RedisStore) Get(ctx context.Context, fingerprint string) (*insight.InsightResult, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+fingerprint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get: %w", err)
	}

	var result insight.InsightResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("cache: decoding cached result: %w", err)
	}
	return &result, true, nil
}

// Put implements insight.Store.
func (s *RedisStore) Put(ctx context.Context, fingerprint string, result *insight.InsightResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache: encoding result: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+fingerprint, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

// Invalidate implements insight.Store.
func (s *RedisStore) Invalidate(ctx context.Context, fingerprint string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+fingerprint).Err(); err != nil {
		return fmt.Errorf("cache: redis del: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements the Store interface.
var _ insight.Store = (*RedisStore)(nil)
