package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/redis/go-redis/v9"
)

const defaultDebounceKeyPrefix = "sync:debounce:"

// RedisDebounceGuard implements DebounceGuard using Redis.
// Claims are shared by every instance behind the webhook endpoint.
type RedisDebounceGuard struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisDebounceGuard connects to Redis and creates a guard
func NewRedisDebounceGuard(cfg RedisConfig) (*RedisDebounceGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDebounceGuard{
		client:    client,
		keyPrefix: defaultDebounceKeyPrefix,
	}, nil
}

// NewRedisDebounceGuardWithClient creates a guard with an existing Redis client
func NewRedisDebounceGuardWithClient(client *redis.Client, keyPrefix string) *RedisDebounceGuard {
	if keyPrefix == "" {
		keyPrefix = defaultDebounceKeyPrefix
	}
	return &RedisDebounceGuard{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Claim returns true if key was not claimed within ttl.
// SETNX with expiry keeps check and claim atomic.
func (g *RedisDebounceGuard) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim debounce key: %w", err)
	}
	return ok, nil
}

// Release deletes the claim on key
func (g *RedisDebounceGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release debounce key: %w", err)
	}
	return nil
}

// Client returns the underlying Redis client so other components can share
// the connection pool
func (g *RedisDebounceGuard) Client() *redis.Client {
	return g.client
}

// Close closes the Redis client
func (g *RedisDebounceGuard) Close() error {
	return g.client.Close()
}

var _ integration.DebounceGuard = (*RedisDebounceGuard)(nil)
