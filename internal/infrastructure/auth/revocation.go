package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList invalidates dashboard tokens before they expire
type RevocationList interface {
	// RevokeToken revokes a single token by its JTI. ttl should be the
	// remaining lifetime of the token.
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error

	// IsTokenRevoked checks if a token's JTI has been revoked
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeTenant invalidates every token issued for the tenant up to now
	RevokeTenant(ctx context.Context, tenantID string, ttl time.Duration) error

	// IsTenantTokenRevoked reports whether a token issued at issuedAt was
	// invalidated by RevokeTenant
	IsTenantTokenRevoked(ctx context.Context, tenantID string, issuedAt time.Time) (bool, error)
}

const defaultRevocationKeyPrefix = "sync:auth:revoked:"

// RedisRevocationList implements RevocationList using Redis
type RedisRevocationList struct {
	client    *redis.Client
	keyPrefix string
	now       func() time.Time
}

// NewRedisRevocationList creates a revocation list with an existing Redis client
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{
		client:    client,
		keyPrefix: defaultRevocationKeyPrefix,
		now:       time.Now,
	}
}

func (l *RedisRevocationList) jtiKey(jti string) string {
	return l.keyPrefix + "jti:" + jti
}

func (l *RedisRevocationList) tenantKey(tenantID string) string {
	return l.keyPrefix + "tenant:" + tenantID
}

// RevokeToken stores the JTI with a TTL
func (l *RedisRevocationList) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := l.client.Set(ctx, l.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked checks if the JTI key exists
func (l *RedisRevocationList) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := l.client.Exists(ctx, l.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return exists > 0, nil
}

// RevokeTenant stores the current Unix timestamp as the tenant cut-off
func (l *RedisRevocationList) RevokeTenant(ctx context.Context, tenantID string, ttl time.Duration) error {
	if err := l.client.Set(ctx, l.tenantKey(tenantID), l.now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke tenant tokens: %w", err)
	}
	return nil
}

// IsTenantTokenRevoked compares issuedAt with the stored cut-off
func (l *RedisRevocationList) IsTenantTokenRevoked(ctx context.Context, tenantID string, issuedAt time.Time) (bool, error) {
	raw, err := l.client.Get(ctx, l.tenantKey(tenantID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check tenant revocation: %w", err)
	}
	cutoff, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.Unix() <= cutoff, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)

// InMemoryRevocationList is a single-instance RevocationList used when
// Redis is not configured
type InMemoryRevocationList struct {
	mu      sync.Mutex
	tokens  map[string]time.Time // JTI -> expiration
	tenants map[string]time.Time // tenant -> cut-off
	now     func() time.Time
}

// NewInMemoryRevocationList creates a new in-memory revocation list
func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{
		tokens:  make(map[string]time.Time),
		tenants: make(map[string]time.Time),
		now:     time.Now,
	}
}

// RevokeToken records the JTI until ttl elapses
func (l *InMemoryRevocationList) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens[jti] = l.now().Add(ttl)
	return nil
}

// IsTokenRevoked checks if the JTI is revoked and not yet expired
func (l *InMemoryRevocationList) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expiration, ok := l.tokens[jti]
	if !ok {
		return false, nil
	}
	if l.now().After(expiration) {
		delete(l.tokens, jti)
		return false, nil
	}
	return true, nil
}

// RevokeTenant records the current time as the tenant cut-off
func (l *InMemoryRevocationList) RevokeTenant(_ context.Context, tenantID string, _ time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tenants[tenantID] = l.now()
	return nil
}

// IsTenantTokenRevoked reports whether issuedAt is at or before the cut-off
func (l *InMemoryRevocationList) IsTenantTokenRevoked(_ context.Context, tenantID string, issuedAt time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff, ok := l.tenants[tenantID]
	if !ok {
		return false, nil
	}
	return !issuedAt.After(cutoff), nil
}

var _ RevocationList = (*InMemoryRevocationList)(nil)
