package cache

import (
	"fmt"
	"io"

	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/commercesync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ClosableDebounceGuard is a DebounceGuard holding resources
type ClosableDebounceGuard interface {
	integration.DebounceGuard
	io.Closer
}

// DebounceGuardFactory creates debounce guards based on configuration
type DebounceGuardFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// DebounceGuardFactoryOption is a functional option for configuring the factory
type DebounceGuardFactoryOption func(*DebounceGuardFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) DebounceGuardFactoryOption {
	return func(f *DebounceGuardFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory guard
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) DebounceGuardFactoryOption {
	return func(f *DebounceGuardFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewDebounceGuardFactory creates a new factory
func NewDebounceGuardFactory(cfg config.RedisConfig, opts ...DebounceGuardFactoryOption) *DebounceGuardFactory {
	f := &DebounceGuardFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisGuard creates a Redis-backed guard
func (f *DebounceGuardFactory) CreateRedisGuard() (ClosableDebounceGuard, error) {
	guard, err := NewRedisDebounceGuard(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis debounce guard: %w", err)
	}
	return guard, nil
}

// CreateGuard tries Redis first and falls back to the in-memory guard when
// allowed. Without Redis, duplicate deliveries reaching different
// instances are only caught by the metadata timestamp.
func (f *DebounceGuardFactory) CreateGuard() (ClosableDebounceGuard, error) {
	if f.redisConfig.Host == "" {
		f.logger.Info("Redis not configured, using in-memory debounce guard")
		return NewInMemoryDebounceGuard(), nil
	}

	guard, err := f.CreateRedisGuard()
	if err == nil {
		f.logger.Info("using Redis debounce guard")
		return guard, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for webhook debounce but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory debounce guard", zap.Error(err))
	return NewInMemoryDebounceGuard(), nil
}
