package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/shared"
	"github.com/syncbridge/backend/internal/infrastructure/config"
)

// WindowStoreFactory creates window stores based on configuration
type WindowStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// WindowStoreFactoryOption is a functional option for configuring the factory
type WindowStoreFactoryOption func(*WindowStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) WindowStoreFactoryOption {
	return func(f *WindowStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory
// store when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) WindowStoreFactoryOption {
	return func(f *WindowStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewWindowStoreFactory creates a new factory
func NewWindowStoreFactory(cfg config.RedisConfig, opts ...WindowStoreFactoryOption) *WindowStoreFactory {
	f := &WindowStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore creates a window store. When Redis is enabled in config it
// is tried first, with an optional in-memory fallback.
func (f *WindowStoreFactory) CreateStore() (shared.WindowStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory window store")
		return NewInMemoryWindowStore(), nil
	}

	store, err := NewRedisWindowStore(RedisOptions{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis window store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for dedup window but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory window store. "+
		"Webhook dedup will not be shared across instances.",
		zap.Error(err),
	)
	return NewInMemoryWindowStore(), nil
}
