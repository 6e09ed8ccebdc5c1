package services

import (
	"context"
	"time"
)

// CacheService is the slice of the Redis client the services use. The
// implementation lives in pkg/cache.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	DeletePattern(ctx context.Context, pattern string) (int64, error)
}
