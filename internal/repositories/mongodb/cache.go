package mongodb

import (
	"context"
	"time"
)

// CacheService covers the cache-aside operations repositories use. The
// Redis client in pkg/cache satisfies it; passing nil disables caching.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const cacheTTL = 15 * time.Minute
