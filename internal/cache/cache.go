package cache

import (
	"context"
	"time"
)

// Cache - кэш готовых JSON-ответов. nil-кэш в хендлерах означает "без кэша".
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error

	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error

	Close() error
}

var _ Cache = (*RedisCache)(nil)
