package cache

import (
	"context"
	"fmt"
	"time"

	"fivechairs_admin/internal/metrics"
)

// Remember кладёт ответ в кэш и запоминает ключ в общем множестве.
func Remember(ctx context.Context, c Cache, key string, value []byte, ttl time.Duration) error {
	if err := c.Set(ctx, key, value, ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	setKey := ResponseKeysSetKey()
	if err := c.SAdd(ctx, setKey, key); err != nil {
		return fmt.Errorf("cache sadd: %w", err)
	}
	// множество живёт не дольше самих ответов
	if err := c.Expire(ctx, setKey, ttl); err != nil {
		return fmt.Errorf("cache expire: %w", err)
	}
	return nil
}

// ResetGeneration удаляет закэшированные ответы, если в Redis записано другое
// поколение пула, и записывает текущее. Возвращает число удалённых ключей.
func ResetGeneration(ctx context.Context, c Cache, generation string) (int, error) {
	prev, ok, err := c.Get(ctx, GenerationKey())
	if err != nil {
		return 0, fmt.Errorf("get generation: %w", err)
	}
	if ok && string(prev) == generation {
		return 0, nil
	}

	keys, err := c.SMembers(ctx, ResponseKeysSetKey())
	if err != nil {
		return 0, fmt.Errorf("list cached keys: %w", err)
	}
	if err := c.Del(ctx, append(keys, ResponseKeysSetKey())...); err != nil {
		return 0, fmt.Errorf("drop cached keys: %w", err)
	}
	if err := c.Set(ctx, GenerationKey(), []byte(generation), 0); err != nil {
		return 0, fmt.Errorf("set generation: %w", err)
	}

	metrics.AddCacheInvalidated(len(keys))
	return len(keys), nil
}
