package cache

import (
	"bufio"
	"context"
	"strconv"
	"strings"
	"time"

	"fivechairs_admin/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StartRedisSizeCollector раз в interval снимает used_memory в redis_cache_size_bytes.
func StartRedisSizeCollector(ctx context.Context, client *redis.Client, interval time.Duration, logger zerolog.Logger) {
	if client == nil {
		return
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		update := func() {
			info, err := client.Info(ctx, "memory").Result()
			if err != nil {
				if ctx.Err() == nil {
					metrics.IncRedisError(opGet)
					logger.Debug().Err(err).Msg("redis info memory failed")
				}
				return
			}
			if n, ok := usedMemory(info); ok {
				metrics.SetRedisCacheSizeBytes(n)
			}
		}

		update()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				update()
			}
		}
	}()
}

// usedMemory ищет строку used_memory:123456 в ответе INFO.
func usedMemory(info string) (int64, bool) {
	sc := bufio.NewScanner(strings.NewReader(info))
	for sc.Scan() {
		v, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "used_memory:")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}
