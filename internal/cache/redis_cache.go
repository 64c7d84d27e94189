package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fivechairs_admin/internal/metrics"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	c *redis.Client
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisCache(opts RedisOptions) *RedisCache {
	return &RedisCache{c: redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})}
}

// NewRedisCacheFromClient - для тестов и общего клиента.
func NewRedisCacheFromClient(c *redis.Client) *RedisCache { return &RedisCache{c: c} }

func (r *RedisCache) Close() error { return r.c.Close() }

func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// метки operation: get/set/delete
const (
	opGet    = "get"
	opSet    = "set"
	opDelete = "delete"
)

// track учитывает запрос и возвращает функцию, которая пишет длительность и ошибку.
func track(op string) func(err error) {
	start := time.Now()
	metrics.IncRedisRequest(op)
	return func(err error) {
		metrics.ObserveRedisDuration(op, time.Since(start))
		if err != nil {
			metrics.IncRedisError(op)
		}
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	done := track(opGet)

	b, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		done(nil)
		return nil, false, nil
	}
	done(err)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	done := track(opSet)
	err := r.c.Set(ctx, key, value, ttl).Err()
	done(err)
	return err
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	done := track(opDelete)
	err := r.c.Del(ctx, keys...).Err()
	done(err)
	return err
}

// Операции над множеством ключей относим к set/get.
func (r *RedisCache) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	done := track(opSet)
	err := r.c.SAdd(ctx, key, members).Err()
	done(err)
	return err
}

func (r *RedisCache) SMembers(ctx context.Context, key string) ([]string, error) {
	done := track(opGet)
	res, err := r.c.SMembers(ctx, key).Result()
	done(err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	done := track(opSet)
	err := r.c.Expire(ctx, key, ttl).Err()
	done(err)
	return err
}

func (r *RedisCache) RawClient() *redis.Client { return r.c }
