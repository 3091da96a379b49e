package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisBackend keeps each session's progress in one Redis hash. Every write
// pushes the hash's expiry ttl into the future, so a session lives as long as
// it keeps writing and then disappears whole. That is the closest thing to
// browser session storage a shared deployment has.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenRedis connects to addr and checks the connection.
func OpenRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return NewRedisBackend(client, ttl), nil
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

// hashKey names the hash holding key's session.
func hashKey(key string) string {
	return strings.TrimSuffix(sessionPrefix(key), ":") + "#progress"
}

// expire slides the session's expiry; callers queue it after a write.
func (b *RedisBackend) expire(ctx context.Context, pipe redis.Pipeliner, hash string) {
	if b.ttl > 0 {
		pipe.PExpire(ctx, hash, b.ttl)
	}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := b.client.HGet(ctx, hashKey(key), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return v, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	hash := hashKey(key)
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, hash, key, value)
		b.expire(ctx, pipe, hash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Take reads and removes the field inside MULTI, so two pages racing for the
// auto-start flag cannot both win.
func (b *RedisBackend) Take(ctx context.Context, key string) (string, bool, error) {
	hash := hashKey(key)
	var get *redis.StringCmd
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGet(ctx, hash, key)
		pipe.HDel(ctx, hash, key)
		b.expire(ctx, pipe, hash)
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("taking %s: %w", key, err)
	}
	return get.Val(), true, nil
}

func (b *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	byHash := make(map[string][]string)
	for _, k := range keys {
		h := hashKey(k)
		byHash[h] = append(byHash[h], k)
	}
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for hash, fields := range byHash {
			pipe.HDel(ctx, hash, fields...)
			b.expire(ctx, pipe, hash)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting progress: %w", err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
