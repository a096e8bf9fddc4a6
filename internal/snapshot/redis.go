package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores snapshots as plain string values under <namespace>:<key>.
// Values have no TTL.
type RedisBackend struct {
	client    *redis.Client
	namespace string
}

// OpenRedis connects to redisURL and verifies the connection.
func OpenRedis(ctx context.Context, redisURL, namespace string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisBackend{client: client, namespace: namespace}, nil
}

func (b *RedisBackend) redisKey(key string) string {
	if b.namespace == "" {
		return key
	}
	return b.namespace + ":" + key
}

// Load implements Backend.
func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return data, nil
}

// Save implements Backend.
func (b *RedisBackend) Save(ctx context.Context, key string, data []byte) error {
	if err := b.client.Set(ctx, b.redisKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}

// Close implements Backend.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
