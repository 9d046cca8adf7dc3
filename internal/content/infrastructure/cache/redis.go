// Package cache holds the rendered page cache backends.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultNamespace prefixes every key written by RedisPageCache.
const DefaultNamespace = "folio:"

// RedisPageCache stores rendered pages in Redis.
type RedisPageCache struct {
	client    *redis.Client
	namespace string
}

// NewRedisPageCache creates a cache that namespaces its keys. An empty
// namespace uses DefaultNamespace.
func NewRedisPageCache(client *redis.Client, namespace string) *RedisPageCache {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisPageCache{client: client, namespace: namespace}
}

func (c *RedisPageCache) key(key string) string {
	return c.namespace + key
}

func (c *RedisPageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("page cache get %s: %w", key, err)
	}
	return data, true, nil
}

func (c *RedisPageCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("page cache set %s: %w", key, err)
	}
	return nil
}

// DeletePrefix scans for matching keys and deletes them in batches.
func (c *RedisPageCache) DeletePrefix(ctx context.Context, prefix string) error {
	pattern := c.key(escapePattern(prefix)) + "*"

	var batch []string
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("page cache delete %s: %w", prefix, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("page cache scan %s: %w", prefix, err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("page cache delete %s: %w", prefix, err)
		}
	}
	return nil
}

// Ping checks the Redis connection.
func (c *RedisPageCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// escapePattern quotes the glob characters Redis MATCH understands.
func escapePattern(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
