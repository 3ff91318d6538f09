package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/hospitalcostsearch/internal/domain/providers"
	redisclient "github.com/zatekoja/hospitalcostsearch/internal/infrastructure/clients/redis"
)

// RedisAdapter implements CacheProvider on Redis. Every key is stored under
// the adapter's namespace, "<namespace>:<key>".
type RedisAdapter struct {
	client    *redisclient.Client
	namespace string
}

// NewRedisAdapter creates a new Redis cache adapter. An empty namespace
// stores keys as given.
func NewRedisAdapter(client *redisclient.Client, namespace string) *RedisAdapter {
	return &RedisAdapter{
		client:    client,
		namespace: namespace,
	}
}

var _ providers.CacheProvider = (*RedisAdapter)(nil)

func (a *RedisAdapter) key(k string) string {
	if a.namespace == "" {
		return k
	}
	return a.namespace + ":" + k
}

// Get returns providers.ErrCacheMiss for a missing key
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := a.client.Client().Get(ctx, a.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, a.key(key))
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", a.key(key), err)
	}
	return result, nil
}

// Set stores value; a non-positive expiration keeps the key forever
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	var expiration time.Duration
	if expirationSeconds > 0 {
		expiration = time.Duration(expirationSeconds) * time.Second
	}
	if err := a.client.Client().Set(ctx, a.key(key), value, expiration).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", a.key(key), err)
	}
	return nil
}

func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := a.client.Client().Del(ctx, a.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", a.key(key), err)
	}
	return nil
}

func (a *RedisAdapter) Exists(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Client().Exists(ctx, a.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", a.key(key), err)
	}
	return n > 0, nil
}
