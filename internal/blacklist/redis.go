package blacklist

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quickbite/food_delivery/internal/hash"
)

const keyPrefix = "auth:blacklist:"

// Redis is the shared backend. Tokens are keyed by their SHA-256 so raw
// bearer credentials never land in the cache, and TTL handling is delegated
// to redis expiry.
type Redis struct {
	Client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{Client: client}
}

func key(token string) string {
	return keyPrefix + hash.Sha256Hex(token)
}

func (r *Redis) Add(ctx context.Context, token string, ttl time.Duration) error {
	return r.Client.Set(ctx, key(token), 1, ttl).Err()
}

func (r *Redis) Contains(ctx context.Context, token string) (bool, error) {
	n, err := r.Client.Exists(ctx, key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Redis) Remove(ctx context.Context, token string) error {
	return r.Client.Del(ctx, key(token)).Err()
}
