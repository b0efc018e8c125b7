package store

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores every key as a plain string under "<prefix>:kv:<key>".
type Redis struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedis(r redis.UniversalClient, prefix string) *Redis {
	return &Redis{
		redis:  r,
		prefix: prefix,
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.redis.Get(ctx, r.key(key)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", key, err)
	}

	return b, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.redis.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}

	return nil
}

func (r *Redis) key(k string) string {
	return fmt.Sprintf("%s:kv:%s", r.prefix, k)
}
