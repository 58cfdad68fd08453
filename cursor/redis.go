package cursor

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"tangled.sh/tangled.sh/skyline/cache"
)

const (
	cursorKey = "skyline:cursor:%s"
)

type RedisStore struct {
	rdb *cache.Cache
}

var _ Store = &RedisStore{}

func NewRedisCursorStore(cache *cache.Cache) *RedisStore {
	return &RedisStore{
		rdb: cache,
	}
}

func (r *RedisStore) Set(ctx context.Context, key, cursor string) error {
	return r.rdb.Set(ctx, fmt.Sprintf(cursorKey, key), cursor, 0).Err()
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.rdb.Get(ctx, fmt.Sprintf(cursorKey, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return val, nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, fmt.Sprintf(cursorKey, key)).Err()
}
