package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"tangled.sh/tangled.sh/skyline/cache"
)

const sessionKey = "skyline:session:%s"

// refresh tokens issued by the reference PDS live for 90 days
const redisSessionTTL = 90 * 24 * time.Hour

// RedisStore keeps the session under a per-name key, for machines that
// share one login between several hosts.
type RedisStore struct {
	cache *cache.Cache
	key   string
	TTL   time.Duration
}

var _ Store = &RedisStore{}

func NewRedisStore(cache *cache.Cache, name string) *RedisStore {
	return &RedisStore{
		cache: cache,
		key:   fmt.Sprintf(sessionKey, name),
		TTL:   redisSessionTTL,
	}
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	val, err := s.cache.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", &IoError{Op: "load", Location: s.key, Err: err}
	}
	return val, nil
}

func (s *RedisStore) Save(ctx context.Context, text string) error {
	if err := s.cache.Set(ctx, s.key, text, s.TTL).Err(); err != nil {
		return &IoError{Op: "save", Location: s.key, Err: err}
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.cache.Del(ctx, s.key).Err(); err != nil {
		return &IoError{Op: "delete", Location: s.key, Err: err}
	}
	return nil
}
