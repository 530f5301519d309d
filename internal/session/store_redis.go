package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) TokenStore {
	return &redisStore{rdb: rdb}
}

// key 约定: ggpoker:session:{key} -> token
func redisKey(key string) string {
	return "ggpoker:session:" + key
}

func (r *redisStore) Load(ctx context.Context, key string) (string, error) {
	tok, err := r.rdb.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return tok, err
}

func (r *redisStore) Save(ctx context.Context, key, token string) error {
	return r.rdb.Set(ctx, redisKey(key), token, 0).Err()
}

func (r *redisStore) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, redisKey(key)).Err()
}
