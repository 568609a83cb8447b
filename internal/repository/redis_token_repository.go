package repository

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "ai_mentor:local_storage:"

type RedisTokenRepository struct {
	Client *redis.Client
}

func NewRedisTokenRepository(rdb *redis.Client) *RedisTokenRepository {
	return &RedisTokenRepository{Client: rdb}
}

func (r *RedisTokenRepository) Get(ctx context.Context, key string) (string, error) {
	v, err := r.Client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	return v, err
}

// Set 不设置过期时间，与 localStorage 一致，直到显式删除
func (r *RedisTokenRepository) Set(ctx context.Context, key, value string) error {
	return r.Client.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}

func (r *RedisTokenRepository) Delete(ctx context.Context, key string) error {
	return r.Client.Del(ctx, redisKeyPrefix+key).Err()
}
