package redissvc

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisService bundles a client with the context the service runs under.
type RedisService struct {
	rdb *redis.Client
	ctx context.Context
}

func NewRedisService(rdb *redis.Client, ctx context.Context) *RedisService {
	return &RedisService{
		rdb: rdb,
		ctx: ctx,
	}
}

func (s *RedisService) Rdb() *redis.Client {
	return s.rdb
}

func (s *RedisService) Ctx() context.Context {
	return s.ctx
}

// Ping verifies connectivity.
func (s *RedisService) Ping() error {
	return s.rdb.Ping(s.ctx).Err()
}
