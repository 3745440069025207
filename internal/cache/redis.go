package cache

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

// Redis is the shared connection handle. It is constructed once at startup
// and injected into the caches that need it, with Close called on shutdown.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string, db int) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		Protocol: 2,
	})

	return &Redis{client: client}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
