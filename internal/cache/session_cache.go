package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionCache keeps the engine snapshot of hot rooms so a turn does not hit
// the database to resume. Misses fall through to the session repository.
type SessionCache interface {
	Set(ctx context.Context, roomCode string, snapshot []byte) error
	Get(ctx context.Context, roomCode string) ([]byte, error)
	Delete(ctx context.Context, roomCode string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *sessionCache) Set(ctx context.Context, roomCode string, snapshot []byte) error {
	return c.client.Set(ctx, "interview:"+roomCode, snapshot, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, roomCode string) ([]byte, error) {
	data, err := c.client.Get(ctx, "interview:"+roomCode).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *sessionCache) Delete(ctx context.Context, roomCode string) error {
	return c.client.Del(ctx, "interview:"+roomCode).Err()
}
