package credstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/skylink-gateway/internal/persistence"
)

// RedisKeyed stores one credential per session under a namespaced key. The
// TTL bounds how long an abandoned credential can linger; expiry semantics of
// the credential itself are enforced by the validator, not by Redis.
type RedisKeyed struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKeyed builds a Redis-backed credential store factory.
func NewRedisKeyed(client *redis.Client, ttl time.Duration) *RedisKeyed {
	return &RedisKeyed{client: client, ttl: ttl}
}

// For binds a store to the given session ID.
func (k *RedisKeyed) For(sessionID string) Store {
	return &redisStore{
		client: k.client,
		key:    persistence.SessionCredentialKey(sessionID),
		ttl:    k.ttl,
	}
}

type redisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (s *redisStore) Load(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *redisStore) Save(ctx context.Context, credential string) error {
	return s.client.Set(ctx, s.key, credential, s.ttl).Err()
}

func (s *redisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
