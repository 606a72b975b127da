package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates a Redis client for the token store
func NewRedisClient(url, password string, db int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		// Fall back to simple connection
		opts = &redis.Options{
			Addr:     url,
			Password: password,
			DB:       db,
		}
	}

	opts.MaxRetries = 3

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("NewRedisClient: ping: %w", err)
	}

	return client, nil
}

// RedisTokenStore persists the session token in Redis. Useful when
// several processes share a storefront session (workers, daemons).
type RedisTokenStore struct {
	client  *redis.Client
	key     string
	ttl     time.Duration
	timeout time.Duration
}

func NewRedisTokenStore(client *redis.Client, key string) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		key:    key,

		// The backend issues 24h tokens; keep the stored copy on the
		// same clock so a dead token ages out on its own.
		ttl:     24 * time.Hour,
		timeout: 2 * time.Second,
	}
}

func (s *RedisTokenStore) Load() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	token, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("RedisTokenStore.Load: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) Save(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("RedisTokenStore.Save: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("RedisTokenStore.Clear: %w", err)
	}
	return nil
}
