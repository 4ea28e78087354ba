package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "storefront:cart:"
	DefaultTTL     = 7 * 24 * time.Hour
)

type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func redisKey(cartID string) string { return redisKeyPrefix + cartID }

func (s *RedisStore) Load(ctx context.Context, cartID string) ([]Item, error) {
	raw, err := s.client.Get(ctx, redisKey(cartID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", cartID, err)
	}
	return items, nil
}

// Save refreshes the TTL on every write.
func (s *RedisStore) Save(ctx context.Context, cartID string, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(cartID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, cartID string) error {
	if err := s.client.Del(ctx, redisKey(cartID)).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
