package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/researchmem/researchmem/internal/domain/services"
	"github.com/redis/go-redis/v9"
)

// RedisCacheService implements services.CacheService on go-redis.
type RedisCacheService struct {
	client *redis.Client
}

// CreateCacheService connects to Redis using a redis:// URL.
func CreateCacheService(url string) (services.CacheService, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCacheService{client: client}, nil
}

func (s *RedisCacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := s.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

func (s *RedisCacheService) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	return val, nil
}

func (s *RedisCacheService) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key %s: %w", key, err)
	}
	return nil
}

func (s *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cache key %s: %w", key, err)
	}
	return n > 0, nil
}

func (s *RedisCacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisCacheService) Close() error {
	return s.client.Close()
}
