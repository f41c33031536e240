package cache

import (
	"context"
	"fmt"

	"recipe-sheet/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "recipe:structured:"

// RedisStore Redis 緩存
type RedisStore struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewRedisStore 創建 Redis 緩存並測試連接
func NewRedisStore(cfg *config.CacheConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, config: cfg}, nil
}

// Get 獲取緩存
func (s *RedisStore) Get(ctx context.Context, content string) (string, error) {
	val, err := s.client.Get(ctx, redisKey(content)).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return val, nil
}

// Set 設置緩存
func (s *RedisStore) Set(ctx context.Context, content, value string) error {
	if err := s.client.Set(ctx, redisKey(content), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉連接
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// redisKey 以內容哈希作為鍵，避免把整份食譜塞進 key
func redisKey(content string) string {
	return redisKeyPrefix + generateKey(content)
}
