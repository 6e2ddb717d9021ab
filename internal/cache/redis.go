package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"minecraft-store/internal/model"

	"github.com/redis/go-redis/v9"
)

const packagesKey = "tebex:packages"

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (r RedisCache) Get(ctx context.Context) ([]model.Package, error) {
	data, err := r.client.Get(ctx, packagesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var packages []model.Package
	if err2 := json.Unmarshal(data, &packages); err2 != nil {
		return nil, fmt.Errorf("unmarshal packages failed: %w", err2)
	}

	return packages, nil
}

func (r RedisCache) Set(ctx context.Context, packages []model.Package) error {
	jsonPackages, err := json.Marshal(packages)
	if err != nil {
		return fmt.Errorf("marshal packages failed: %w", err)
	}

	if err := r.client.Set(ctx, packagesKey, string(jsonPackages), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
