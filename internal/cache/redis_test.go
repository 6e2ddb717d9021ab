package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"minecraft-store/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client, 5*time.Minute)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func TestRedisGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestRedisSet_RoundTripWithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	pkgs := []model.Package{
		{ID: "42", Name: "VIP", TotalPrice: decimal.RequireFromString("9.99"), Currency: "USD"},
	}

	require.NoError(t, cache.Set(ctx, pkgs))
	assert.Equal(t, 5*time.Minute, mr.TTL(packagesKey))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.PackageID("42"), got[0].ID)
	assert.Equal(t, "$9.99", got[0].DisplayPrice())

	mr.FastForward(6 * time.Minute)
	_, err = cache.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	pkgs, _ := json.Marshal([]model.Package{{ID: "1"}})
	require.NoError(t, mr.Set(packagesKey, string(pkgs[:5])))

	_, err := cache.Get(context.Background())
	require.ErrorContains(t, err, "unmarshal packages failed")
}
