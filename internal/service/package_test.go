package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"minecraft-store/internal/cache"
	"minecraft-store/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackages_CachesRealListing(t *testing.T) {
	bc := newMockBasketClient()
	bc.packages = []model.Package{{ID: "42", Name: "VIP"}}
	svc := NewPackageService(bc, cache.NewMemoryCache(time.Minute, nil), newTestLogger())
	ctx := context.Background()

	first, err := svc.ListPackages(ctx)
	require.NoError(t, err)
	assert.False(t, first.IsFallback())

	second, err := svc.ListPackages(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, 1, bc.count("packages"))
}

func TestPackages_FallbackIsNotCached(t *testing.T) {
	bc := newMockBasketClient()
	bc.packagesFail = true
	svc := NewPackageService(bc, cache.NewMemoryCache(time.Minute, nil), newTestLogger())
	ctx := context.Background()

	res, err := svc.ListPackages(ctx)
	require.NoError(t, err)
	assert.True(t, res.IsFallback())

	bc.m.Lock()
	bc.packagesFail = false
	bc.packages = []model.Package{{ID: "42"}}
	bc.m.Unlock()

	res, err = svc.ListPackages(ctx)
	require.NoError(t, err)
	assert.False(t, res.IsFallback())
	assert.Equal(t, 2, bc.count("packages"))
}

func TestPackages_ConcurrentCallersSeeSameListing(t *testing.T) {
	bc := newMockBasketClient()
	bc.packages = []model.Package{{ID: "42"}}
	svc := NewPackageService(bc, cache.NewMemoryCache(time.Minute, nil), newTestLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.ListPackages(context.Background())
			assert.NoError(t, err)
			assert.Len(t, res.Data, 1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, bc.count("packages"), 10)
	assert.GreaterOrEqual(t, bc.count("packages"), 1)
}
