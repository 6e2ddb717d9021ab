package cache

import (
	"context"
	"testing"
	"time"

	"minecraft-store/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestMemoryCache_MissWhenEmpty(t *testing.T) {
	c := NewMemoryCache(time.Minute, nil)

	_, err := c.Get(context.Background())
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_ExpiresAgainstClock(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(5*time.Minute, clock.Now)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, []model.Package{{ID: "1", Name: "VIP"}}))

	clock.Advance(4 * time.Minute)
	pkgs, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, pkgs, 1)

	clock.Advance(time.Minute)
	_, err = c.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	c := NewMemoryCache(time.Minute, nil)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, []model.Package{{ID: "1", Name: "VIP"}}))

	pkgs, err := c.Get(ctx)
	require.NoError(t, err)
	pkgs[0].Name = "changed"

	again, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "VIP", again[0].Name)
}
