package cache

import (
	"context"
	"sync"
	"time"

	"minecraft-store/internal/model"
)

// MemoryCache expires entries against an injected clock so tests can move time.
type MemoryCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	now       func() time.Time
	packages  []model.Package
	fetchedAt time.Time
	filled    bool
}

func NewMemoryCache(ttl time.Duration, now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{
		ttl: ttl,
		now: now,
	}
}

func (m *MemoryCache) Get(context.Context) ([]model.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.filled || m.now().Sub(m.fetchedAt) >= m.ttl {
		return nil, ErrCacheMiss
	}
	out := make([]model.Package, len(m.packages))
	copy(out, m.packages)
	return out, nil
}

func (m *MemoryCache) Set(_ context.Context, packages []model.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.packages = make([]model.Package, len(packages))
	copy(m.packages, packages)
	m.fetchedAt = m.now()
	m.filled = true
	return nil
}
