package cache

import (
	"context"
	"errors"

	"minecraft-store/internal/model"
)

// PackageCache holds the store listing between gateway refreshes.
type PackageCache interface {
	Get(ctx context.Context) ([]model.Package, error)
	Set(ctx context.Context, packages []model.Package) error
}

var ErrCacheMiss = errors.New("cache miss")
