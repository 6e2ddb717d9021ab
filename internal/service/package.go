package service

import (
	"context"
	"errors"

	"minecraft-store/internal/cache"
	"minecraft-store/internal/client"
	"minecraft-store/internal/model"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

type PackageService interface {
	ListPackages(ctx context.Context) (client.Result[[]model.Package], error)
}

type packageServiceImpl struct {
	basketClient client.BasketClient
	cache        cache.PackageCache
	log          logrus.FieldLogger
	sfg          singleflight.Group
}

func NewPackageService(basketClient client.BasketClient, packageCache cache.PackageCache, log logrus.FieldLogger) PackageService {
	return &packageServiceImpl{
		basketClient: basketClient,
		cache:        packageCache,
		log:          log,
	}
}

// ListPackages serves the listing from cache and refreshes it from the gateway on a miss.
// Mock listings are returned but never cached, so the next request retries the gateway.
func (s *packageServiceImpl) ListPackages(ctx context.Context) (client.Result[[]model.Package], error) {
	v, err, _ := s.sfg.Do("packages", func() (interface{}, error) {
		packages, err := s.cache.Get(ctx)
		if err == nil {
			return client.Real(packages), nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WithError(err).Warn("package cache read failed")
		}

		res := s.basketClient.ListPackages(ctx)
		if !res.IsFallback() {
			if err := s.cache.Set(ctx, res.Data); err != nil {
				s.log.WithError(err).Warn("package cache write failed")
			}
		}
		return res, nil
	})
	if err != nil {
		return client.Result[[]model.Package]{}, err
	}

	return v.(client.Result[[]model.Package]), nil
}
