package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minecraft-store/internal/cache"
	"minecraft-store/internal/client"
	"minecraft-store/internal/config"
	"minecraft-store/internal/logger"
	"minecraft-store/internal/repository"
	"minecraft-store/internal/server"
	"minecraft-store/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log)
	log.WithField("environment", cfg.Environment.Name).Info("starting minecraft store")

	db, err := client.InitDBClient(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("init database")
	}

	ctx := context.Background()

	var packageCache cache.PackageCache = cache.NewMemoryCache(cfg.Store.PackagesCacheTTL, nil)
	redisClient, err := client.InitRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("init redis")
	}
	if redisClient != nil {
		packageCache = cache.NewRedisCache(redisClient, cfg.Store.PackagesCacheTTL)
		log.WithField("addr", cfg.Redis.Addr).Info("package cache backed by redis")
	}

	if cfg.Tebex.WebstoreToken == "" {
		log.Warn("TEBEX_WEBSTORE_TOKEN is empty, gateway calls will fall back to mock data")
	}
	tebexClient := client.NewTebexClient(&cfg.Tebex)
	basketClient := client.NewBasketClient(tebexClient, log)

	storageRepo := repository.NewStorageRepository(db)
	checkoutRepo := repository.NewCheckoutRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	cartService := service.NewCartService(storageRepo, log)
	basketService := service.NewBasketService(
		basketClient,
		cartService,
		storageRepo,
		checkoutRepo,
		service.BasketOptions{
			BaseURL: cfg.BaseURL,
			PayHost: cfg.Tebex.PayHost,
		},
		log,
	)

	srv := server.NewServer(server.Services{
		Cart:     cartService,
		Basket:   basketService,
		Packages: service.NewPackageService(basketClient, packageCache, log),
		Blog:     service.NewBlogService(cfg.Store.BlogDir, log),
		Webhook:  service.NewWebhookService(db, cfg.Tebex.WebhookSecret, checkoutRepo, webhookEventRepo, log),
	}, server.Options{
		CheckoutRateLimit: cfg.Store.CheckoutRateLimit,
		SecureCookies:     cfg.Environment.Name == "production",
	}, log)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.WithField("addr", serverAddr).Info("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
