package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Restore/cache"
	"Restore/config"
	"Restore/jwt"
	"Restore/payments"
	"Restore/routers"
	"Restore/storage"

	"github.com/gin-gonic/gin"
)

func newLogger(cfg config.Config) *slog.Logger {
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("STORE_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.SetupDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		dbInstance, _ := db.DB()
		_ = dbInstance.Close()
	}()

	rdb, err := config.SetupRedisConnection(cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	} else {
		logger.Info("redis disabled, product cache is off")
	}

	signer, err := jwt.LoadSigner(cfg.Auth.PrivateKeyPath, cfg.Auth.PublicKeyPath)
	if errors.Is(err, os.ErrNotExist) && cfg.IsDevelopment() {
		// tokens will not survive a restart
		logger.Warn("jwt keys not found, using a throwaway key", "path", cfg.Auth.PrivateKeyPath)
		key, keyErr := rsa.GenerateKey(rand.Reader, 2048)
		if keyErr != nil {
			return keyErr
		}
		signer, err = jwt.NewSigner(key), nil
	}
	if err != nil {
		return err
	}

	var images storage.ImageStore
	if cfg.S3.Bucket != "" {
		store, err := storage.NewS3StoreFromEnv(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.PublicBaseURL)
		if err != nil {
			return err
		}
		images = store
	} else {
		logger.Info("s3 bucket not set, product image uploads are off")
	}

	if cfg.Stripe.SecretKey == "" || cfg.Stripe.WebhookSecret == "" {
		logger.Warn("stripe keys are not set, checkout will fail")
	}

	router, err := routers.SetupRouters(routers.Dependencies{
		Config:  cfg,
		DB:      db,
		Signer:  signer,
		Cache:   cache.NewProductCache(rdb, cfg.Redis.TTL),
		Images:  images,
		Gateway: payments.NewStripeClient(cfg.Stripe.BaseURL, cfg.Stripe.SecretKey, cfg.Stripe.Currency),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr, "environment", cfg.Server.Environment)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
