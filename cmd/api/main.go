package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravadigital/tallywatch-api/internal/auth"
	"github.com/gravadigital/tallywatch-api/internal/config"
	"github.com/gravadigital/tallywatch-api/internal/handlers"
	"github.com/gravadigital/tallywatch-api/internal/logger"
	"github.com/gravadigital/tallywatch-api/internal/metrics"
	"github.com/gravadigital/tallywatch-api/internal/server"
	"github.com/gravadigital/tallywatch-api/internal/services"
	"github.com/gravadigital/tallywatch-api/internal/storage"
	"github.com/gravadigital/tallywatch-api/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	logger.InitializeWithFormat(cfg.Log.Level, cfg.Log.Format)
	log := logger.Get()

	if err := run(cfg); err != nil {
		log.Fatal("API stopped with error", "error", err)
	}
}

func run(cfg *config.Config) error {
	log := logger.Get()
	log.Info("Starting TallyWatch API", "environment", cfg.Environment)

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		return err
	}

	dbCtx, cancelDB := context.WithTimeout(context.Background(), time.Minute)
	container, err := postgres.NewContainer(dbCtx, cfg)
	cancelDB()
	if err != nil {
		return err
	}
	defer func() {
		if err := container.CloseWithTimeout(10 * time.Second); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}()

	factory, err := storage.FactoryFromConfig(cfg)
	if err != nil {
		return err
	}
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	photos, err := factory.CreatePhotoStore(startCtx, cfg)
	cancel()
	if err != nil {
		return err
	}

	m, err := metrics.New()
	if err != nil {
		return err
	}

	limits := services.UploadLimits{
		MaxPhotos:   cfg.Upload.MaxPhotos,
		MaxFileSize: cfg.Upload.MaxFileSize,
	}

	srv := server.New(cfg, server.Dependencies{
		Services: services.New(container, photos, cfg.Verification(), limits, m),
		Verifier: verifier,
		Metrics:  m,
		Limits:   limits,
		Health: map[string]handlers.HealthCheck{
			"database":     container.Ping,
			"object_store": photos.Health,
		},
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	log.Info("Server stopped")
	return nil
}
