package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/xCarter93/lineupiq/adapters/api"
	"github.com/xCarter93/lineupiq/app"
	"github.com/xCarter93/lineupiq/domain/features"
	"github.com/xCarter93/lineupiq/internal"
	"github.com/xCarter93/lineupiq/internal/cache"
	"github.com/xCarter93/lineupiq/internal/config"
	"github.com/xCarter93/lineupiq/internal/container"
	"github.com/xCarter93/lineupiq/internal/evaluation"
)

func main() {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := internal.NewDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := container.BuildArtifactStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Artifact store setup failed: %v", err)
	}
	defer cleanup()

	pipeline, err := features.NewPipeline(features.RollingConfig{Window: cfg.Training.RollingWindow})
	if err != nil {
		log.Fatalf("Pipeline setup failed: %v", err)
	}

	// Cache failures degrade serving to always-miss instead of aborting.
	predCache, err := cache.New(cfg.Cache.Capacity, cfg.Cache.TTL)
	if err != nil {
		logger.Warn("[api] prediction cache disabled: %v", err)
		predCache = nil
	}

	predictions := app.NewPredictionService(store, pipeline, predCache, logger)
	diagnostics := app.NewDiagnosticsService(store, evaluation.DefaultThresholds())
	server := api.NewServer(predictions, diagnostics, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("[api] shutdown error: %v", err)
		}
	}
}
