package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/xCarter93/lineupiq/adapters/excel"
	"github.com/xCarter93/lineupiq/app"
	"github.com/xCarter93/lineupiq/domain/features"
	"github.com/xCarter93/lineupiq/internal"
	"github.com/xCarter93/lineupiq/internal/config"
	"github.com/xCarter93/lineupiq/internal/container"
	"github.com/xCarter93/lineupiq/internal/training"
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
	if cfg.Data.ExcelFile == "" {
		log.Fatal("EXCEL_FILE is required for a training run")
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

	engCfg := training.Config{
		Folds:      cfg.Training.Folds,
		MaxTrials:  cfg.Training.MaxTrials,
		Seed:       cfg.Training.Seed,
		TimeBudget: cfg.Training.TimeBudget,
	}

	source := excel.NewDataReader(cfg.Data.ExcelFile)
	service, err := app.NewTrainingService(source, store, pipeline, engCfg, logger)
	if err != nil {
		log.Fatalf("Training service setup failed: %v", err)
	}

	summary, err := service.TrainAll(ctx, cfg.Data.Seasons, cfg.Training.HoldoutSeason)
	if err != nil {
		log.Fatalf("Training batch failed: %v", err)
	}

	logger.Info("[train] %d models trained, %d failed, %d partial in %s",
		summary.RunsCompleted, summary.RunsFailed, summary.RunsPartial, summary.Elapsed.Round(time.Second))
	if summary.RunsFailed > 0 {
		os.Exit(1)
	}
}
