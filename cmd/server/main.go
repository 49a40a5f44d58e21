package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/codelens/internal/config"
	"github.com/codelens/internal/db"
	"github.com/codelens/internal/github"
	"github.com/codelens/internal/http"
	"github.com/codelens/internal/jobs"
	"github.com/codelens/internal/llm"
	"github.com/codelens/internal/logger"
)

func main() {
	// Load .env file if it exists (optional, won't error if missing)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg.Environment)

	// Initialize database
	database, err := db.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize review client: %v", err)
	}
	githubClient := github.NewClient()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background job worker: repository sync and review analysis
	processor := jobs.NewProcessor(database, githubClient, llmClient, slog.Default())
	worker := jobs.NewWorker(processor, database, cfg.Jobs.PollInterval, cfg.Jobs.StaleThreshold, slog.Default())
	go func() {
		if err := worker.Start(ctx); err != nil {
			slog.Error("job worker stopped", "error", err)
		}
	}()

	// Hourly recovery: repositories stuck in syncing after a worker crash
	// are re-marked failed so the status machine stays truthful
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		if count, err := database.MarkStaleSyncingRepositories(cfg.Jobs.StaleThreshold); err != nil {
			slog.Error("stale sync recovery failed", "error", err)
		} else if count > 0 {
			slog.Warn("recovered stale syncing repositories", "count", count)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule sync recovery: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create HTTP server
	server := http.NewServer(cfg, database)

	// Start server
	slog.Info("starting server", "address", cfg.ServerAddress, "environment", cfg.Environment)
	if err := server.Run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
