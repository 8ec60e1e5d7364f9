package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"log/slog"

	"github.com/ecograde/ecograde/internal/analyzer"
	"github.com/ecograde/ecograde/internal/api"
	"github.com/ecograde/ecograde/internal/config"
	"github.com/ecograde/ecograde/internal/greenhost"
	"github.com/ecograde/ecograde/internal/llm"
	"github.com/ecograde/ecograde/internal/metrics"
	"github.com/ecograde/ecograde/internal/pagespeed"
	"github.com/ecograde/ecograde/internal/report"
	"github.com/ecograde/ecograde/internal/repository"
)

func main() {
	logger := setupLogger()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	// Create config
	cfg, err := config.New()
	if err != nil {
		logger.Error("Failed to create config", "error", err)
		os.Exit(1)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Load the green hosting dataset
	green, err := greenhost.Load(cfg.Report.GreenHostsFile)
	if err != nil {
		logger.Error("Failed to load green hosts file", "error", err)
		os.Exit(1)
	}

	// Initialize the report archive. Without MONGO_URI, or when the
	// connection fails, reports are archived in memory only.
	repo := newRepository(ctx, cfg, logger)
	defer repo.Close(ctx)

	// Assemble the analysis chain
	m := metrics.New()
	psClient := pagespeed.NewClient(cfg.PageSpeed, green, logger)
	basicAnalyzer := analyzer.New(cfg.Analyzer, green, logger)
	producers := report.DefaultChain(psClient, basicAnalyzer, cfg.PageSpeed.SimulationEnabled)
	generator := report.NewGenerator(cfg.Report, producers, m, logger)
	annotator := llm.NewClient(cfg.LLM, logger)

	// Initialize and start the API server
	server := api.NewServer(cfg, repo, generator, annotator, m, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Server failed to start", "error", err)
			cancel()
		}
	}()

	logger.Info("Server started", "port", cfg.Server.Port, "audit_simulation", cfg.PageSpeed.SimulationEnabled)

	// Wait for shutdown signal
	<-shutdown
	logger.Info("Shutting down server...")

	// Create a timeout context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited properly")
}

// newRepository picks the report archive backend from configuration.
func newRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) repository.Repository {
	if cfg.MongoDB.URI == "" {
		logger.Info("No MONGO_URI configured, archiving reports in memory")
		return repository.NewMemoryRepository(0)
	}

	mongoRepo, err := repository.NewMongoRepository(ctx, cfg.MongoDB)
	if err != nil {
		logger.Error("Failed to connect to MongoDB, archiving reports in memory", "error", err)
		return repository.NewMemoryRepository(0)
	}

	logger.Info("Connected to MongoDB", "database", cfg.MongoDB.Database)
	return mongoRepo
}

func setupLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
