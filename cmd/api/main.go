// Package main runs the catalog API server and the embedding job workers.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"golang.org/x/time/rate"

	"github.com/learnhub/catalog/internal/api/handlers"
	"github.com/learnhub/catalog/internal/api/middleware"
	"github.com/learnhub/catalog/internal/config"
	"github.com/learnhub/catalog/internal/embeddings"
	"github.com/learnhub/catalog/internal/jobs"
	"github.com/learnhub/catalog/internal/repository"
	"github.com/learnhub/catalog/internal/service"
	"github.com/learnhub/catalog/pkg/database"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog with the log level from config
	setupLogging(cfg.LogLevel)

	// Initialize database connection with pgvector type support
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, database.WithVectorTypes())
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize embedding client
	embeddingClient := embeddings.NewOpenAIClient(cfg.OpenAIAPIKey,
		embeddings.WithModel(cfg.EmbeddingModel),
		embeddings.WithDimensions(cfg.EmbeddingDimensions),
	)
	slog.Info("Embedding provider configured",
		"model", cfg.EmbeddingModel,
		"dimensions", cfg.EmbeddingDimensions,
	)

	// Initialize repository
	coursesRepo := repository.NewCoursesRepository(db)

	// Progress tracker shared by the worker and the API
	progress := jobs.NewProgressTracker()

	// Initialize River job queue
	riverClient, err := initRiver(ctx, db, cfg, embeddingClient, coursesRepo, progress)
	if err != nil {
		slog.Error("Failed to initialize River job queue", "error", err)
		os.Exit(1)
	}
	jobInserter := jobs.NewRiverJobInserter(riverClient)
	slog.Info("River job queue enabled",
		"workers", cfg.EmbeddingMaxConcurrent,
		"max_attempts", cfg.EmbeddingMaxAttempts,
		"rate_limit", cfg.EmbeddingRateLimit,
	)

	// Log progress events for operators tailing the server output
	progressEvents, unsubscribe := progress.Subscribe()
	defer unsubscribe()

	go func() {
		for event := range progressEvents {
			slog.Info("embedding job progress", "job_id", event.JobID, "percent", event.Percent)
		}
	}()

	// Initialize services
	coursesService := service.NewCoursesService(coursesRepo, jobInserter)
	searchService := service.NewSearchService(embeddingClient, coursesRepo, cfg.SearchMinScore)

	// Initialize handlers
	coursesHandler := handlers.NewCoursesHandler(coursesService)
	searchHandler := handlers.NewSearchHandler(searchService)
	embeddingsHandler := handlers.NewEmbeddingsHandler(coursesService, progress)
	healthHandler := handlers.NewHealthHandler()

	// Set up routes
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(middleware.MaxBody(maxRequestBodyBytes))

	router.Get("/health", healthHandler.Check)

	router.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.APIKey))

		r.Post("/courses", coursesHandler.Create)
		r.Get("/courses", coursesHandler.List)
		r.Post("/courses/search", searchHandler.Search)
		r.Get("/courses/{id}", coursesHandler.Get)
		r.Patch("/courses/{id}", coursesHandler.Update)
		r.Delete("/courses/{id}", coursesHandler.Delete)

		r.Get("/embeddings/stats", embeddingsHandler.Stats)
		r.Post("/embeddings/generate", embeddingsHandler.Generate)
		r.Post("/embeddings/generate-all", embeddingsHandler.GenerateAll)
		r.Get("/embeddings/progress", embeddingsHandler.Progress)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// 2. Stop River (waits for in-flight jobs to complete)
	slog.Info("Stopping River job queue...")
	if err := riverClient.Stop(shutdownCtx); err != nil {
		slog.Error("River forced to shutdown", "error", err)
	}
	slog.Info("River job queue stopped")

	slog.Info("Server exited")
}

// setupLogging configures slog with the specified log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(handler))
}

// initRiver initializes the River job queue client and workers
func initRiver(
	ctx context.Context,
	db *pgxpool.Pool,
	cfg *config.Config,
	embeddingClient embeddings.Client,
	coursesRepo *repository.CoursesRepository,
	progress *jobs.ProgressTracker,
) (*river.Client[pgx.Tx], error) {
	// Create rate limiter for provider API calls, shared by all workers
	rateLimiter := rate.NewLimiter(rate.Limit(cfg.EmbeddingRateLimit), 1)

	// Create embedding worker with dependencies
	embeddingWorker := jobs.NewEmbeddingWorker(jobs.EmbeddingWorkerDeps{
		Courses:     coursesRepo,
		Embedder:    embeddingClient,
		RateLimiter: rateLimiter,
		Progress:    progress,
		BatchSize:   cfg.EmbeddingBatchSize,
	})

	// Register workers
	workers := river.NewWorkers()
	river.AddWorker(workers, embeddingWorker)

	// Create River client
	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.EmbeddingMaxConcurrent},
		},
		Workers:      workers,
		ErrorHandler: &jobs.ErrorHandler{},
		RetryPolicy:  &jobs.ExponentialRetryPolicy{Base: cfg.EmbeddingBackoffBase},
		MaxAttempts:  cfg.EmbeddingMaxAttempts,

		// Completed jobs age out after a day, discarded failures stay a week
		// for inspection.
		CompletedJobRetentionPeriod: 24 * time.Hour,
		DiscardedJobRetentionPeriod: 7 * 24 * time.Hour,
	})
	if err != nil {
		return nil, err
	}

	// Start River (begins processing jobs)
	if err := riverClient.Start(ctx); err != nil {
		return nil, err
	}

	return riverClient, nil
}
