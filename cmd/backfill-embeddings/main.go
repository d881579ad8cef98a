// Package main provides a CLI tool to backfill embeddings for the catalog.
// It enqueues one low-priority catalog-wide embedding job; the API server's
// workers pick it up. Courses whose content fingerprint is unchanged are
// skipped by the worker, so re-running is cheap.
//
// Usage:
//
//	go run cmd/backfill-embeddings/main.go
//
// Environment variables:
//   - DATABASE_URL: PostgreSQL connection string (required)
//   - API_KEY, OPENAI_API_KEY: required by config loading
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/learnhub/catalog/internal/config"
	"github.com/learnhub/catalog/internal/jobs"
	"github.com/learnhub/catalog/pkg/database"
)

func main() {
	ctx := context.Background()

	// Configure logging
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	slog.Info("Starting embedding backfill...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Insert-only River client: no workers registered, no Start call.
	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	inserter := jobs.NewRiverJobInserter(riverClient)

	err = inserter.InsertEmbeddingJob(ctx, jobs.EmbeddingJobArgs{Scope: jobs.ScopeAllCourses}, jobs.PriorityLow)
	if err != nil {
		slog.Error("Failed to enqueue backfill job", "error", err)
		os.Exit(1)
	}

	slog.Info("Backfill job enqueued; the API server's workers will process it")
}
