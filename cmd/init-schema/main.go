// Package main creates or upgrades the catalog database schema, including the
// pgvector extension, the embedding columns, and the vector indexes. Safe to
// run repeatedly.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/learnhub/catalog/internal/config"
	"github.com/learnhub/catalog/internal/repository"
	"github.com/learnhub/catalog/pkg/database"
)

func main() {
	ctx := context.Background()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.InitSchema(ctx, db); err != nil {
		slog.Error("Failed to initialize schema", "error", err)
		os.Exit(1)
	}

	slog.Info("Schema initialized")
}
