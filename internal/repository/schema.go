package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements is the courses DDL, applied in order. The embedding columns
// are added separately from the base table so the schema can evolve on
// deployments that predate vector support without data loss.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,

	`CREATE TABLE IF NOT EXISTS courses (
		id UUID PRIMARY KEY,
		title VARCHAR(500) NOT NULL,
		description TEXT,
		category VARCHAR(100),
		tags TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// 1536 dimensions for text-embedding-3-small.
	`ALTER TABLE courses ADD COLUMN IF NOT EXISTS embedding vector(1536)`,
	`ALTER TABLE courses ADD COLUMN IF NOT EXISTS embedding_hash VARCHAR(64)`,
	`ALTER TABLE courses ADD COLUMN IF NOT EXISTS embedding_updated_at TIMESTAMPTZ`,

	`CREATE INDEX IF NOT EXISTS courses_embedding_idx
		ON courses USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
	`CREATE INDEX IF NOT EXISTS courses_embedding_null_idx
		ON courses (id) WHERE embedding IS NULL`,
	`CREATE INDEX IF NOT EXISTS courses_embedding_hash_idx
		ON courses (embedding_hash)`,
}

// InitSchema creates the courses table, embedding columns, and indexes.
// Idempotent; safe to run on every startup.
func InitSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}

	return nil
}
