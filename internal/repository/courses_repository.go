// Package repository provides data access for the course catalog.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/learnhub/catalog/internal/apperrors"
	"github.com/learnhub/catalog/internal/models"
)

// CoursesRepository handles data access for the courses table.
type CoursesRepository struct {
	db *pgxpool.Pool
}

// NewCoursesRepository creates a new courses repository.
func NewCoursesRepository(db *pgxpool.Pool) *CoursesRepository {
	return &CoursesRepository{db: db}
}

// Create inserts a new course. The embedding columns start null; the worker
// fills them asynchronously.
func (r *CoursesRepository) Create(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	id := uuid.Must(uuid.NewV7())
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO courses (id, title, description, category, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, description, category, tags, embedding_hash, embedding_updated_at, created_at, updated_at`,
		id, req.Title, req.Description, req.Category, tags,
	)

	course, err := scanCourse(row)
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	return course, nil
}

// GetByID returns the course with the given id, without its embedding vector.
// Returns apperrors.NotFoundError when no such course exists.
func (r *CoursesRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, title, description, category, tags, embedding_hash, embedding_updated_at, created_at, updated_at
		FROM courses
		WHERE id = $1`,
		id,
	)

	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("course", "")
		}

		return nil, fmt.Errorf("get course: %w", err)
	}

	return course, nil
}

// Update applies the non-nil fields of req and bumps updated_at.
// Returns apperrors.NotFoundError when no such course exists.
func (r *CoursesRepository) Update(ctx context.Context, id uuid.UUID, req *models.UpdateCourseRequest) (*models.Course, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE courses
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    category = COALESCE($3, category),
		    tags = COALESCE($4, tags),
		    updated_at = NOW()
		WHERE id = $5
		RETURNING id, title, description, category, tags, embedding_hash, embedding_updated_at, created_at, updated_at`,
		req.Title, req.Description, req.Category, req.Tags, id,
	)

	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("course", "")
		}

		return nil, fmt.Errorf("update course: %w", err)
	}

	return course, nil
}

// Delete removes the course. Pending embedding jobs for it become no-ops.
// Returns apperrors.NotFoundError when no such course exists.
func (r *CoursesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("course", "")
	}

	return nil
}

// List returns courses ordered by creation time descending (newest first).
func (r *CoursesRepository) List(ctx context.Context, limit, offset int) ([]models.Course, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, category, tags, embedding_hash, embedding_updated_at, created_at, updated_at
		FROM courses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

// GetCandidates returns courses still missing an embedding or a fingerprint,
// oldest first so early records are never starved.
func (r *CoursesRepository) GetCandidates(ctx context.Context, limit int) ([]models.Course, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, category, tags, embedding_hash, embedding_updated_at, created_at, updated_at
		FROM courses
		WHERE embedding IS NULL OR embedding_hash IS NULL
		ORDER BY created_at ASC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get embedding candidates: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

// GetAllForEmbedding returns every course with its current fingerprint,
// oldest first, for batch and all-courses jobs.
func (r *CoursesRepository) GetAllForEmbedding(ctx context.Context) ([]models.Course, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, category, tags, embedding_hash, embedding_updated_at, created_at, updated_at
		FROM courses
		ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("get courses for embedding: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

// GetByIDsForEmbedding returns the courses in ids, oldest first. Missing ids
// are silently absent from the result (they may have been deleted).
func (r *CoursesRepository) GetByIDsForEmbedding(ctx context.Context, ids []uuid.UUID) ([]models.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, category, tags, embedding_hash, embedding_updated_at, created_at, updated_at
		FROM courses
		WHERE id = ANY($1)
		ORDER BY created_at ASC`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("get courses by ids: %w", err)
	}
	defer rows.Close()

	return collectCourses(rows)
}

// UpdateEmbedding sets the embedding vector, fingerprint, and embedding
// timestamp in one statement, bumping updated_at alongside.
func (r *CoursesRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32, hash string) error {
	vec := pgvector.NewVector(embedding)

	tag, err := r.db.Exec(ctx, `
		UPDATE courses
		SET embedding = $1,
		    embedding_hash = $2,
		    embedding_updated_at = NOW(),
		    updated_at = NOW()
		WHERE id = $3`,
		vec, hash, id,
	)
	if err != nil {
		return fmt.Errorf("update embedding: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("course", "")
	}

	return nil
}

// BatchUpdateEmbeddings applies all updates inside a single transaction.
// Either every update persists or none do. An empty batch is a no-op.
func (r *CoursesRepository) BatchUpdateEmbeddings(ctx context.Context, updates []models.EmbeddingUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch embedding update: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, update := range updates {
		_, err := tx.Exec(ctx, `
			UPDATE courses
			SET embedding = $1,
			    embedding_hash = $2,
			    embedding_updated_at = NOW(),
			    updated_at = NOW()
			WHERE id = $3`,
			pgvector.NewVector(update.Embedding), update.Hash, update.CourseID,
		)
		if err != nil {
			return fmt.Errorf("batch update embedding %s: %w", update.CourseID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch embedding update: %w", err)
	}

	return nil
}

// SemanticSearch returns courses ranked by cosine similarity to queryEmbedding.
// Only courses with an embedding and similarity strictly above minScore are
// returned, nearest first, capped at limit. Similarity is 1 - cosine distance.
func (r *CoursesRepository) SemanticSearch(
	ctx context.Context, queryEmbedding []float32, limit int, minScore float64,
) ([]models.CourseWithScore, error) {
	queryVec := pgvector.NewVector(queryEmbedding)

	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, category, tags, embedding_hash, embedding_updated_at, created_at, updated_at,
		       1 - (embedding <=> $1) AS similarity
		FROM courses
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) > $2
		ORDER BY embedding <=> $1
		LIMIT $3`,
		queryVec, minScore, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	defer rows.Close()

	var results []models.CourseWithScore

	for rows.Next() {
		var result models.CourseWithScore

		err := rows.Scan(
			&result.ID, &result.Title, &result.Description, &result.Category, &result.Tags,
			&result.EmbeddingHash, &result.EmbeddingUpdatedAt, &result.CreatedAt, &result.UpdatedAt,
			&result.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}

		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}

// EmbeddingStats returns embedding coverage counts and the most recent
// embedding timestamp. On an empty table LastUpdated is nil.
func (r *CoursesRepository) EmbeddingStats(ctx context.Context) (*models.EmbeddingStats, error) {
	var (
		stats       models.EmbeddingStats
		lastUpdated *time.Time
	)

	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(embedding),
		       COUNT(*) - COUNT(embedding),
		       MAX(embedding_updated_at)
		FROM courses`,
	).Scan(&stats.Total, &stats.WithEmbedding, &stats.WithoutEmbedding, &lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("embedding stats: %w", err)
	}

	stats.LastUpdated = lastUpdated

	return &stats, nil
}

// scanCourse scans one course row (without the embedding vector).
func scanCourse(row pgx.Row) (*models.Course, error) {
	var course models.Course

	err := row.Scan(
		&course.ID, &course.Title, &course.Description, &course.Category, &course.Tags,
		&course.EmbeddingHash, &course.EmbeddingUpdatedAt, &course.CreatedAt, &course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &course, nil
}

func collectCourses(rows pgx.Rows) ([]models.Course, error) {
	var courses []models.Course

	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}

		courses = append(courses, *course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating courses: %w", err)
	}

	return courses, nil
}
