// Package service implements the course catalog business logic on top of the
// repository, the embedding queue, and the embedding provider.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/learnhub/catalog/internal/apperrors"
	"github.com/learnhub/catalog/internal/content"
	"github.com/learnhub/catalog/internal/jobs"
	"github.com/learnhub/catalog/internal/models"
)

// CoursesRepo is the repository surface the courses service needs.
type CoursesRepo interface {
	Create(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]models.Course, error)
	EmbeddingStats(ctx context.Context) (*models.EmbeddingStats, error)
}

// CoursesService handles course CRUD and triggers embedding jobs when course
// text changes. Embedding is asynchronous: enqueue failures are logged, never
// surfaced to the caller of Create/Update.
type CoursesService struct {
	repo     CoursesRepo
	inserter jobs.JobInserter
}

// NewCoursesService creates a new courses service.
func NewCoursesService(repo CoursesRepo, inserter jobs.JobInserter) *CoursesService {
	return &CoursesService{repo: repo, inserter: inserter}
}

// Create persists a new course and enqueues a high-priority embedding job for it.
func (s *CoursesService) Create(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.NewValidationError("title", "title is required")
	}

	course, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.enqueueCourse(ctx, course.ID)

	return course, nil
}

// Get returns one course by id.
func (s *CoursesService) Get(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns courses, newest first.
func (s *CoursesService) List(ctx context.Context, limit, offset int) ([]models.Course, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update applies the changes and enqueues a re-embedding job only when the
// assembled course content actually changed, so cosmetic updates don't spend
// provider calls.
func (s *CoursesService) Update(ctx context.Context, id uuid.UUID, req *models.UpdateCourseRequest) (*models.Course, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	oldText := content.AssembleCourseText(existing.Title, existing.Description, existing.Category, existing.Tags)
	newText := content.AssembleCourseText(updated.Title, updated.Description, updated.Category, updated.Tags)

	if content.Fingerprint(oldText) != content.Fingerprint(newText) {
		s.enqueueCourse(ctx, id)
	}

	return updated, nil
}

// Delete removes a course. Any already-enqueued embedding job for it completes
// as a no-op when the worker finds the course gone.
func (s *CoursesService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// EnqueueCourses enqueues one normal-priority embedding job covering the given
// courses. Deleted ids are skipped by the worker.
func (s *CoursesService) EnqueueCourses(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return apperrors.NewValidationError("courseIds", "at least one course id is required")
	}

	args := jobs.EmbeddingJobArgs{Scope: jobs.ScopeBatchCourses, CourseIDs: ids}

	if err := s.inserter.InsertEmbeddingJob(ctx, args, jobs.PriorityNormal); err != nil {
		return fmt.Errorf("enqueue batch embedding job: %w", err)
	}

	return nil
}

// EnqueueAllCourses enqueues the singleton catalog-wide embedding sweep at low
// priority. Idempotent: while one sweep is pending or running, further calls
// are no-ops.
func (s *CoursesService) EnqueueAllCourses(ctx context.Context) error {
	err := s.inserter.InsertEmbeddingJob(ctx, jobs.EmbeddingJobArgs{Scope: jobs.ScopeAllCourses}, jobs.PriorityLow)
	if err != nil {
		return fmt.Errorf("enqueue all-courses embedding job: %w", err)
	}

	return nil
}

// Stats returns embedding coverage of the catalog.
func (s *CoursesService) Stats(ctx context.Context) (*models.EmbeddingStats, error) {
	return s.repo.EmbeddingStats(ctx)
}

func (s *CoursesService) enqueueCourse(ctx context.Context, id uuid.UUID) {
	args := jobs.EmbeddingJobArgs{Scope: jobs.ScopeSingleCourse, CourseID: &id}

	if err := s.inserter.InsertEmbeddingJob(ctx, args, jobs.PriorityHigh); err != nil {
		slog.Error("embedding: enqueue failed", "course_id", id, "error", err)

		return
	}

	slog.Info("embedding: job enqueued", "course_id", id)
}
