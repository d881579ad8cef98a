package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/catalog/internal/apperrors"
	"github.com/learnhub/catalog/internal/jobs"
	"github.com/learnhub/catalog/internal/models"
)

type mockInserter struct {
	calls []insertCall
	err   error
}

type insertCall struct {
	args     jobs.EmbeddingJobArgs
	priority jobs.Priority
}

func (m *mockInserter) InsertEmbeddingJob(_ context.Context, args jobs.EmbeddingJobArgs, priority jobs.Priority) error {
	m.calls = append(m.calls, insertCall{args: args, priority: priority})

	return m.err
}

type mockCoursesRepo struct {
	course    *models.Course
	updated   *models.Course
	stats     *models.EmbeddingStats
	getErr    error
	createErr error
	deleteErr error
	deletedID uuid.UUID
}

func (m *mockCoursesRepo) Create(_ context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}

	course := &models.Course{
		ID:          uuid.Must(uuid.NewV7()),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
	}
	m.course = course

	return course, nil
}

func (m *mockCoursesRepo) GetByID(_ context.Context, _ uuid.UUID) (*models.Course, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}

	return m.course, nil
}

func (m *mockCoursesRepo) Update(_ context.Context, _ uuid.UUID, _ *models.UpdateCourseRequest) (*models.Course, error) {
	return m.updated, nil
}

func (m *mockCoursesRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.deletedID = id

	return m.deleteErr
}

func (m *mockCoursesRepo) List(_ context.Context, _, _ int) ([]models.Course, error) {
	return nil, nil
}

func (m *mockCoursesRepo) EmbeddingStats(_ context.Context) (*models.EmbeddingStats, error) {
	return m.stats, nil
}

func ptrString(s string) *string {
	return &s
}

func TestCoursesService_Create_enqueuesHighPriorityJob(t *testing.T) {
	repo := &mockCoursesRepo{}
	inserter := &mockInserter{}
	svc := NewCoursesService(repo, inserter)

	course, err := svc.Create(context.Background(), &models.CreateCourseRequest{
		Title:       "Intro to ML",
		Description: ptrString("basics"),
		Category:    ptrString("Data Science"),
		Tags:        []string{"ml", "ai"},
	})
	require.NoError(t, err)

	require.Len(t, inserter.calls, 1)
	call := inserter.calls[0]
	assert.Equal(t, jobs.ScopeSingleCourse, call.args.Scope)
	require.NotNil(t, call.args.CourseID)
	assert.Equal(t, course.ID, *call.args.CourseID)
	assert.Equal(t, jobs.PriorityHigh, call.priority)
}

func TestCoursesService_Create_emptyTitleFailsValidation(t *testing.T) {
	svc := NewCoursesService(&mockCoursesRepo{}, &mockInserter{})

	_, err := svc.Create(context.Background(), &models.CreateCourseRequest{Title: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCoursesService_Create_enqueueFailureDoesNotFailCreate(t *testing.T) {
	repo := &mockCoursesRepo{}
	inserter := &mockInserter{err: errors.New("queue down")}
	svc := NewCoursesService(repo, inserter)

	course, err := svc.Create(context.Background(), &models.CreateCourseRequest{Title: "Go Basics"})
	require.NoError(t, err, "embedding is asynchronous; enqueue failure must not block creation")
	assert.NotNil(t, course)
}

func TestCoursesService_Update_unchangedContentSkipsEnqueue(t *testing.T) {
	existing := &models.Course{
		ID:       uuid.Must(uuid.NewV7()),
		Title:    "Intro to ML",
		Category: ptrString("Data Science"),
		Tags:     []string{"ml"},
	}
	// Same text content after the update (e.g. only whitespace shifts).
	updated := &models.Course{
		ID:       existing.ID,
		Title:    "  Intro   to ML ",
		Category: ptrString("Data Science"),
		Tags:     []string{"ml"},
	}

	repo := &mockCoursesRepo{course: existing, updated: updated}
	inserter := &mockInserter{}
	svc := NewCoursesService(repo, inserter)

	_, err := svc.Update(context.Background(), existing.ID, &models.UpdateCourseRequest{Title: &updated.Title})
	require.NoError(t, err)
	assert.Empty(t, inserter.calls, "unchanged fingerprint must not trigger re-embedding")
}

func TestCoursesService_Update_changedContentEnqueues(t *testing.T) {
	existing := &models.Course{ID: uuid.Must(uuid.NewV7()), Title: "Intro to ML"}
	updated := &models.Course{ID: existing.ID, Title: "Advanced ML"}

	repo := &mockCoursesRepo{course: existing, updated: updated}
	inserter := &mockInserter{}
	svc := NewCoursesService(repo, inserter)

	_, err := svc.Update(context.Background(), existing.ID, &models.UpdateCourseRequest{Title: &updated.Title})
	require.NoError(t, err)

	require.Len(t, inserter.calls, 1)
	assert.Equal(t, jobs.PriorityHigh, inserter.calls[0].priority)
	assert.Equal(t, jobs.ScopeSingleCourse, inserter.calls[0].args.Scope)
}

func TestCoursesService_Update_notFoundPropagates(t *testing.T) {
	repo := &mockCoursesRepo{getErr: apperrors.NewNotFoundError("course", "")}
	svc := NewCoursesService(repo, &mockInserter{})

	_, err := svc.Update(context.Background(), uuid.Must(uuid.NewV7()), &models.UpdateCourseRequest{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCoursesService_Delete(t *testing.T) {
	repo := &mockCoursesRepo{}
	svc := NewCoursesService(repo, &mockInserter{})

	id := uuid.Must(uuid.NewV7())
	require.NoError(t, svc.Delete(context.Background(), id))
	assert.Equal(t, id, repo.deletedID)

	repo.deleteErr = apperrors.NewNotFoundError("course", "")
	assert.ErrorIs(t, svc.Delete(context.Background(), id), apperrors.ErrNotFound)
}

func TestCoursesService_EnqueueCourses(t *testing.T) {
	t.Run("enqueues one batch job at normal priority", func(t *testing.T) {
		inserter := &mockInserter{}
		svc := NewCoursesService(&mockCoursesRepo{}, inserter)

		ids := []uuid.UUID{uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())}
		require.NoError(t, svc.EnqueueCourses(context.Background(), ids))

		require.Len(t, inserter.calls, 1)
		assert.Equal(t, jobs.ScopeBatchCourses, inserter.calls[0].args.Scope)
		assert.Equal(t, ids, inserter.calls[0].args.CourseIDs)
		assert.Equal(t, jobs.PriorityNormal, inserter.calls[0].priority)
	})

	t.Run("empty id list fails validation", func(t *testing.T) {
		inserter := &mockInserter{}
		svc := NewCoursesService(&mockCoursesRepo{}, inserter)

		err := svc.EnqueueCourses(context.Background(), nil)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Empty(t, inserter.calls)
	})
}

func TestCoursesService_EnqueueAllCourses(t *testing.T) {
	inserter := &mockInserter{}
	svc := NewCoursesService(&mockCoursesRepo{}, inserter)

	require.NoError(t, svc.EnqueueAllCourses(context.Background()))

	require.Len(t, inserter.calls, 1)
	assert.Equal(t, jobs.ScopeAllCourses, inserter.calls[0].args.Scope)
	assert.Nil(t, inserter.calls[0].args.CourseID)
	assert.Equal(t, jobs.PriorityLow, inserter.calls[0].priority)
}

func TestCoursesService_EnqueueAllCourses_errorSurfaces(t *testing.T) {
	inserter := &mockInserter{err: errors.New("queue down")}
	svc := NewCoursesService(&mockCoursesRepo{}, inserter)

	assert.Error(t, svc.EnqueueAllCourses(context.Background()))
}
