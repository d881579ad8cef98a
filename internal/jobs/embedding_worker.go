package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"golang.org/x/time/rate"

	"github.com/learnhub/catalog/internal/content"
	"github.com/learnhub/catalog/internal/embeddings"
	"github.com/learnhub/catalog/internal/models"
)

var (
	errMissingCourseID = errors.New("single-course job without course_id")
	errUnknownScope    = errors.New("unknown job scope")
)

const (
	defaultBatchSize = 100
	// defaultBatchPause smooths provider load between successive groups of one job.
	defaultBatchPause   = 200 * time.Millisecond
	embeddingJobTimeout = 10 * time.Minute
)

// CourseEmbeddingStore is the persistence surface the worker needs.
type CourseEmbeddingStore interface {
	GetByIDsForEmbedding(ctx context.Context, ids []uuid.UUID) ([]models.Course, error)
	GetAllForEmbedding(ctx context.Context) ([]models.Course, error)
	BatchUpdateEmbeddings(ctx context.Context, updates []models.EmbeddingUpdate) error
}

// ProgressReporter receives 0-100 progress values from running jobs.
type ProgressReporter interface {
	Report(jobID int64, percent int)
}

// EmbeddingWorkerDeps holds the dependencies for the embedding worker.
type EmbeddingWorkerDeps struct {
	Courses  CourseEmbeddingStore
	Embedder embeddings.Client
	// RateLimiter caps provider calls per time window across all concurrently
	// running jobs. May be nil (no cap).
	RateLimiter *rate.Limiter
	Progress    ProgressReporter
	// BatchSize is the number of courses per provider call. Defaults to 100.
	BatchSize int
	// BatchPause is the pause between successive groups within one job.
	BatchPause time.Duration
}

// EmbeddingWorker processes course embedding jobs: it resolves the target
// courses, partitions them into groups, skips fingerprint-unchanged content,
// embeds the rest, and persists each group in one transaction.
type EmbeddingWorker struct {
	river.WorkerDefaults[EmbeddingJobArgs]
	deps EmbeddingWorkerDeps
}

// NewEmbeddingWorker creates a new embedding worker with the given dependencies.
func NewEmbeddingWorker(deps EmbeddingWorkerDeps) *EmbeddingWorker {
	if deps.BatchSize <= 0 {
		deps.BatchSize = defaultBatchSize
	}

	if deps.BatchPause <= 0 {
		deps.BatchPause = defaultBatchPause
	}

	return &EmbeddingWorker{deps: deps}
}

// Timeout limits how long a single embedding job can run.
func (w *EmbeddingWorker) Timeout(*river.Job[EmbeddingJobArgs]) time.Duration {
	return embeddingJobTimeout
}

// Work processes one embedding job end to end.
func (w *EmbeddingWorker) Work(ctx context.Context, job *river.Job[EmbeddingJobArgs]) error {
	args := job.Args

	slog.Debug("processing embedding job",
		"job_id", job.ID,
		"scope", args.Scope,
		"course_id", args.CourseID,
		"course_count", len(args.CourseIDs),
	)

	courses, err := w.resolve(ctx, args)
	if err != nil {
		return err
	}

	if len(courses) == 0 {
		// Nothing to do: for single-course jobs the course may have been
		// deleted after enqueueing, which is a completed no-op, not an error.
		if args.Scope == ScopeSingleCourse {
			slog.Info("course deleted before embedding job ran",
				"job_id", job.ID,
				"course_id", args.CourseID,
			)
		}

		w.reportProgress(job.ID, 100)

		return nil
	}

	groups := partition(courses, w.deps.BatchSize)

	var updated, skipped, failed int

	for i, group := range groups {
		outcome, err := w.processGroup(ctx, group)
		if err != nil {
			return err
		}

		updated += outcome.updated
		skipped += outcome.skipped
		failed += outcome.failed

		w.reportProgress(job.ID, (i+1)*100/len(groups))

		slog.Info("embedding batch processed",
			"job_id", job.ID,
			"batch", i+1,
			"batches", len(groups),
			"updated", outcome.updated,
			"skipped", outcome.skipped,
			"failed", outcome.failed,
		)

		if i < len(groups)-1 {
			if err := sleepCtx(ctx, w.deps.BatchPause); err != nil {
				return err
			}
		}
	}

	slog.Info("embedding job complete",
		"job_id", job.ID,
		"scope", args.Scope,
		"updated", updated,
		"skipped", skipped,
		"failed", failed,
	)

	return nil
}

// resolve fetches the target courses for the job's scope.
func (w *EmbeddingWorker) resolve(ctx context.Context, args EmbeddingJobArgs) ([]models.Course, error) {
	switch args.Scope {
	case ScopeSingleCourse:
		if args.CourseID == nil {
			return nil, river.JobCancel(errMissingCourseID)
		}

		courses, err := w.deps.Courses.GetByIDsForEmbedding(ctx, []uuid.UUID{*args.CourseID})
		if err != nil {
			return nil, fmt.Errorf("resolve course %s: %w", args.CourseID, err)
		}

		return courses, nil

	case ScopeBatchCourses:
		if len(args.CourseIDs) == 0 {
			courses, err := w.deps.Courses.GetAllForEmbedding(ctx)
			if err != nil {
				return nil, fmt.Errorf("resolve all courses: %w", err)
			}

			return courses, nil
		}

		courses, err := w.deps.Courses.GetByIDsForEmbedding(ctx, args.CourseIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve course batch: %w", err)
		}

		return courses, nil

	case ScopeAllCourses:
		courses, err := w.deps.Courses.GetAllForEmbedding(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve all courses: %w", err)
		}

		return courses, nil

	default:
		// Unrecognized scope can't be fixed by retrying; cancel loudly.
		return nil, river.JobCancel(fmt.Errorf("%w: %q", errUnknownScope, args.Scope))
	}
}

type groupOutcome struct {
	updated int
	skipped int
	failed  int
}

type pendingItem struct {
	courseID uuid.UUID
	text     string
	hash     string
}

// processGroup embeds and persists one group of courses. Content whose
// fingerprint matches the stored hash is skipped before the provider call.
// Permanent provider rejections count as per-item failures without failing
// the job; transient and persistence errors propagate so the queue retries.
func (w *EmbeddingWorker) processGroup(ctx context.Context, group []models.Course) (groupOutcome, error) {
	var out groupOutcome

	pending := make([]pendingItem, 0, len(group))

	for _, course := range group {
		text := content.AssembleCourseText(course.Title, course.Description, course.Category, course.Tags)
		if text == "" {
			out.failed++

			slog.Warn("embedding: course has no embeddable content", "course_id", course.ID)

			continue
		}

		if !content.Changed(text, course.EmbeddingHash) {
			out.skipped++

			continue
		}

		pending = append(pending, pendingItem{
			courseID: course.ID,
			text:     text,
			hash:     content.Fingerprint(text),
		})
	}

	if len(pending) == 0 {
		return out, nil
	}

	if w.deps.RateLimiter != nil {
		if err := w.deps.RateLimiter.Wait(ctx); err != nil {
			return out, fmt.Errorf("rate limiter: %w", err)
		}
	}

	texts := make([]string, len(pending))
	for i, item := range pending {
		texts[i] = item.text
	}

	var updates []models.EmbeddingUpdate

	vectors, err := w.deps.Embedder.GetEmbeddings(ctx, texts)
	switch {
	case err == nil:
		updates = make([]models.EmbeddingUpdate, len(pending))
		for i, item := range pending {
			updates[i] = models.EmbeddingUpdate{
				CourseID:  item.courseID,
				Embedding: vectors[i],
				Hash:      item.hash,
			}
		}

	case embeddings.IsPermanent(err):
		// A batch rejection doesn't say which item the provider refused.
		// Retry one at a time so only the offending items fail.
		slog.Warn("embedding: provider rejected batch, retrying items individually",
			"count", len(pending),
			"error", err,
		)

		var failed int

		updates, failed, err = w.embedIndividually(ctx, pending)
		if err != nil {
			return out, err
		}

		out.failed += failed

	default:
		return out, fmt.Errorf("embed batch: %w", err)
	}

	if len(updates) == 0 {
		return out, nil
	}

	if err := w.deps.Courses.BatchUpdateEmbeddings(ctx, updates); err != nil {
		return out, fmt.Errorf("persist embedding batch: %w", err)
	}

	out.updated = len(updates)

	return out, nil
}

// embedIndividually embeds pending items one provider call at a time. Items
// the provider permanently rejects are counted failed and skipped; transient
// errors propagate so the queue retries the job.
func (w *EmbeddingWorker) embedIndividually(ctx context.Context, pending []pendingItem) ([]models.EmbeddingUpdate, int, error) {
	updates := make([]models.EmbeddingUpdate, 0, len(pending))

	var failed int

	for _, item := range pending {
		if w.deps.RateLimiter != nil {
			if err := w.deps.RateLimiter.Wait(ctx); err != nil {
				return nil, 0, fmt.Errorf("rate limiter: %w", err)
			}
		}

		vector, err := w.deps.Embedder.GetEmbedding(ctx, item.text)
		if err != nil {
			if embeddings.IsPermanent(err) {
				failed++

				slog.Error("embedding: provider rejected course",
					"course_id", item.courseID,
					"error", err,
				)

				continue
			}

			return nil, 0, fmt.Errorf("embed course %s: %w", item.courseID, err)
		}

		updates = append(updates, models.EmbeddingUpdate{
			CourseID:  item.courseID,
			Embedding: vector,
			Hash:      item.hash,
		})
	}

	return updates, failed, nil
}

func (w *EmbeddingWorker) reportProgress(jobID int64, percent int) {
	if w.deps.Progress != nil {
		w.deps.Progress.Report(jobID, percent)
	}
}

// partition splits courses into groups of at most size, preserving order.
func partition(courses []models.Course, size int) [][]models.Course {
	groups := make([][]models.Course, 0, (len(courses)+size-1)/size)

	for start := 0; start < len(courses); start += size {
		end := start + size
		if end > len(courses) {
			end = len(courses)
		}

		groups = append(groups, courses[start:end])
	}

	return groups
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
