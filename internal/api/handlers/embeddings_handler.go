package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/learnhub/catalog/internal/api/response"
	"github.com/learnhub/catalog/internal/apperrors"
	"github.com/learnhub/catalog/internal/jobs"
	"github.com/learnhub/catalog/internal/models"
)

// EmbeddingsService defines the embedding pipeline operations exposed over HTTP.
type EmbeddingsService interface {
	EnqueueCourses(ctx context.Context, ids []uuid.UUID) error
	EnqueueAllCourses(ctx context.Context) error
	Stats(ctx context.Context) (*models.EmbeddingStats, error)
}

// ProgressSource reports the last known progress per embedding job.
type ProgressSource interface {
	Snapshot() map[int64]int
}

// EmbeddingsHandler handles HTTP requests for the embedding pipeline.
type EmbeddingsHandler struct {
	service  EmbeddingsService
	progress ProgressSource
}

// NewEmbeddingsHandler creates a new embeddings handler.
func NewEmbeddingsHandler(service EmbeddingsService, progress ProgressSource) *EmbeddingsHandler {
	return &EmbeddingsHandler{service: service, progress: progress}
}

// GenerateAll handles POST /v1/embeddings/generate-all. It enqueues the
// catalog-wide sweep; while a sweep is already pending or running the call is
// an accepted no-op.
func (h *EmbeddingsHandler) GenerateAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.EnqueueAllCourses(r.Context()); err != nil {
		response.RespondInternalServerError(w, "Failed to enqueue embedding generation")

		return
	}

	response.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "enqueued"})
}

// GenerateRequest is the body for POST /v1/embeddings/generate.
type GenerateRequest struct {
	CourseIDs []uuid.UUID `json:"courseIds"` //nolint:tagliatelle // API contract
}

// Generate handles POST /v1/embeddings/generate: one batch job for the listed
// courses.
func (h *EmbeddingsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	if err := h.service.EnqueueCourses(r.Context(), req.CourseIDs); err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			response.RespondUnprocessableEntity(w, err.Error())

			return
		}

		response.RespondInternalServerError(w, "Failed to enqueue embedding generation")

		return
	}

	response.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "enqueued"})
}

// Stats handles GET /v1/embeddings/stats.
func (h *EmbeddingsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		response.RespondInternalServerError(w, "Failed to get embedding stats")

		return
	}

	response.RespondSuccess(w, http.StatusOK, stats)
}

// ProgressResponse lists the last reported progress of embedding jobs.
type ProgressResponse struct {
	Jobs []JobProgress `json:"jobs"`
}

// JobProgress is one job's last reported completion percentage.
type JobProgress struct {
	JobID   int64 `json:"jobId"`   //nolint:tagliatelle // API contract
	Percent int   `json:"percent"`
}

// Progress handles GET /v1/embeddings/progress.
func (h *EmbeddingsHandler) Progress(w http.ResponseWriter, _ *http.Request) {
	last := h.progress.Snapshot()

	out := ProgressResponse{Jobs: make([]JobProgress, 0, len(last))}
	for jobID, percent := range last {
		out.Jobs = append(out.Jobs, JobProgress{JobID: jobID, Percent: percent})
	}

	response.RespondJSON(w, http.StatusOK, out)
}

var _ ProgressSource = (*jobs.ProgressTracker)(nil)
