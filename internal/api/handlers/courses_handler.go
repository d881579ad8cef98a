// Package handlers implements the HTTP handlers for the catalog API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/learnhub/catalog/internal/api/response"
	"github.com/learnhub/catalog/internal/apperrors"
	"github.com/learnhub/catalog/internal/models"
)

// CoursesService defines the interface for course CRUD operations.
type CoursesService interface {
	Create(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Course, error)
	List(ctx context.Context, limit, offset int) ([]models.Course, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CoursesHandler handles HTTP requests for courses.
type CoursesHandler struct {
	service CoursesService
}

// NewCoursesHandler creates a new courses handler.
func NewCoursesHandler(service CoursesService) *CoursesHandler {
	return &CoursesHandler{service: service}
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Create handles POST /v1/courses.
func (h *CoursesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	course, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			response.RespondUnprocessableEntity(w, err.Error())

			return
		}

		response.RespondInternalServerError(w, "Failed to create course")

		return
	}

	response.RespondSuccess(w, http.StatusCreated, course)
}

// Get handles GET /v1/courses/{id}.
func (h *CoursesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	course, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Course not found")

			return
		}

		response.RespondInternalServerError(w, "Failed to get course")

		return
	}

	response.RespondSuccess(w, http.StatusOK, course)
}

// List handles GET /v1/courses.
func (h *CoursesHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r.URL.Query().Get("limit"), defaultListLimit)
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := parsePositiveInt(r.URL.Query().Get("offset"), 0)

	courses, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		response.RespondInternalServerError(w, "Failed to list courses")

		return
	}

	if courses == nil {
		courses = []models.Course{}
	}

	response.RespondSuccess(w, http.StatusOK, courses)
}

// Update handles PATCH /v1/courses/{id}.
func (h *CoursesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	var req models.UpdateCourseRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	course, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Course not found")

			return
		}

		if errors.Is(err, apperrors.ErrValidation) {
			response.RespondUnprocessableEntity(w, err.Error())

			return
		}

		response.RespondInternalServerError(w, "Failed to update course")

		return
	}

	response.RespondSuccess(w, http.StatusOK, course)
}

// Delete handles DELETE /v1/courses/{id}.
func (h *CoursesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, "Course not found")

			return
		}

		response.RespondInternalServerError(w, "Failed to delete course")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseCourseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		response.RespondBadRequest(w, "Course ID is required")

		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		response.RespondBadRequest(w, "Invalid course ID")

		return uuid.Nil, false
	}

	return id, true
}

// parsePositiveInt returns s as a non-negative int, or def when missing or invalid.
func parsePositiveInt(s string, def int) int {
	if s == "" {
		return def
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}

	return n
}
