package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/catalog/internal/apperrors"
	"github.com/learnhub/catalog/internal/models"
)

type mockCoursesService struct {
	createFunc func(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error)
	getFunc    func(ctx context.Context, id uuid.UUID) (*models.Course, error)
	listFunc   func(ctx context.Context, limit, offset int) ([]models.Course, error)
	updateFunc func(ctx context.Context, id uuid.UUID, req *models.UpdateCourseRequest) (*models.Course, error)
	deleteFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockCoursesService) Create(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}

	return nil, nil
}

func (m *mockCoursesService) Get(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}

	return nil, nil
}

func (m *mockCoursesService) List(ctx context.Context, limit, offset int) ([]models.Course, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}

	return nil, nil
}

func (m *mockCoursesService) Update(ctx context.Context, id uuid.UUID, req *models.UpdateCourseRequest) (*models.Course, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, req)
	}

	return nil, nil
}

func (m *mockCoursesService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}

	return nil
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)

	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCoursesHandler_Create(t *testing.T) {
	t.Run("success returns 201 with course", func(t *testing.T) {
		id := uuid.Must(uuid.NewV7())
		mock := &mockCoursesService{
			createFunc: func(_ context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
				assert.Equal(t, "Intro to ML", req.Title)

				return &models.Course{ID: id, Title: req.Title}, nil
			},
		}
		handler := NewCoursesHandler(mock)

		body := []byte(`{"title":"Intro to ML","tags":["ml"]}`)
		req := httptest.NewRequest(http.MethodPost, "http://test/v1/courses", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Create(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Data models.Course `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, id, resp.Data.ID)
		assert.Equal(t, "Intro to ML", resp.Data.Title)
	})

	t.Run("invalid body returns 400", func(t *testing.T) {
		handler := NewCoursesHandler(&mockCoursesService{})

		req := httptest.NewRequest(http.MethodPost, "http://test/v1/courses", bytes.NewReader([]byte(`{`)))
		rec := httptest.NewRecorder()

		handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		handler := NewCoursesHandler(&mockCoursesService{})

		body := []byte(`{"title":"x","bogus":true}`)
		req := httptest.NewRequest(http.MethodPost, "http://test/v1/courses", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation error returns 422", func(t *testing.T) {
		mock := &mockCoursesService{
			createFunc: func(_ context.Context, _ *models.CreateCourseRequest) (*models.Course, error) {
				return nil, apperrors.NewValidationError("title", "title is required")
			},
		}
		handler := NewCoursesHandler(mock)

		body := []byte(`{"title":"  "}`)
		req := httptest.NewRequest(http.MethodPost, "http://test/v1/courses", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Create(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestCoursesHandler_Get(t *testing.T) {
	t.Run("success returns 200", func(t *testing.T) {
		id := uuid.Must(uuid.NewV7())
		mock := &mockCoursesService{
			getFunc: func(_ context.Context, gotID uuid.UUID) (*models.Course, error) {
				assert.Equal(t, id, gotID)

				return &models.Course{ID: id, Title: "Go Basics"}, nil
			},
		}
		handler := NewCoursesHandler(mock)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "http://test/v1/courses/"+id.String(), nil), "id", id.String())
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid id returns 400", func(t *testing.T) {
		handler := NewCoursesHandler(&mockCoursesService{})

		req := withURLParam(httptest.NewRequest(http.MethodGet, "http://test/v1/courses/nope", nil), "id", "nope")
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing course returns 404", func(t *testing.T) {
		mock := &mockCoursesService{
			getFunc: func(_ context.Context, _ uuid.UUID) (*models.Course, error) {
				return nil, apperrors.NewNotFoundError("course", "")
			},
		}
		handler := NewCoursesHandler(mock)

		id := uuid.Must(uuid.NewV7())
		req := withURLParam(httptest.NewRequest(http.MethodGet, "http://test/v1/courses/"+id.String(), nil), "id", id.String())
		rec := httptest.NewRecorder()

		handler.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCoursesHandler_List(t *testing.T) {
	t.Run("clamps limit and passes offset", func(t *testing.T) {
		var gotLimit, gotOffset int
		mock := &mockCoursesService{
			listFunc: func(_ context.Context, limit, offset int) ([]models.Course, error) {
				gotLimit = limit
				gotOffset = offset

				return nil, nil
			},
		}
		handler := NewCoursesHandler(mock)

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/courses?limit=1000&offset=20", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, maxListLimit, gotLimit)
		assert.Equal(t, 20, gotOffset)
	})

	t.Run("nil result serializes as empty array", func(t *testing.T) {
		handler := NewCoursesHandler(&mockCoursesService{})

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/courses", nil)
		rec := httptest.NewRecorder()

		handler.List(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
	})
}

func TestCoursesHandler_Delete(t *testing.T) {
	t.Run("success returns 204", func(t *testing.T) {
		id := uuid.Must(uuid.NewV7())
		mock := &mockCoursesService{
			deleteFunc: func(_ context.Context, gotID uuid.UUID) error {
				assert.Equal(t, id, gotID)

				return nil
			},
		}
		handler := NewCoursesHandler(mock)

		req := withURLParam(httptest.NewRequest(http.MethodDelete, "http://test/v1/courses/"+id.String(), nil), "id", id.String())
		rec := httptest.NewRecorder()

		handler.Delete(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing course returns 404", func(t *testing.T) {
		mock := &mockCoursesService{
			deleteFunc: func(_ context.Context, _ uuid.UUID) error {
				return apperrors.NewNotFoundError("course", "")
			},
		}
		handler := NewCoursesHandler(mock)

		id := uuid.Must(uuid.NewV7())
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "http://test/v1/courses/"+id.String(), nil), "id", id.String())
		rec := httptest.NewRecorder()

		handler.Delete(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCoursesHandler_Update(t *testing.T) {
	t.Run("success returns 200", func(t *testing.T) {
		id := uuid.Must(uuid.NewV7())
		newTitle := "Advanced ML"
		mock := &mockCoursesService{
			updateFunc: func(_ context.Context, gotID uuid.UUID, req *models.UpdateCourseRequest) (*models.Course, error) {
				assert.Equal(t, id, gotID)
				require.NotNil(t, req.Title)
				assert.Equal(t, newTitle, *req.Title)

				return &models.Course{ID: id, Title: newTitle}, nil
			},
		}
		handler := NewCoursesHandler(mock)

		body := []byte(`{"title":"Advanced ML"}`)
		req := withURLParam(httptest.NewRequest(http.MethodPatch, "http://test/v1/courses/"+id.String(), bytes.NewReader(body)), "id", id.String())
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing course returns 404", func(t *testing.T) {
		mock := &mockCoursesService{
			updateFunc: func(_ context.Context, _ uuid.UUID, _ *models.UpdateCourseRequest) (*models.Course, error) {
				return nil, apperrors.NewNotFoundError("course", "")
			},
		}
		handler := NewCoursesHandler(mock)

		id := uuid.Must(uuid.NewV7())
		req := withURLParam(httptest.NewRequest(http.MethodPatch, "http://test/v1/courses/"+id.String(), bytes.NewReader([]byte(`{}`))), "id", id.String())
		rec := httptest.NewRecorder()

		handler.Update(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
