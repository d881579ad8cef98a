package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/learnhub/catalog/internal/api/response"
	"github.com/learnhub/catalog/internal/models"
	"github.com/learnhub/catalog/internal/service"
)

// Searcher defines the interface for semantic course search.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.CourseWithScore, error)
}

// SearchHandler handles HTTP requests for semantic search.
type SearchHandler struct {
	service Searcher
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(service Searcher) *SearchHandler {
	return &SearchHandler{service: service}
}

// SearchRequest is the body for POST /v1/courses/search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// SearchResponse is the response for semantic search.
type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
}

// SearchResultItem is one result with the course and its similarity score.
type SearchResultItem struct {
	Course     models.Course `json:"course"`
	Similarity float64       `json:"similarity"`
}

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// Search handles POST /v1/courses/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	results, err := h.service.Search(r.Context(), req.Query, limit)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			response.RespondBadRequest(w, "query is required and must be non-empty")

			return
		}

		response.RespondInternalServerError(w, "Search failed")

		return
	}

	response.RespondJSON(w, http.StatusOK, SearchResponse{Results: toResultItems(results)})
}

func toResultItems(results []models.CourseWithScore) []SearchResultItem {
	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = SearchResultItem{
			Course:     results[i].Course,
			Similarity: results[i].Similarity,
		}
	}

	return items
}
