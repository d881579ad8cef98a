package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/learnhub/catalog/internal/embeddings"
	"github.com/learnhub/catalog/internal/models"
)

// ErrEmptyQuery is returned when the search query is empty after trimming.
var ErrEmptyQuery = errors.New("query is required and must be non-empty")

// SearchRepo provides the similarity search the service delegates to.
type SearchRepo interface {
	SemanticSearch(ctx context.Context, queryEmbedding []float32, limit int, minScore float64) ([]models.CourseWithScore, error)
}

// SearchService performs semantic course search. Each call embeds the query
// text; query embeddings are not cached (possible future optimization).
type SearchService struct {
	embedder embeddings.Client
	repo     SearchRepo
	minScore float64
}

// NewSearchService creates a search service with the default similarity threshold.
func NewSearchService(embedder embeddings.Client, repo SearchRepo, minScore float64) *SearchService {
	return &SearchService{
		embedder: embedder,
		repo:     repo,
		minScore: minScore,
	}
}

// Search embeds the query and returns up to limit courses with similarity
// above the configured threshold, nearest first.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]models.CourseWithScore, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	embedding, err := s.embedder.GetEmbedding(ctx, query)
	if err != nil {
		slog.Error("search: create query embedding failed", "error", err)

		return nil, fmt.Errorf("create query embedding: %w", err)
	}

	results, err := s.repo.SemanticSearch(ctx, embedding, limit, s.minScore)
	if err != nil {
		slog.Error("search: similarity search failed", "error", err)

		return nil, fmt.Errorf("similarity search: %w", err)
	}

	return results, nil
}
