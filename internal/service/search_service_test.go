package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/catalog/internal/models"
)

type mockEmbedderClient struct {
	embedFunc func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedderClient) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.embedFunc != nil {
		return m.embedFunc(ctx, text)
	}

	return []float32{0.1, 0.2}, nil
}

func (m *mockEmbedderClient) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.GetEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}

		out[i] = vec
	}

	return out, nil
}

type mockSearchRepo struct {
	searchFunc func(ctx context.Context, queryEmbedding []float32, limit int, minScore float64) ([]models.CourseWithScore, error)
}

func (m *mockSearchRepo) SemanticSearch(
	ctx context.Context, queryEmbedding []float32, limit int, minScore float64,
) ([]models.CourseWithScore, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, queryEmbedding, limit, minScore)
	}

	return nil, nil
}

func TestSearchService_Search(t *testing.T) {
	t.Run("empty query returns ErrEmptyQuery", func(t *testing.T) {
		svc := NewSearchService(&mockEmbedderClient{}, &mockSearchRepo{}, 0.7)

		results, err := svc.Search(context.Background(), "   ", 10)
		assert.Nil(t, results)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("delegates with trimmed query and configured threshold", func(t *testing.T) {
		var embeddedText string
		embedder := &mockEmbedderClient{
			embedFunc: func(_ context.Context, text string) ([]float32, error) {
				embeddedText = text

				return []float32{0.5}, nil
			},
		}

		var gotLimit int
		var gotMinScore float64
		repo := &mockSearchRepo{
			searchFunc: func(_ context.Context, queryEmbedding []float32, limit int, minScore float64) ([]models.CourseWithScore, error) {
				gotLimit = limit
				gotMinScore = minScore
				assert.Equal(t, []float32{0.5}, queryEmbedding)

				return []models.CourseWithScore{
					{Course: models.Course{Title: "Intro to ML"}, Similarity: 0.91},
				}, nil
			},
		}

		svc := NewSearchService(embedder, repo, 0.7)

		results, err := svc.Search(context.Background(), "  machine learning basics ", 5)
		require.NoError(t, err)

		assert.Equal(t, "machine learning basics", embeddedText)
		assert.Equal(t, 5, gotLimit)
		assert.InDelta(t, 0.7, gotMinScore, 1e-9)
		require.Len(t, results, 1)
		assert.Equal(t, "Intro to ML", results[0].Title)
	})

	t.Run("embedding failure surfaces", func(t *testing.T) {
		embedder := &mockEmbedderClient{
			embedFunc: func(_ context.Context, _ string) ([]float32, error) {
				return nil, errors.New("provider down")
			},
		}
		svc := NewSearchService(embedder, &mockSearchRepo{}, 0.7)

		_, err := svc.Search(context.Background(), "query", 10)
		assert.Error(t, err)
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		repo := &mockSearchRepo{
			searchFunc: func(_ context.Context, _ []float32, _ int, _ float64) ([]models.CourseWithScore, error) {
				return nil, errors.New("db down")
			},
		}
		svc := NewSearchService(&mockEmbedderClient{}, repo, 0.7)

		_, err := svc.Search(context.Background(), "query", 10)
		assert.Error(t, err)
	})
}
