// Package embeddings provides clients for generating text embeddings.
package embeddings

import "context"

// Client defines the interface for generating text embeddings.
type Client interface {
	// GetEmbedding generates an embedding vector for the given text.
	GetEmbedding(ctx context.Context, text string) ([]float32, error)

	// GetEmbeddings generates embedding vectors for multiple texts in one
	// provider call. The result preserves input order: result[i] is the
	// embedding of texts[i].
	GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}
