package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

var (
	// ErrEmptyInput is returned when an input text is empty after trimming.
	ErrEmptyInput = errors.New("openai: input text is empty")
	// ErrInvalidDims is returned when dimensions is not positive.
	ErrInvalidDims = errors.New("openai: embedding dimensions must be positive")
	// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
	ErrNoEmbeddingInResponse = errors.New("openai: no embedding in response")
	// ErrDimensionMismatch is returned when a response embedding length does not match configured dimensions.
	ErrDimensionMismatch = errors.New("openai: embedding dimension mismatch")
)

const defaultDimensions = 1536

// OpenAIClient calls the OpenAI embeddings API via the official SDK.
type OpenAIClient struct {
	sdk        openaisdk.Client
	model      string
	dimensions int
}

// Ensure OpenAIClient implements Client interface.
var _ Client = (*OpenAIClient)(nil)

// OpenAIOption configures the OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithModel sets the embedding model identifier.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.model = model
	}
}

// WithDimensions sets the requested embedding dimension (must match the DB column).
func WithDimensions(dim int) OpenAIOption {
	return func(c *OpenAIClient) {
		c.dimensions = dim
	}
}

// NewOpenAIClient creates an OpenAI embeddings client using the official SDK.
// Defaults to text-embedding-3-small with 1536 dimensions.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	client := &OpenAIClient{
		sdk:        openaisdk.NewClient(option.WithAPIKey(apiKey)),
		model:      string(openaisdk.EmbeddingModelTextEmbedding3Small),
		dimensions: defaultDimensions,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// GetEmbedding generates an embedding vector for the given text.
func (c *OpenAIClient) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.GetEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return vecs[0], nil
}

// GetEmbeddings generates embedding vectors for multiple texts in one API call.
// Each returned vector has the configured dimensions and result[i] corresponds
// to texts[i]. Empty inputs fail before any network call; API rejections that
// retrying cannot fix are wrapped in PermanentError.
func (c *OpenAIClient) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, &PermanentError{Err: ErrEmptyInput}
	}

	if c.dimensions <= 0 {
		return nil, ErrInvalidDims
	}

	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, &PermanentError{Err: fmt.Errorf("%w (index %d)", ErrEmptyInput, i)}
		}
	}

	resp, err := c.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:      openaisdk.EmbeddingModel(c.model),
		Dimensions: param.NewOpt(int64(c.dimensions)),
	})
	if err != nil {
		return nil, classifyAPIError(err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrNoEmbeddingInResponse, len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))

	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= int64(len(texts)) {
			return nil, fmt.Errorf("%w: index %d out of range", ErrNoEmbeddingInResponse, data.Index)
		}

		if len(data.Embedding) != c.dimensions {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(data.Embedding), c.dimensions)
		}

		vec := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vec[i] = float32(v)
		}

		// The API tags each embedding with its input index.
		out[data.Index] = vec
	}

	return out, nil
}

// classifyAPIError wraps client-side API rejections in PermanentError so callers
// don't burn retries on requests that can never succeed. Rate limits (429) and
// server errors stay transient.
func classifyAPIError(err error) error {
	var apiErr *openaisdk.Error
	if !errors.As(err, &apiErr) {
		// Network-level failure; assume transient.
		return fmt.Errorf("openai embedding: %w", err)
	}

	switch apiErr.StatusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("openai embedding rate limited: %w", err)
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return &PermanentError{Err: fmt.Errorf("openai embedding: %w", err)}
	default:
		return fmt.Errorf("openai embedding: %w", err)
	}
}
