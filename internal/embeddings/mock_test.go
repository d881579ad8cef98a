package embeddings

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_GetEmbedding_deterministic(t *testing.T) {
	client := NewMockClientWithDimensions(8)

	first, err := client.GetEmbedding(context.Background(), "machine learning basics")
	require.NoError(t, err)

	second, err := client.GetEmbedding(context.Background(), "machine learning basics")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 8)
}

func TestMockClient_GetEmbedding_unitLength(t *testing.T) {
	client := NewMockClient()

	vec, err := client.GetEmbedding(context.Background(), "some text")
	require.NoError(t, err)
	require.Len(t, vec, 1536)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestMockClient_GetEmbeddings_preservesOrder(t *testing.T) {
	client := NewMockClientWithDimensions(4)

	texts := []string{"alpha", "beta", "gamma"}
	vecs, err := client.GetEmbeddings(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	for i, text := range texts {
		single, err := client.GetEmbedding(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, single, vecs[i], "batch result %d must match single embedding", i)
	}
}

func TestMockClient_emptyInputIsPermanent(t *testing.T) {
	client := NewMockClient()

	_, err := client.GetEmbedding(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, IsPermanent(err))

	_, err = client.GetEmbeddings(context.Background(), []string{"ok", ""})
	require.Error(t, err)
	assert.True(t, IsPermanent(err))

	_, err = client.GetEmbeddings(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}
