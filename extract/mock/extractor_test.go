package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corehive/faceid/extract"
)

func TestMockExtractor_Deterministic(t *testing.T) {
	extractor := NewMockExtractor()
	ctx := context.Background()

	first, err := extractor.Extract(ctx, []byte("same image"))
	require.NoError(t, err)
	second, err := extractor.Extract(ctx, []byte("same image"))
	require.NoError(t, err)
	assert.Equal(t, first.Embedding, second.Embedding)

	other, err := extractor.Extract(ctx, []byte("different image"))
	require.NoError(t, err)
	assert.NotEqual(t, first.Embedding, other.Embedding)

	assert.Equal(t, 3, extractor.CallCount())
}

func TestMockExtractor_EmptyImageReportsNoFace(t *testing.T) {
	extractor := NewMockExtractor()
	_, err := extractor.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, extract.ErrNoFace)
}

func TestMockExtractor_CustomBehavior(t *testing.T) {
	extractor := NewMockExtractor()
	extractor.ExtractFunc = func(ctx context.Context, image []byte) (*extract.Result, error) {
		return nil, extract.ErrExtraction
	}

	_, err := extractor.Extract(context.Background(), []byte("image"))
	assert.ErrorIs(t, err, extract.ErrExtraction)

	extractor.Reset()
	_, err = extractor.Extract(context.Background(), []byte("image"))
	assert.NoError(t, err)
}

func TestDeterministicEmbedding_UnitNorm(t *testing.T) {
	embedding := DeterministicEmbedding([]byte("some image"), 128)
	require.Len(t, embedding, 128)

	var sumSquares float64
	for _, v := range embedding {
		sumSquares += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-9)
}
