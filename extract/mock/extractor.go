package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync/atomic"

	"github.com/corehive/faceid/core"
	"github.com/corehive/faceid/extract"
)

// MockExtractor is a test double for extract.Extractor.
// It allows custom behavior injection via function fields.
type MockExtractor struct {
	// ExtractFunc is called by Extract if set.
	// If nil, uses default deterministic behavior.
	ExtractFunc func(ctx context.Context, image []byte) (*extract.Result, error)

	// Dim is the embedding length for the default behavior (128 if zero).
	Dim int

	callCount atomic.Int64
}

var _ extract.Extractor = (*MockExtractor)(nil)

// NewMockExtractor creates a mock extractor with default deterministic
// behavior: the same image bytes always produce the same unit-norm
// embedding, and empty input reports extract.ErrNoFace.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// Extract returns a deterministic embedding derived from the image bytes.
func (m *MockExtractor) Extract(ctx context.Context, image []byte) (*extract.Result, error) {
	m.callCount.Add(1)

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, image)
	}

	if len(image) == 0 {
		return nil, extract.ErrNoFace
	}

	return &extract.Result{
		Embedding:      DeterministicEmbedding(image, m.Dimension()),
		FaceConfidence: 0.99,
	}, nil
}

// ModelName identifies the mock model.
func (m *MockExtractor) ModelName() string {
	return "mock"
}

// Dimension is the embedding length the mock produces.
func (m *MockExtractor) Dimension() int {
	if m.Dim > 0 {
		return m.Dim
	}
	return 128
}

// CallCount returns the number of times Extract was called.
func (m *MockExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom function.
func (m *MockExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractFunc = nil
}

// DeterministicEmbedding creates a unit-norm embedding from arbitrary
// bytes. The same input always produces the same vector, and distinct
// inputs almost surely produce distinct vectors.
func DeterministicEmbedding(data []byte, dim int) core.Embedding {
	h := fnv.New32a()
	h.Write(data)
	seed := h.Sum32()

	vec := make(core.Embedding, dim)
	var sumSquares float64
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vec[i] = float64(seed%1000)/1000.0 - 0.5
		sumSquares += vec[i] * vec[i]
	}

	if sumSquares > 0 {
		norm := math.Sqrt(sumSquares)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
