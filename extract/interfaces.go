package extract

import (
	"context"

	"github.com/corehive/faceid/core"
)

// Result holds the outcome of a successful extraction.
type Result struct {
	// Embedding is the face descriptor, with length Extractor.Dimension().
	Embedding core.Embedding

	// FaceConfidence is the detector's confidence for the chosen face,
	// in [0, 1]. Zero when the backend does not report one.
	FaceConfidence float64
}

// Extractor converts raw image bytes into a face embedding.
// Detection, alignment, and inference are the collaborator's problem;
// only the bytes-in, vector-out contract matters here.
// Implementations must be thread-safe for concurrent use.
type Extractor interface {
	// Extract returns the embedding for the most prominent face in the
	// image. Returns ErrNoFace when the image contains no usable face,
	// and an error wrapping ErrExtraction for model or transport
	// failures. Honors ctx cancellation and deadlines.
	Extract(ctx context.Context, image []byte) (*Result, error)

	// ModelName identifies the extraction model (e.g. "Facenet").
	ModelName() string

	// Dimension is the fixed embedding length the model produces.
	Dimension() int
}
