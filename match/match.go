package match

import (
	"gonum.org/v1/gonum/floats"

	"github.com/corehive/faceid/core"
)

// Similarity computes the cosine similarity between two embeddings,
// in [-1, 1]. Degenerate input (zero magnitude, length mismatch, empty
// vectors) yields 0.0 rather than an arithmetic error.
func Similarity(a, b core.Embedding) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0.0
	}

	sim := floats.Dot(a, b) / (normA * normB)

	// Clamp to [-1, 1] to absorb floating point drift.
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return sim
}

// Result is the outcome of a best-match scan.
type Result struct {
	// EmployeeID is the best-scoring employee, empty when the collection
	// is empty.
	EmployeeID string

	// Score is the highest similarity seen, reported even when no entry
	// cleared the threshold so callers can diagnose near-misses.
	Score float64

	// Matched is true iff Score >= threshold.
	Matched bool
}

// BestMatch scans every record in the collection and returns the single
// best match for the query embedding.
//
// Records are visited in the collection's stable iteration order
// (lexicographic employee id) and the running best is only replaced on a
// strictly greater score, so the first-encountered entry wins ties and
// results are reproducible. The match is accepted iff the best score is
// greater than or equal to threshold.
func BestMatch(query core.Embedding, collection core.Collection, threshold float64) Result {
	var best Result
	for _, id := range collection.IDs() {
		score := Similarity(query, collection[id].Embedding)
		if best.EmployeeID == "" || score > best.Score {
			best.EmployeeID = id
			best.Score = score
		}
	}
	best.Matched = best.EmployeeID != "" && best.Score >= threshold
	if !best.Matched {
		best.EmployeeID = ""
	}
	return best
}
